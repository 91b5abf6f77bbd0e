package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/clarity/internal/models"
)

const (
	defaultRangeDays    = 30
	defaultSummaryLimit = 7
)

type entryPayload struct {
	Date          string `json:"date"`
	BlockID       string `json:"block_id"`
	Rumination    int    `json:"rumination"`
	Compulsion    int    `json:"compulsion"`
	Avoidance     int    `json:"avoidance"`
	AnxietyScore  int    `json:"anxiety_score"`
	DistressScore int    `json:"distress_score"`
	Note          string `json:"note"`
}

func (payload entryPayload) entry() models.BlockEntry {
	return models.BlockEntry{
		Date:          payload.Date,
		BlockID:       payload.BlockID,
		Rumination:    payload.Rumination,
		Compulsion:    payload.Compulsion,
		Avoidance:     payload.Avoidance,
		AnxietyScore:  payload.AnxietyScore,
		DistressScore: payload.DistressScore,
		Note:          payload.Note,
	}
}

func (handler *Handler) UpsertEntry(c *fiber.Ctx) error {
	payload := entryPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	entry, meta, err := handler.days.LogEntry(payload.entry())
	if err != nil {
		return serviceError(c, err, "failed to save entry")
	}
	return c.JSON(fiber.Map{"entry": entry, "meta": meta})
}

func (handler *Handler) GetDayEntries(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return serviceError(c, err, "invalid date")
	}

	entries, err := handler.store.GetEntriesForDate(date)
	if err != nil {
		return serviceError(c, err, "failed to fetch entries")
	}
	return c.JSON(entries)
}

func (handler *Handler) GetDayEntry(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return serviceError(c, err, "invalid date")
	}

	entry, found, err := handler.store.GetEntry(date, c.Params("blockId"))
	if err != nil {
		return serviceError(c, err, "failed to fetch entry")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "entry not found")
	}
	return c.JSON(entry)
}

func (handler *Handler) GetEntriesRange(c *fiber.Ctx) error {
	from, to, err := handler.parseRangeQuery(c, defaultRangeDays)
	if err != nil {
		return serviceError(c, err, "invalid range")
	}

	entries, err := handler.store.GetEntriesRange(from, to)
	if err != nil {
		return serviceError(c, err, "failed to fetch entries")
	}
	return c.JSON(entries)
}

func (handler *Handler) GetEntriesSummary(c *fiber.Ctx) error {
	metric := models.Metric(c.Query("metric", string(models.MetricRumination)))
	limit := c.QueryInt("limit", defaultSummaryLimit)

	summaries, err := handler.store.GetEntriesSummary(metric, limit)
	if err != nil {
		return serviceError(c, err, "failed to summarize entries")
	}
	return c.JSON(summaries)
}
