package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/clarity/internal/models"
)

type dailyMetaPayload struct {
	SleepScore      int    `json:"sleep_score"`
	ExerciseMinutes int    `json:"exercise_minutes"`
	Notes           string `json:"notes"`
	Tracked         *bool  `json:"tracked"`
}

func (handler *Handler) GetDay(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return serviceError(c, err, "invalid date")
	}

	snapshot, err := handler.days.FetchDay(date)
	if err != nil {
		return serviceError(c, err, "failed to fetch day")
	}
	return c.JSON(snapshot)
}

func (handler *Handler) InitializeDay(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return serviceError(c, err, "invalid date")
	}

	snapshot, err := handler.days.InitializeDay(date)
	if err != nil {
		return serviceError(c, err, "failed to initialize day")
	}
	return c.JSON(snapshot)
}

func (handler *Handler) RefreshDayScore(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return serviceError(c, err, "invalid date")
	}

	meta, err := handler.days.RefreshDayScore(date)
	if err != nil {
		return serviceError(c, err, "failed to refresh score")
	}
	return c.JSON(meta)
}

func (handler *Handler) GetDailyMeta(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return serviceError(c, err, "invalid date")
	}

	meta, found, err := handler.store.GetDailyMeta(date)
	if err != nil {
		return serviceError(c, err, "failed to fetch daily meta")
	}
	if !found {
		return apiError(c, fiber.StatusNotFound, "daily meta not found")
	}
	return c.JSON(meta)
}

func (handler *Handler) ReplaceDailyMeta(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return serviceError(c, err, "invalid date")
	}
	payload := dailyMetaPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	tracked := true
	if payload.Tracked != nil {
		tracked = *payload.Tracked
	}
	meta, err := handler.days.ReplaceDailyMeta(models.DailyMeta{
		Date:            date,
		SleepScore:      payload.SleepScore,
		ExerciseMinutes: payload.ExerciseMinutes,
		Notes:           payload.Notes,
		Tracked:         tracked,
	})
	if err != nil {
		return serviceError(c, err, "failed to save daily meta")
	}
	return c.JSON(meta)
}

func (handler *Handler) PatchDailyMeta(c *fiber.Ctx) error {
	date, err := parseDateParam(c)
	if err != nil {
		return serviceError(c, err, "invalid date")
	}
	patch := models.DailyMetaPatch{}
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(c)
	}

	meta, err := handler.days.SaveDailyMeta(date, patch)
	if err != nil {
		return serviceError(c, err, "failed to save daily meta")
	}
	return c.JSON(meta)
}

func (handler *Handler) GetDailyMetaRange(c *fiber.Ctx) error {
	from, to, err := handler.parseRangeQuery(c, defaultRangeDays)
	if err != nil {
		return serviceError(c, err, "invalid range")
	}

	metas, err := handler.store.GetDailyMetaRange(from, to)
	if err != nil {
		return serviceError(c, err, "failed to fetch daily meta")
	}
	return c.JSON(metas)
}
