package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	api.Get("/settings", handler.GetSettings)
	api.Put("/settings", handler.UpdateSettings)
	api.Get("/blocks", handler.GetBlocks)
	api.Put("/blocks", handler.ReplaceBlocks)

	entries := api.Group("/entries")
	entries.Get("", handler.GetEntriesRange)
	entries.Post("", handler.UpsertEntry)
	entries.Get("/summary", handler.GetEntriesSummary)

	api.Get("/meta", handler.GetDailyMetaRange)

	days := api.Group("/days/:date")
	days.Get("", handler.GetDay)
	days.Post("/init", handler.InitializeDay)
	days.Post("/score", handler.RefreshDayScore)
	days.Get("/entries", handler.GetDayEntries)
	days.Get("/entries/:blockId", handler.GetDayEntry)
	days.Get("/meta", handler.GetDailyMeta)
	days.Put("/meta", handler.ReplaceDailyMeta)
	days.Patch("/meta", handler.PatchDailyMeta)

	api.Get("/dashboard", handler.GetDashboard)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
