package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/clarity/internal/models"
)

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	settings, err := handler.settings.Load()
	if err != nil {
		return serviceError(c, err, "failed to load settings")
	}
	return c.JSON(settings)
}

func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	payload := models.Settings{}
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	saved, err := handler.settings.Save(payload)
	if err != nil {
		return serviceError(c, err, "failed to save settings")
	}
	return c.JSON(saved)
}

func (handler *Handler) GetBlocks(c *fiber.Ctx) error {
	if _, err := handler.settings.Load(); err != nil {
		return serviceError(c, err, "failed to load settings")
	}
	blocks, err := handler.store.GetBlocks()
	if err != nil {
		return serviceError(c, err, "failed to load blocks")
	}
	return c.JSON(blocks)
}

func (handler *Handler) ReplaceBlocks(c *fiber.Ctx) error {
	payload := make([]models.TimeframeBlock, 0)
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	blocks, err := handler.settings.SaveBlocks(payload)
	if err != nil {
		return serviceError(c, err, "failed to save blocks")
	}
	return c.JSON(blocks)
}
