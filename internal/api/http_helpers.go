package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/clarity/internal/models"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps validation failures to 400 with the offending field.
// Anything else is logged and reported as a 500 with message.
func serviceError(c *fiber.Ctx, err error, message string) error {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  validationErr.Reason,
			"field":  validationErr.Field,
			"detail": validationErr.Error(),
		})
	}
	log.Printf("%s %s: %s: %v", c.Method(), c.Path(), message, err)
	return apiError(c, fiber.StatusInternalServerError, message)
}

func parseDateParam(c *fiber.Ctx) (string, error) {
	date := c.Params("date")
	if err := models.ValidateDate("date", date); err != nil {
		return "", err
	}
	return date, nil
}

// parseRangeQuery reads from/to, defaulting to the trailing window ending today.
func (handler *Handler) parseRangeQuery(c *fiber.Ctx, defaultDays int) (string, string, error) {
	to := c.Query("to")
	if to == "" {
		to = handler.today()
	}
	from := c.Query("from")
	if from == "" {
		if err := models.ValidateDate("end", to); err != nil {
			return "", "", err
		}
		end, _ := models.ParseDate(to)
		from = end.AddDate(0, 0, -(defaultDays - 1)).Format(models.DateLayout)
	}
	if err := models.ValidateDateRange(from, to); err != nil {
		return "", "", err
	}
	return from, to, nil
}

func invalidBody(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusBadRequest, "invalid request body")
}
