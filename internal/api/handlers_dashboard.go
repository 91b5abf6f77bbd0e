package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/clarity/internal/models"
	"github.com/terraincognita07/clarity/internal/services"
)

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	from, to, err := handler.parseRangeQuery(c, defaultRangeDays)
	if err != nil {
		return serviceError(c, err, "invalid range")
	}

	dashboard, err := handler.dashboard.Build(services.DashboardRequest{
		From:   from,
		To:     to,
		Span:   c.QueryInt("span", services.DefaultSparklineSpan),
		Metric: models.Metric(c.Query("metric")),
	})
	if err != nil {
		return serviceError(c, err, "failed to build dashboard")
	}
	return c.JSON(dashboard)
}
