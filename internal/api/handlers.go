package api

import (
	"time"

	"github.com/terraincognita07/clarity/internal/db"
	"github.com/terraincognita07/clarity/internal/models"
	"github.com/terraincognita07/clarity/internal/services"
)

// Store is the persistence surface the handlers need. *db.Store satisfies it.
type Store interface {
	services.SettingsRepository
	services.DayRepository
	services.DashboardRepository
	GetBlocks() ([]models.TimeframeBlock, error)
	GetEntry(date string, blockID string) (models.BlockEntry, bool, error)
	GetEntriesSummary(metric models.Metric, limit int) ([]db.EntrySummary, error)
}

type Handler struct {
	store     Store
	settings  *services.SettingsService
	days      *services.DayService
	dashboard *services.DashboardService
	location  *time.Location
	now       func() time.Time
}

func NewHandler(store Store, location *time.Location) *Handler {
	if location == nil {
		location = time.Local
	}
	settings := services.NewSettingsService(store)
	return &Handler{
		store:     store,
		settings:  settings,
		days:      services.NewDayService(store, settings),
		dashboard: services.NewDashboardService(store, settings),
		location:  location,
		now:       time.Now,
	}
}

func (handler *Handler) today() string {
	return handler.now().In(handler.location).Format(models.DateLayout)
}
