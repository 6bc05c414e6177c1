package repository

import (
	"context"
	"database/sql"
	"time"

	"thermostat_bridge/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// StateStore holds the live thermostat state. It is never persisted.
type StateStore interface {
	Load() models.ThermostatState
	Update(fn func(s *models.ThermostatState)) models.ThermostatState
}

type EventRepo interface {
	Append(ctx context.Context, e models.ThermostatEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ThermostatEvent, error)
}

type Repository struct {
	StateStore StateStore
	EventRepo  EventRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB, initial models.ThermostatState) *Repository {
	return &Repository{
		StateStore: NewStateMemory(initial),
		EventRepo:  NewEventSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
