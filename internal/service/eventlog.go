package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"thermostat_bridge/internal/logger"
	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/repository"

	"github.com/google/uuid"
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "ACTUATOR_COMMAND", "SENSOR_ERROR", ...
}

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	return from, to, normalizeEventType(f.Type), nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ThermostatEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ)
}

// recorder appends audit events. Storage failures are logged and swallowed:
// the control path must never stop because the log is unavailable.
type recorder struct {
	repo repository.EventRepo
	log  *logger.Logger
	now  func() time.Time
}

func newRecorder(repo repository.EventRepo, log *logger.Logger) *recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &recorder{repo: repo, log: log, now: time.Now}
}

func (r *recorder) record(ctx context.Context, typ, description string, meta map[string]any) {
	if r == nil || r.repo == nil {
		return
	}
	ev := models.ThermostatEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  r.now().UTC(),
		Type:        typ,
		Description: description,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := r.repo.Append(ctx, ev); err != nil {
		r.log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}
