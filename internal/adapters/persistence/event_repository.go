package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// GormEventRepository keeps the committed event log of each simulation
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM event repository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// Append stores events after the newest stored one, preserving their order
func (r *GormEventRepository) Append(ctx context.Context, name string, events []simulation.Event) error {
	if len(events) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextSeq(tx, &EventModel{}, name)
		if err != nil {
			return err
		}

		models := make([]EventModel, len(events))
		for i, ev := range events {
			var payload string
			if len(ev.Payload) > 0 {
				bytes, err := json.Marshal(ev.Payload)
				if err != nil {
					return fmt.Errorf("failed to marshal event payload: %w", err)
				}
				payload = string(bytes)
			}
			models[i] = EventModel{
				ID:         ev.ID,
				Seq:        next + int64(i),
				Simulation: name,
				Day:        ev.Day,
				Category:   string(ev.Category),
				Message:    ev.Message,
				Payload:    payload,
				Timestamp:  ev.Timestamp,
			}
		}

		if err := tx.CreateInBatches(models, 200).Error; err != nil {
			return fmt.Errorf("failed to append events: %w", err)
		}
		return nil
	})
}

// FindBySimulation returns the newest events first, optionally filtered by category
func (r *GormEventRepository) FindBySimulation(ctx context.Context, name string, limit int, categories ...simulation.EventCategory) ([]simulation.Event, error) {
	query := r.db.WithContext(ctx).Where("simulation = ?", name)
	if len(categories) > 0 {
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = string(c)
		}
		query = query.Where("category IN ?", names)
	}
	query = query.Order("seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []EventModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	events := make([]simulation.Event, len(models))
	for i, m := range models {
		ev, err := modelToEvent(&m)
		if err != nil {
			return nil, err
		}
		events[i] = ev
	}
	return events, nil
}

// DeleteBySimulation drops the whole event log of a simulation
func (r *GormEventRepository) DeleteBySimulation(ctx context.Context, name string) error {
	if err := r.db.WithContext(ctx).Where("simulation = ?", name).Delete(&EventModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

func modelToEvent(m *EventModel) (simulation.Event, error) {
	ev := simulation.Event{
		ID:        m.ID,
		Day:       m.Day,
		Category:  simulation.EventCategory(m.Category),
		Message:   m.Message,
		Timestamp: m.Timestamp,
	}
	if m.Payload != "" {
		if err := json.Unmarshal([]byte(m.Payload), &ev.Payload); err != nil {
			return ev, fmt.Errorf("invalid payload for event %s: %w", m.ID, err)
		}
	}
	return ev, nil
}

// nextSeq returns the next per-simulation sequence number for model's table
func nextSeq(tx *gorm.DB, model interface{}, name string) (int64, error) {
	var last int64
	err := tx.Model(model).
		Where("simulation = ?", name).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	return last + 1, nil
}
