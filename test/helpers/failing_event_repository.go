package helpers

import (
	"context"
	"errors"

	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ErrEventStoreDown is returned by FailingEventRepository.Append
var ErrEventStoreDown = errors.New("event store unavailable")

// FailingEventRepository rejects every append and stores nothing
type FailingEventRepository struct{}

func (FailingEventRepository) Append(ctx context.Context, name string, events []simulation.Event) error {
	return ErrEventStoreDown
}

func (FailingEventRepository) FindBySimulation(ctx context.Context, name string, limit int, categories ...simulation.EventCategory) ([]simulation.Event, error) {
	return nil, nil
}

func (FailingEventRepository) DeleteBySimulation(ctx context.Context, name string) error {
	return nil
}
