package helpers

import (
	"context"
	"errors"
	"sync"

	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// ErrDiskFull is returned by FlakySnapshotRepository.Save while failing
var ErrDiskFull = errors.New("disk full")

// FlakySnapshotRepository wraps a snapshot repository and rejects saves
// while SetFailing(true) is in effect
type FlakySnapshotRepository struct {
	simulation.SnapshotRepository

	mu      sync.Mutex
	failing bool
}

func NewFlakySnapshotRepository(inner simulation.SnapshotRepository) *FlakySnapshotRepository {
	return &FlakySnapshotRepository{SnapshotRepository: inner}
}

func (r *FlakySnapshotRepository) SetFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

func (r *FlakySnapshotRepository) Save(ctx context.Context, name string, snap *simulation.Snapshot) error {
	r.mu.Lock()
	failing := r.failing
	r.mu.Unlock()
	if failing {
		return ErrDiskFull
	}
	return r.SnapshotRepository.Save(ctx, name, snap)
}
