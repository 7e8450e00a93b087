package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/factorysim-go/internal/domain/shared"
	"github.com/andrescamacho/factorysim-go/internal/domain/simulation"
)

// GormSimulationRepository stores whole-engine snapshots keyed by simulation name
type GormSimulationRepository struct {
	db *gorm.DB
}

// NewGormSimulationRepository creates a new GORM simulation repository
func NewGormSimulationRepository(db *gorm.DB) *GormSimulationRepository {
	return &GormSimulationRepository{db: db}
}

// Save persists a snapshot (upsert)
func (r *GormSimulationRepository) Save(ctx context.Context, name string, snap *simulation.Snapshot) error {
	state, err := simulation.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	balance := snap.Scenario.Financial.InitialBalance
	if n := len(snap.Transactions); n > 0 {
		balance = snap.Transactions[n-1].BalanceAfter
	}

	now := time.Now().UTC()
	model := SimulationModel{
		Name:      name,
		Day:       snap.Day,
		Balance:   balance,
		Version:   snap.Version,
		State:     string(state),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"day", "balance", "version", "state", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to save simulation: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by simulation name
func (r *GormSimulationRepository) Load(ctx context.Context, name string) (*simulation.Snapshot, error) {
	var model SimulationModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("simulation", name)
		}
		return nil, fmt.Errorf("failed to load simulation: %w", err)
	}
	return simulation.UnmarshalSnapshot([]byte(model.State))
}

// Delete removes a stored snapshot. Deleting a missing simulation is not an error.
func (r *GormSimulationRepository) Delete(ctx context.Context, name string) error {
	if err := r.db.WithContext(ctx).Where("name = ?", name).Delete(&SimulationModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete simulation: %w", err)
	}
	return nil
}

// List describes every stored simulation ordered by name
func (r *GormSimulationRepository) List(ctx context.Context) ([]simulation.SavedSimulation, error) {
	var models []SimulationModel
	err := r.db.WithContext(ctx).
		Select("name", "day", "balance", "updated_at").
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}

	out := make([]simulation.SavedSimulation, len(models))
	for i, m := range models {
		out[i] = simulation.SavedSimulation{
			Name:      m.Name,
			Day:       m.Day,
			Balance:   m.Balance,
			UpdatedAt: m.UpdatedAt,
		}
	}
	return out, nil
}
