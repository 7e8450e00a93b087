package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorysim-go/internal/adapters/persistence"
	"github.com/andrescamacho/factorysim-go/internal/infrastructure/config"
	"github.com/andrescamacho/factorysim-go/internal/infrastructure/database"
)

func TestNewTestConnection_MigratesTables(t *testing.T) {
	db, err := database.NewTestConnection()
	require.NoError(t, err)
	defer database.Close(db)

	for _, table := range []string{"simulations", "simulation_events", "transactions"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestNewConnection_SQLiteFileSurvivesReopen(t *testing.T) {
	cfg := &config.DatabaseConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "factorysim.db")}

	db, err := database.NewConnection(cfg)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, db.Create(&persistence.SimulationModel{
		Name:      "alpha",
		Day:       3,
		Balance:   decimal.NewFromInt(10),
		Version:   1,
		State:     "{}",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}).Error)
	require.NoError(t, database.Close(db))

	db, err = database.NewConnection(cfg)
	require.NoError(t, err)
	defer database.Close(db)

	var count int64
	require.NoError(t, db.Table("simulations").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewConnection_RejectsUnknownType(t *testing.T) {
	_, err := database.NewConnection(&config.DatabaseConfig{Type: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}
