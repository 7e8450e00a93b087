package helpers

import (
	"gorm.io/gorm"

	"github.com/andrescamacho/factorysim-go/internal/adapters/persistence"
)

// TestRepositories holds real GORM repositories over one test database
type TestRepositories struct {
	DB           *gorm.DB
	Simulations  *persistence.GormSimulationRepository
	Events       *persistence.GormEventRepository
	Transactions *persistence.GormTransactionRepository
}

// NewTestRepositories wires every repository to db
func NewTestRepositories(db *gorm.DB) *TestRepositories {
	return &TestRepositories{
		DB:           db,
		Simulations:  persistence.NewGormSimulationRepository(db),
		Events:       persistence.NewGormEventRepository(db),
		Transactions: persistence.NewGormTransactionRepository(db),
	}
}
