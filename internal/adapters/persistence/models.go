package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// SimulationModel represents the simulations table. State holds the JSON snapshot.
type SimulationModel struct {
	Name      string          `gorm:"column:name;primaryKey"`
	Day       int             `gorm:"column:day;not null"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(20,4);not null"`
	Version   int             `gorm:"column:version;not null"`
	State     string          `gorm:"column:state;type:text;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null"`
}

func (SimulationModel) TableName() string {
	return "simulations"
}

// EventModel represents the simulation_events table. Event IDs are unique per
// simulation so one snapshot can be imported under several names.
type EventModel struct {
	Simulation string    `gorm:"column:simulation;primaryKey"`
	ID         string    `gorm:"column:id;primaryKey"`
	Seq        int64     `gorm:"column:seq;not null;index"`
	Day        int       `gorm:"column:day;not null"`
	Category   string    `gorm:"column:category;not null;index"`
	Message    string    `gorm:"column:message;type:text;not null"`
	Payload    string    `gorm:"column:payload;type:text"` // JSON object as text
	Timestamp  time.Time `gorm:"column:timestamp;not null"`
}

func (EventModel) TableName() string {
	return "simulation_events"
}

// TransactionModel represents the transactions table
type TransactionModel struct {
	Simulation      string          `gorm:"column:simulation;primaryKey"`
	ID              string          `gorm:"column:id;primaryKey"`
	Seq             int64           `gorm:"column:seq;not null;index"`
	Day             int             `gorm:"column:day;not null;index"`
	Timestamp       time.Time       `gorm:"column:timestamp;not null"`
	TransactionType string          `gorm:"column:transaction_type;not null"`
	Category        string          `gorm:"column:category;not null"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(20,4);not null"`
	BalanceBefore   decimal.Decimal `gorm:"column:balance_before;type:numeric(20,4);not null"`
	BalanceAfter    decimal.Decimal `gorm:"column:balance_after;type:numeric(20,4);not null"`
	Reference       string          `gorm:"column:reference"`
	Description     string          `gorm:"column:description;type:text"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}
