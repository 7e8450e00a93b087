package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/factorysim-go/internal/domain/ledger"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Append persists transactions in posting order
func (r *GormTransactionRepository) Append(ctx context.Context, name string, transactions []*ledger.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextSeq(tx, &TransactionModel{}, name)
		if err != nil {
			return err
		}

		models := make([]TransactionModel, len(transactions))
		for i, t := range transactions {
			models[i] = transactionToModel(name, next+int64(i), t)
		}
		if err := tx.CreateInBatches(models, 200).Error; err != nil {
			return fmt.Errorf("failed to append transactions: %w", err)
		}
		return nil
	})
}

// FindBySimulation retrieves transactions with optional filtering
func (r *GormTransactionRepository) FindBySimulation(ctx context.Context, name string, opts ledger.QueryOptions) ([]*ledger.Transaction, error) {
	query := r.db.WithContext(ctx).Where("simulation = ?", name)
	query = r.applyFilters(query, opts)

	// seq breaks ties within a day in posting order
	switch opts.OrderBy {
	case "day ASC":
		query = query.Order("day ASC").Order("seq ASC")
	default:
		query = query.Order("day DESC").Order("seq DESC")
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var models []TransactionModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}

	transactions := make([]*ledger.Transaction, len(models))
	for i := range models {
		tx, err := modelToTransaction(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert transaction model: %w", err)
		}
		transactions[i] = tx
	}
	return transactions, nil
}

// CountBySimulation returns the count of transactions matching the criteria
func (r *GormTransactionRepository) CountBySimulation(ctx context.Context, name string, opts ledger.QueryOptions) (int, error) {
	query := r.db.WithContext(ctx).Model(&TransactionModel{}).Where("simulation = ?", name)
	query = r.applyFilters(query, opts)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return int(count), nil
}

// DeleteBySimulation drops every transaction of a simulation
func (r *GormTransactionRepository) DeleteBySimulation(ctx context.Context, name string) error {
	if err := r.db.WithContext(ctx).Where("simulation = ?", name).Delete(&TransactionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

// applyFilters applies query options to a GORM query
func (r *GormTransactionRepository) applyFilters(query *gorm.DB, opts ledger.QueryOptions) *gorm.DB {
	if opts.FromDay != nil {
		query = query.Where("day >= ?", *opts.FromDay)
	}
	if opts.ToDay != nil {
		query = query.Where("day <= ?", *opts.ToDay)
	}
	if opts.Category != nil {
		query = query.Where("category = ?", opts.Category.String())
	}
	if opts.TransactionType != nil {
		query = query.Where("transaction_type = ?", opts.TransactionType.String())
	}
	if opts.Reference != nil {
		query = query.Where("reference = ?", *opts.Reference)
	}
	return query
}

func modelToTransaction(model *TransactionModel) (*ledger.Transaction, error) {
	id, err := ledger.ParseTransactionID(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction ID in database: %w", err)
	}
	transactionType, err := ledger.ParseTransactionType(model.TransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type in database: %w", err)
	}
	category, err := ledger.ParseCategory(model.Category)
	if err != nil {
		return nil, fmt.Errorf("invalid category in database: %w", err)
	}

	return ledger.ReconstructTransaction(ledger.Data{
		ID:              id,
		Day:             model.Day,
		Timestamp:       model.Timestamp,
		TransactionType: transactionType,
		Category:        category,
		Amount:          model.Amount,
		BalanceBefore:   model.BalanceBefore,
		BalanceAfter:    model.BalanceAfter,
		Reference:       model.Reference,
		Description:     model.Description,
	})
}

func transactionToModel(name string, seq int64, tx *ledger.Transaction) TransactionModel {
	return TransactionModel{
		ID:              tx.ID().String(),
		Seq:             seq,
		Simulation:      name,
		Day:             tx.Day(),
		Timestamp:       tx.Timestamp(),
		TransactionType: tx.TransactionType().String(),
		Category:        tx.Category().String(),
		Amount:          tx.Amount(),
		BalanceBefore:   tx.BalanceBefore(),
		BalanceAfter:    tx.BalanceAfter(),
		Reference:       tx.Reference(),
		Description:     tx.Description(),
	}
}
