package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bankingSystem/models"
)

// SQLiteStore keeps accounts in the accounts table created by internal/db migrations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) ([]models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id, passcode, category, balance FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Account
	for rows.Next() {
		var a models.Account
		var category, balance string
		if err := rows.Scan(&a.ID, &a.Passcode, &category, &balance); err != nil {
			return nil, err
		}
		a.Category = models.CategoryFromStored(category)
		if a.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("account %s: invalid balance %q: %w", a.ID, balance, err)
		}
		a.Balance = a.Balance.Round(2)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces every row in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, accounts []models.Account) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO accounts (id, passcode, category, balance, updated_at) VALUES (?,?,?,?,CURRENT_TIMESTAMP)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, a := range accounts {
		if _, err := stmt.ExecContext(ctx, a.ID, a.Passcode, string(a.Category), a.Balance.StringFixed(2)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert account %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}
