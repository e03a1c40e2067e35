package repository

import (
	"context"

	"bankingSystem/models"
)

// AccountStore persists the full set of accounts. Save always rewrites everything;
// there is no per-account update.
type AccountStore interface {
	Load(ctx context.Context) ([]models.Account, error)
	Save(ctx context.Context, accounts []models.Account) error
}

var (
	_ AccountStore = (*FileStore)(nil)
	_ AccountStore = (*SQLiteStore)(nil)
)
