package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"bankingSystem/models"
)

// DefaultAccountsFile is the file used when no path is configured.
const DefaultAccountsFile = "accounts.txt"

// FileStore keeps accounts in a line-delimited text file, one account per line:
//
//	id,passcode,category,balance
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultAccountsFile
	}
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load reads every account from the file. A missing file yields no accounts.
func (s *FileStore) Load(ctx context.Context) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []models.Account
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		a, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.path, line, err)
		}
		out = append(out, a)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseLine(text string) (models.Account, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		return models.Account{}, fmt.Errorf("expected 4 fields, got %d", len(parts))
	}
	bal, err := decimal.NewFromString(strings.TrimSpace(parts[3]))
	if err != nil {
		return models.Account{}, fmt.Errorf("invalid balance %q: %w", parts[3], err)
	}
	if bal.IsNegative() {
		return models.Account{}, fmt.Errorf("negative balance %s", bal)
	}
	// Saves write two decimals, so memory must hold the same value.
	bal = bal.Round(2)
	return models.Account{
		ID:       strings.TrimSpace(parts[0]),
		Passcode: strings.TrimSpace(parts[1]),
		Category: models.CategoryFromStored(strings.TrimSpace(parts[2])),
		Balance:  bal,
	}, nil
}

// Save rewrites the whole file. Accounts are written sorted by id to a temporary
// file which then replaces the existing one.
func (s *FileStore) Save(ctx context.Context, accounts []models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted := make([]models.Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, a := range sorted {
		fmt.Fprintf(w, "%s,%s,%s,%s\n", a.ID, a.Passcode, a.Category, a.Balance.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}
