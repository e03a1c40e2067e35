package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"bankingSystem/internal/db"
	"bankingSystem/repository"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The DB is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so that every pooled connection sees the same database.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// TempFileStore returns a FileStore backed by a file in a per-test directory.
func TempFileStore(t *testing.T) *repository.FileStore {
	t.Helper()
	return repository.NewFileStore(filepath.Join(t.TempDir(), "accounts.txt"))
}

// GenerateJWTHS256 returns a signed session token for accountID, valid for ttl.
// A negative ttl yields an already expired token.
func GenerateJWTHS256(t *testing.T, secret, accountID, category, tokenID string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      accountID,
		"category": category,
		"jti":      tokenID,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// JSONRequest builds a request with a JSON body and, when token is non-empty,
// a Bearer Authorization header.
func JSONRequest(t *testing.T, method, url string, body any, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
