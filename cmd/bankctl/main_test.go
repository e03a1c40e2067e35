package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"bankingSystem/internal/config"
	"bankingSystem/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{
			Driver: config.DriverFile,
			File:   filepath.Join(t.TempDir(), "accounts.txt"),
		},
	}
}

// run executes one bankctl invocation and returns its combined output.
func run(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	root, a := newRootCmd(cfg, strings.NewReader(stdin), out)
	root.SetArgs(args)
	err := root.Execute()
	require.NoError(t, a.close())
	return out.String(), err
}

var createdRe = regexp.MustCompile(`ID: (\d{5})\nPasscode: (\d{4})`)

func create(t *testing.T, cfg *config.Config, category string) (id, passcode string) {
	t.Helper()
	out, err := run(t, cfg, "", "create", "--category", category)
	require.NoError(t, err)
	m := createdRe.FindStringSubmatch(out)
	require.Len(t, m, 3, out)
	return m[1], m[2]
}

func TestCLI_Session(t *testing.T) {
	cfg := testConfig(t)
	id, pass := create(t, cfg, "personal")
	bob, _ := create(t, cfg, "business")
	creds := []string{"--id", id, "--passcode", pass}

	out, err := run(t, cfg, "", append([]string{"deposit", "100"}, creds...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Deposited Nu100.00. New balance: Nu100.00")

	out, err = run(t, cfg, "", append([]string{"withdraw", "20.5"}, creds...)...)
	require.NoError(t, err)
	require.Contains(t, out, "New balance: Nu79.50")

	out, err = run(t, cfg, "", append([]string{"transfer", bob, "25"}, creds...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Transferred Nu25.00 to "+bob)

	out, err = run(t, cfg, "", append([]string{"recharge", "17123456", "4.5"}, creds...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Topped up Nu4.50 to 17123456. Remaining balance: Nu50.00")
	require.Contains(t, out, "B-Mobile")

	out, err = run(t, cfg, "", append([]string{"balance"}, creds...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Current balance: Nu50.00")

	out, err = run(t, cfg, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, id)
	require.Contains(t, out, bob)
	require.NotContains(t, out, pass)

	raw, err := os.ReadFile(cfg.Storage.File)
	require.NoError(t, err)
	require.Contains(t, string(raw), id+","+pass+",Personal,50.00")
}

func TestCLI_Errors(t *testing.T) {
	cfg := testConfig(t)
	id, pass := create(t, cfg, "business")

	_, err := run(t, cfg, "", "balance", "--id", id, "--passcode", "0000")
	require.Error(t, err)

	_, err = run(t, cfg, "", "withdraw", "5", "--id", id, "--passcode", pass)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	_, err = run(t, cfg, "", "deposit", "ten", "--id", id, "--passcode", pass)
	require.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = run(t, cfg, "", "recharge", "99123456", "1", "--id", id, "--passcode", pass)
	require.Error(t, err)

	_, err = run(t, cfg, "", "create", "--category", "savings")
	require.ErrorIs(t, err, models.ErrInvalidCategory)

	// Missing credentials are rejected by cobra before any work happens.
	_, err = run(t, cfg, "", "balance")
	require.Error(t, err)
}

func TestCLI_Delete(t *testing.T) {
	cfg := testConfig(t)
	id, pass := create(t, cfg, "personal")
	creds := []string{"--id", id, "--passcode", pass}

	out, err := run(t, cfg, "n\n", append([]string{"delete"}, creds...)...)
	require.NoError(t, err)
	require.Contains(t, out, "aborted")

	out, err = run(t, cfg, "y\n", append([]string{"delete"}, creds...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Account deleted successfully.")

	_, err = run(t, cfg, "", append([]string{"balance"}, creds...)...)
	require.Error(t, err)

	out, err = run(t, cfg, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, "no accounts")
}

func TestCLI_DriverFlagIgnoresCase(t *testing.T) {
	cfg := testConfig(t)
	dbPath := filepath.Join(t.TempDir(), "bank.db")
	flags := []string{"--driver", "SQLite", "--db", dbPath}

	out, err := run(t, cfg, "", append([]string{"create", "--category", "business"}, flags...)...)
	require.NoError(t, err)
	m := createdRe.FindStringSubmatch(out)
	require.Len(t, m, 3, out)

	out, err = run(t, cfg, "", append([]string{"list"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, m[1])

	_, err = os.Stat(cfg.Storage.File)
	require.True(t, os.IsNotExist(err), "file store must not be used")
}

func TestCLI_LogLevelFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "debug"
	_, a := newRootCmd(cfg, strings.NewReader(""), new(bytes.Buffer))
	require.Equal(t, "debug", a.logLevel)

	root, a := newRootCmd(cfg, strings.NewReader(""), new(bytes.Buffer))
	root.SetArgs([]string{"list", "--log-level", "error"})
	require.NoError(t, root.Execute())
	require.NoError(t, a.close())
	require.Equal(t, "error", a.logLevel)
}
