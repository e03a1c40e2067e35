package db

import "testing"

func TestOpen_AppliesMigrations(t *testing.T) {
	d, err := Open("file:dbopen?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	v, err := Version(d)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 1 {
		t.Fatalf("version=%d want 1", v)
	}
	if _, err := d.Exec(`INSERT INTO accounts (id, passcode, category, balance) VALUES ('10000', '1234', 'Personal', '0.00')`); err != nil {
		t.Fatalf("insert account: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO accounts (id, passcode, category, balance) VALUES ('10001', '1234', 'Savings', '0.00')`); err == nil {
		t.Fatalf("expected category check to reject Savings")
	}
}

func TestRollbackLast(t *testing.T) {
	d, err := Open("file:dbrollback?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	v, err := Version(d)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 0 {
		t.Fatalf("version after rollback=%d want 0", v)
	}
	if _, err := d.Exec(`SELECT id FROM accounts`); err == nil {
		t.Fatalf("expected accounts table to be dropped")
	}
	// Rolling back with nothing applied is a no-op.
	if err := RollbackLast(d); err != nil {
		t.Fatalf("second rollback: %v", err)
	}
}
