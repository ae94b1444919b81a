package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
)

// InsertProduct stores a catalog row and returns its id.
func InsertProduct(t *testing.T, db *sql.DB, name, description string, price float64) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO Products (id, name, slug, description, price, quantity, shipping)
		VALUES (?, ?, ?, ?, ?, 10, 1)
	`, id, name, name, description, price)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	return id
}

// InsertUser stores a user row with a placeholder hash and returns its id.
func InsertUser(t *testing.T, db *sql.DB, name, email, role string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO Users (id, name, email, passwordHash, role, createdAt, updatedAt)
		VALUES (?, ?, ?, 'x', ?, ?, ?)
	`, id, name, email, role, now, now)
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	return id
}
