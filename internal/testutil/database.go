package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	mysqlinfra "storefront/internal/infrastructure/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/storefront_test?parseTime=true&clientFoundRows=true"

// SetupTestDB opens the integration database named by STOREFRONT_TEST_DSN
// and skips the test when it is unreachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("STOREFRONT_TEST_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables applies the production schema.
func SetupTestTables(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := mysqlinfra.ApplySchema(context.Background(), db); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
}

// CleanupTestDB empties every table and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}

	tables := []string{"OrderItems", "Orders", "Products", "Users"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}
