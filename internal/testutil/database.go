package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB abre la BD de prueba definida en MYSQL_TEST_DSN
// (por defecto una BD MySQL en localhost:3306 llamada 'mytrade_test').
// Si no hay servidor disponible el test se salta.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/mytrade_test?parseTime=true&loc=UTC"
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Verify connection
	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB limpia la BD de prueba
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"OrderActions"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables crea las tablas necesarias para los tests
func SetupTestTables(t *testing.T, db *sql.DB) {
	createOrderActionsTable := `
	CREATE TABLE IF NOT EXISTS OrderActions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId VARCHAR(64) NOT NULL,
		action VARCHAR(50) NOT NULL,
		fromStatus VARCHAR(50) NOT NULL,
		toStatus VARCHAR(50),
		actorId VARCHAR(64) NOT NULL,
		actorRole VARCHAR(20) NOT NULL,
		reason TEXT,
		outcome VARCHAR(30) NOT NULL,
		traceId VARCHAR(36) NOT NULL,
		createdAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		INDEX idx_order (orderId),
		INDEX idx_actor (actorId)
	)`

	if _, err := db.Exec(createOrderActionsTable); err != nil {
		t.Logf("failed to create table OrderActions: %v", err)
	}
}
