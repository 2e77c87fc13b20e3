package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/mysql"
)

var (
	containerOnce sync.Once
	containerCfg  config.DatabaseConfig
	containerErr  error
)

// SetupTestDB returns a connection to a migrated, empty MySQL database. One
// container is started per test binary; tests are skipped when Docker is not
// available.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		containerCfg, containerErr = startMySQL()
	})
	if containerErr != nil {
		t.Skipf("test database not available: %v", containerErr)
	}

	db, err := sql.Open("mysql", mysql.DSN(containerCfg))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mysql.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	truncate(t, db)
	return db
}

// CleanupTestDB empties every table and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}
	truncate(t, db)
	db.Close()
}

// TestDatabaseConfig returns the config pointing at the shared container.
func TestDatabaseConfig() config.DatabaseConfig {
	return containerCfg
}

func truncate(t *testing.T, db *sql.DB) {
	// Children first so foreign keys hold.
	for _, table := range []string{"sales", "inventory", "products"} {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

func startMySQL() (config.DatabaseConfig, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "root",
			"MYSQL_DATABASE":      "storepulse_test",
			"MYSQL_USER":          "storepulse",
			"MYSQL_PASSWORD":      "storepulse",
		},
		WaitingFor: wait.ForLog("ready for connections").
			WithOccurrence(2).
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("starting mysql container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("getting container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("getting container port: %w", err)
	}

	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("parsing container port: %w", err)
	}

	return config.DatabaseConfig{
		Host:             host,
		Port:             portNum,
		User:             "storepulse",
		Password:         "storepulse",
		Name:             "storepulse_test",
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Minute,
		TxTimeout:        5 * time.Second,
		QueryTimeout:     5 * time.Second,
		MaxRetryAttempts: 3,
	}, nil
}

// InsertProduct writes a product row and its inventory row directly.
func InsertProduct(t *testing.T, db *sql.DB, id, sku, price string, stock, reorderLevel int) {
	t.Helper()
	now := time.Now().UTC()

	_, err := db.Exec(`
		INSERT INTO products (id, sku, name, price, category, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'general', 1, ?, ?)`,
		id, sku, "Product "+sku, price, now, now)
	if err != nil {
		t.Fatalf("failed to insert product %s: %v", id, err)
	}

	_, err = db.Exec(`
		INSERT INTO inventory (id, product_id, current_stock, reorder_level, is_low_stock, created_at, updated_at)
		VALUES (UUID(), ?, ?, ?, ?, ?, ?)`,
		id, stock, reorderLevel, stock <= reorderLevel, now, now)
	if err != nil {
		t.Fatalf("failed to insert inventory for %s: %v", id, err)
	}
}
