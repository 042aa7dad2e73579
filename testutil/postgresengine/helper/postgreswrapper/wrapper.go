package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/ejournals/license-accounting-go/licensing/postgresengine"
	"github.com/ejournals/license-accounting-go/testutil/postgresengine/config"
)

// Engine type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper interface to abstract over different engine types
type Wrapper interface {
	GetPoolStore() postgresengine.PoolStore
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store postgresengine.PoolStore
}

func (w *PGXPoolWrapper) GetPoolStore() postgresengine.PoolStore {
	return w.store
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store postgresengine.PoolStore
}

func (w *SQLDBWrapper) GetPoolStore() postgresengine.PoolStore {
	return w.store
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store postgresengine.PoolStore
}

func (w *SQLXWrapper) GetPoolStore() postgresengine.PoolStore {
	return w.store
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the
// ADAPTER_TYPE environment variable. The test is skipped when the test
// database is not reachable.
func CreateWrapperWithTestConfig(t testing.TB) Wrapper {
	SkipUnlessDatabaseIsReachable(t)

	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := postgresengine.NewPoolStoreFromPGXPool(connPool)
		assert.NoError(t, err, "error creating pool store")

		return &PGXPoolWrapper{pool: connPool, store: store}

	case typeSQLDB:
		db := config.PostgresSQLDBConfig()

		store, err := postgresengine.NewPoolStoreFromSQLDB(db)
		assert.NoError(t, err, "error creating pool store")

		return &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db := config.PostgresSQLXConfig()

		store, err := postgresengine.NewPoolStoreFromSQLX(db)
		assert.NoError(t, err, "error creating pool store")

		return &SQLXWrapper{db: db, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}
}

// SkipUnlessDatabaseIsReachable skips the test when the test database does
// not answer a ping within a short timeout.
func SkipUnlessDatabaseIsReachable(t testing.TB) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	connPool, err := pgxpool.New(ctx, config.PostgresDSN())
	if err != nil {
		t.Skipf("test database is not reachable: %s", err)
	}
	defer connPool.Close()

	if pingErr := connPool.Ping(ctx); pingErr != nil {
		t.Skipf("test database is not reachable: %s", pingErr)
	}
}
