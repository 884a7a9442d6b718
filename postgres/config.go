package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/domonda/go-errs"
	"github.com/domonda/go-sqldb"
	"github.com/domonda/go-sqldb/db"
	"github.com/domonda/go-sqldb/pqconn"
	"github.com/domonda/golog"
	rootlog "github.com/domonda/golog/log"
	"github.com/lib/pq"

	"github.com/postbus/go-postbus"
)

var log = rootlog.NewPackageLogger("postgres")

func OverrideLogger(logger *golog.Logger) {
	log = logger
}

// Config holds the connection options of a store.
type Config struct {
	Host           string
	Port           uint16
	Database       string
	User           string
	Password       string
	ConnectTimeout time.Duration // Zero means no timeout
	TLS            bool
}

func (c *Config) sqldbConfig() *sqldb.Config {
	sslmode := "disable"
	if c.TLS {
		sslmode = "require"
	}
	extra := map[string]string{"sslmode": sslmode}
	if c.ConnectTimeout > 0 {
		extra["connect_timeout"] = strconv.Itoa(int(c.ConnectTimeout / time.Second))
	}
	return &sqldb.Config{
		Driver:   "postgres",
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		Extra:    extra,
	}
}

// Connect opens a connection pool for the configured database,
// creates the database if it does not exist yet, bootstraps the
// table schema, and returns a ready postbus.Store.
//
// The connection is installed process-globally via
// github.com/domonda/go-sqldb/db, so create one store per process.
// Any failure is wrapped as postbus.ErrConnection.
func Connect(ctx context.Context, config *Config) (store *Store, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, config)

	if config == nil {
		return nil, errs.New("<nil> postgres.Config")
	}

	conn, err := pqconn.New(ctx, config.sqldbConfig())
	if err != nil {
		if !isInvalidCatalog(err) {
			return nil, errs.Errorf("%w: %s", postbus.ErrConnection, err)
		}
		err = createDatabase(ctx, config)
		if err != nil {
			return nil, errs.Errorf("%w: %s", postbus.ErrConnection, err)
		}
		conn, err = pqconn.New(ctx, config.sqldbConfig())
		if err != nil {
			return nil, errs.Errorf("%w: %s", postbus.ErrConnection, err)
		}
	}
	db.SetConn(conn)

	err = bootstrapSchema(ctx)
	if err != nil {
		return nil, errs.Errorf("%w: %s", postbus.ErrConnection, err)
	}

	log.Info("Connected").
		Str("host", config.Host).
		Str("database", config.Database).
		Log()

	return &Store{resolver: newResolver()}, nil
}

// createDatabase connects to the maintenance database
// and creates the configured target database.
func createDatabase(ctx context.Context, config *Config) (err error) {
	defer errs.WrapWithFuncParams(&err, ctx, config)

	log.Info("Creating database").
		Str("database", config.Database).
		Log()

	maintenance := *config
	maintenance.Database = "postgres"
	conn, err := pqconn.New(ctx, maintenance.sqldbConfig())
	if err != nil {
		return err
	}
	defer conn.Close()

	// Identifiers can't be bound parameters, quote instead
	return conn.Exec(`create database ` + pq.QuoteIdentifier(config.Database))
}
