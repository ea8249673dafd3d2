// Package store implements component B: the payments store. It persists
// every payment family named in the data model over a Postgres schema,
// using the tagged (type, blob) encoding of internal/encoding for every
// polymorphic field.
package store

import (
	"net/url"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"gitlab.com/arcanecrypto/noded/asyncutil"
	"gitlab.com/arcanecrypto/noded/build/teslalog"
)

var log = teslalog.New("STOR")

// UseLogger lets build wire in the registered subsystem logger.
func UseLogger(logger *teslalog.Logger) {
	log = logger
}

// Config carries what's needed to open and migrate the store's
// underlying database.
type Config struct {
	User           string
	Password       string
	Host           string
	Port           int
	Name           string
	MigrationsPath string
}

// Store wraps a database handle with the payments-store API.
type Store struct {
	db             *sqlx.DB
	migrationsPath string
}

// Open connects to the configured Postgres database.
func Open(conf Config) (*Store, error) {
	q := make(url.Values)
	q.Set("sslmode", "disable")
	q.Set("timezone", "utc")

	hostWithPort := conf.Host + ":" + strconv.Itoa(conf.Port)
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     hostWithPort,
		Path:     conf.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open("postgres", dsn.String())
	if err != nil {
		return nil, errors.Wrapf(err, "could not open database %s at %s", conf.Name, hostWithPort)
	}

	// Postgres may still be starting up alongside this process (e.g. both
	// launched by the same compose file), so the first few pings are
	// allowed to fail before giving up.
	if err := asyncutil.Await(5, 500*time.Millisecond, func() bool {
		return db.Ping() == nil
	}, "could not reach database", hostWithPort); err != nil {
		return nil, errors.Wrapf(err, "could not reach database %s at %s", conf.Name, hostWithPort)
	}

	log.WithField("host", hostWithPort).WithField("database", conf.Name).Info("opened connection to store")

	return &Store{db: db, migrationsPath: conf.MigrationsPath}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getMigrate() (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(s.db.DB, &postgres.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithDatabaseInstance(s.migrationsPath, "postgres", driver)
}

// MigrateUp brings the schema up to the latest version.
func (s *Store) MigrateUp() error {
	m, err := s.getMigrate()
	if err != nil {
		log.WithError(err).Error("could not get migration instance")
		return err
	}
	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info("no migrations to apply")
			return nil
		}
		log.WithError(err).Error("could not migrate up")
		return errors.Wrap(err, "could not migrate up")
	}
	log.Info("migrated up successfully")
	return nil
}
