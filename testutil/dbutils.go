package testutil

import (
	"database/sql"
	"fmt"
	"path"
	"runtime"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"gitlab.com/arcanecrypto/noded/internal/store"
)

// GetDatabaseConfig returns a store config suitable for testing purposes.
// The given name is appended to the test database's name, so different
// packages' tests don't collide when run in parallel.
func GetDatabaseConfig(name string) store.Config {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		log.Fatal("could not find path to migrations files")
	}

	splitPath := strings.Split(filename, "testutil")
	basePath := splitPath[0]
	migrations := path.Join("file:", path.Clean(basePath), "internal", "store", "migrations")

	return store.Config{
		User:           "noded_test",
		Password:       "password",
		Port:           5434, // Postgres running in a docker container exposed on 5434
		Host:           "localhost",
		Name:           "noded_" + name,
		MigrationsPath: migrations,
	}
}

// CreateIfNotExists creates the database named in conf against the root
// Postgres connection if it doesn't already exist.
func CreateIfNotExists(conf store.Config) error {
	rootDSN := fmt.Sprintf("postgres://postgres:postgres@%s:%d/postgres?sslmode=disable", conf.Host, conf.Port)
	root, err := sql.Open("postgres", rootDSN)
	if err != nil {
		return errors.Wrap(err, "couldn't connect to root Postgres DB")
	}
	defer root.Close()

	row := root.QueryRow("SELECT 1 FROM pg_database WHERE datname=$1", conf.Name)
	var exists int
	if err := row.Scan(&exists); err == sql.ErrNoRows {
		if _, err := root.Exec(fmt.Sprintf("CREATE DATABASE %s", conf.Name)); err != nil {
			return errors.Wrap(err, "cannot create test database")
		}
		if _, err := root.Exec(fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s", conf.Name, conf.User)); err != nil {
			return errors.Wrap(err, "cannot grant privileges to test user")
		}
	} else if err != nil {
		return errors.Wrap(err, "couldn't query pg_database")
	}

	return nil
}

// InitStore creates (if needed) and migrates a test database, returning an
// open store ready for a test package to use.
func InitStore(conf store.Config) *store.Store {
	log.Info("opening and migrating test store")

	if err := CreateIfNotExists(conf); err != nil {
		log.Fatalf("could not create test database with config %+v: %v", conf, err)
	}

	st, err := store.Open(conf)
	if err != nil {
		log.Fatalf("could not open test store with config %+v: %v", conf, err)
	}

	if err := st.MigrateUp(); err != nil {
		log.Fatalf("could not migrate test database: %v", err)
	}

	return st
}
