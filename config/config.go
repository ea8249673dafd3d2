// Package config holds the single immutable configuration value threaded
// through every component at startup (build/design notes §9: "Localize
// [data directory, chain selection, derived DB path] behind a single
// immutable configuration value passed explicitly to every component that
// needs them").
package config

import (
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// Config is built once, at startup, and never mutated afterwards. The one
// exception carved out by spec §5 is the liquidity policy, which lives
// behind its own single-writer cell (see internal/liquidity) rather than
// inside this struct.
type Config struct {
	// DataDir is the root of the node's persisted state: seed backup,
	// key/value config file, log file and CSV export subdirectory. The
	// database is the Postgres database described by the Database* fields,
	// not a file in this directory.
	DataDir string

	// Chain selects the Bitcoin network this node operates on.
	Chain *chaincfg.Params

	// NodeIDPrefix is the first 6 hex characters of the node's public
	// key. No database name or file name is derived from it: the store
	// connects to the database named by DatabaseName.
	NodeIDPrefix string

	// Database connection parameters.
	DatabaseUser     string
	DatabasePassword string
	DatabaseHost     string
	DatabasePort     int
	DatabaseName     string
	MigrationsPath   string

	// HTTP listen address, e.g. ":9740".
	HTTPListenAddr string

	// PrimaryPassword grants full-access-tier HTTP routes.
	PrimaryPassword string
	// ReadOnlyPassword additionally grants read-tier HTTP routes.
	ReadOnlyPassword string

	// WebhookSecret keys the HMAC-SHA256 signature sent with every
	// outbound webhook (spec §4.D, §6).
	WebhookSecret string
	// WebhookURLs are the globally configured webhook endpoints that
	// receive every surfaced event.
	WebhookURLs []string

	// LSPAddress is host:port of the single trusted peer this node
	// maintains a perpetual connection to.
	LSPAddress string

	// ConnectTimeout and HandshakeTimeout bound the peer connection
	// attempt (spec §4.D, §5): 10s each by default.
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	// ReconnectDelay is how long the reconnect loop sleeps after a
	// connection closes before trying again (3s by default).
	ReconnectDelay time.Duration
	// FetchInvoiceTimeout bounds a BOLT12 offer's fetch-invoice
	// round-trip (30s by default).
	FetchInvoiceTimeout time.Duration

	// Liquidity holds the starting values for the liquidity policy; the
	// policy itself is mutable at runtime behind its own cell, so this
	// is only the seed configuration used at startup.
	Liquidity LiquidityDefaults
}

// LiquidityDefaults mirrors the bounds given in spec §4.C.
type LiquidityDefaults struct {
	MaxAbsoluteFeeSat      int64
	MaxRelativeFeeBasisPts int64
	MaxAllowedCreditSat    int64
	SkipAbsoluteFeeCheck   bool
}

// DefaultLiquidity returns the configuration defaults named in spec §4.C.
func DefaultLiquidity() LiquidityDefaults {
	return LiquidityDefaults{
		MaxAbsoluteFeeSat:      40_000,
		MaxRelativeFeeBasisPts: 30,
		MaxAllowedCreditSat:    100_000,
		SkipAbsoluteFeeCheck:   false,
	}
}

// DefaultDataDir returns the OS-appropriate application data directory for
// "phoenix", the default data directory named in spec §6.
func DefaultDataDir() string {
	return btcutil.AppDataDir("phoenix", false)
}

// ExportsDir returns the CSV exports subdirectory of the data directory.
func (c Config) ExportsDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// LogFilePath returns the path of the log file.
func (c Config) LogFilePath() string {
	return filepath.Join(c.DataDir, "noded.log")
}

// Default fills in every timeout/delay named explicitly by spec §4.D/§5,
// the default data directory, mainnet chain params and the liquidity
// defaults, leaving the caller to supply the fields that have no sane
// default (passwords, LSP address, database connection fields).
func Default() Config {
	return Config{
		DataDir:             DefaultDataDir(),
		Chain:               &chaincfg.MainNetParams,
		ConnectTimeout:      10 * time.Second,
		HandshakeTimeout:    10 * time.Second,
		ReconnectDelay:      3 * time.Second,
		FetchInvoiceTimeout: 30 * time.Second,
		Liquidity:           DefaultLiquidity(),
	}
}
