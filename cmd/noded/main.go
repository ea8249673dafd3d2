// Command noded is the composition root: it reads configuration from the
// environment, opens the payments store, builds the liquidity cell and
// peer supervisor, and serves the HTTP surface until signalled to stop.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/urfave/cli"

	"gitlab.com/arcanecrypto/noded/build"
	"gitlab.com/arcanecrypto/noded/build/teslalog"
	"gitlab.com/arcanecrypto/noded/config"
	"gitlab.com/arcanecrypto/noded/internal/httpapi"
	"gitlab.com/arcanecrypto/noded/internal/liquidity"
	"gitlab.com/arcanecrypto/noded/internal/lnproto"
	"gitlab.com/arcanecrypto/noded/internal/peer"
	"gitlab.com/arcanecrypto/noded/internal/store"
)

var log = teslalog.New("MAIN")

// newProtocolEngine constructs the concrete Lightning protocol engine and
// LNURL resolver this daemon drives. A real deployment registers its own
// engine here the way a phoenixd build links lightning-kmp: noded owns
// the store, the liquidity policy, the peer supervisor and the HTTP
// surface (see internal/lnproto's package doc), not a from-scratch
// Lightning wire-protocol implementation.
var newProtocolEngine = func(cfg config.Config) (lnproto.ProtocolEngine, lnproto.AddressResolver, error) {
	return nil, nil, errEngineNotRegistered
}

var errEngineNotRegistered = errNotRegistered("no protocol engine registered")

type errNotRegistered string

func (e errNotRegistered) Error() string { return string(e) }

func main() {
	app := cli.NewApp()
	app.Name = "noded"
	app.Usage = "headless, self-custodial Lightning node daemon"
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("noded exited with an error")
	}
}

func run(_ *cli.Context) error {
	cfg := loadConfig()

	if level, err := teslalog.ToLogLevel(getEnvOrElse("LOG_LEVEL", "info")); err == nil {
		build.SetLogLevels(level)
	}
	if getEnvOrElse("LOG_COLOR", "true") == "false" {
		build.DisableColors()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	if err := build.SetLogFile(cfg.LogFilePath()); err != nil {
		log.WithError(err).Warn("could not open log file, logging to stdout only")
	}

	st, err := store.Open(store.Config{
		User:           cfg.DatabaseUser,
		Password:       cfg.DatabasePassword,
		Host:           cfg.DatabaseHost,
		Port:           cfg.DatabasePort,
		Name:           cfg.DatabaseName,
		MigrationsPath: cfg.MigrationsPath,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.MigrateUp(); err != nil {
		return err
	}

	liquidityCell := liquidity.NewCell(liquidity.Policy{
		MaxAbsoluteFeeSat:      cfg.Liquidity.MaxAbsoluteFeeSat,
		MaxRelativeFeeBasisPts: cfg.Liquidity.MaxRelativeFeeBasisPts,
		MaxAllowedCreditSat:    cfg.Liquidity.MaxAllowedCreditSat,
		SkipAbsoluteFeeCheck:   cfg.Liquidity.SkipAbsoluteFeeCheck,
	})

	engine, resolver, err := newProtocolEngine(cfg)
	if err != nil {
		return err
	}

	supervisor := peer.New(engine, peer.Config{
		ConnectTimeout:   cfg.ConnectTimeout,
		HandshakeTimeout: cfg.HandshakeTimeout,
		ReconnectDelay:   cfg.ReconnectDelay,
	})

	dispatcher := peer.NewWebhookDispatcher(cfg.WebhookURLs, []byte(cfg.WebhookSecret), &http.Client{Timeout: 10 * time.Second}, st)
	supervisor.EventBus().Subscribe(dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go supervisor.Run(ctx)

	server := httpapi.New(httpapi.Config{
		PrimaryPassword:  cfg.PrimaryPassword,
		ReadOnlyPassword: cfg.ReadOnlyPassword,
		ExportsDir:       cfg.ExportsDir(),
		Network:          cfg.Chain,
	}, st, liquidityCell, supervisor, engine, resolver)

	httpServer := &http.Server{
		Addr:    cfg.HTTPListenAddr,
		Handler: server.Router,
	}

	go func() {
		log.WithField("addr", cfg.HTTPListenAddr).Info("serving http")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server stopped unexpectedly")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// loadConfig builds a config.Config from the environment, the way
// cmd/lpp historically read DATABASE_*/SENDGRID_*-style variables at
// startup.
func loadConfig() config.Config {
	cfg := config.Default()

	cfg.DataDir = getEnvOrElse("NODED_DATA_DIR", cfg.DataDir)
	cfg.NodeIDPrefix = getEnvOrElse("NODED_ID_PREFIX", cfg.NodeIDPrefix)
	cfg.HTTPListenAddr = getEnvOrElse("NODED_HTTP_LISTEN_ADDR", ":9740")

	cfg.PrimaryPassword = getEnvOrFail("NODED_PRIMARY_PASSWORD")
	cfg.ReadOnlyPassword = getEnvOrElse("NODED_READONLY_PASSWORD", "")
	cfg.WebhookSecret = getEnvOrElse("NODED_WEBHOOK_SECRET", "")
	if urls := getEnvOrElse("NODED_WEBHOOK_URLS", ""); urls != "" {
		cfg.WebhookURLs = splitCSV(urls)
	}
	cfg.LSPAddress = getEnvOrFail("NODED_LSP_ADDRESS")

	cfg.DatabaseUser = getEnvOrFail("DATABASE_USER")
	cfg.DatabasePassword = getEnvOrFail("DATABASE_PASSWORD")
	cfg.DatabaseName = getEnvOrFail("DATABASE_NAME")
	cfg.DatabaseHost = getEnvOrElse("DATABASE_HOST", "localhost")
	cfg.DatabasePort = getEnvOrInt("DATABASE_PORT", 5432)
	cfg.MigrationsPath = getEnvOrElse("NODED_MIGRATIONS_PATH", "file://internal/store/migrations")

	switch getEnvOrElse("NODED_NETWORK", "mainnet") {
	case "testnet":
		cfg.Chain = &chaincfg.TestNet3Params
	case "regtest":
		cfg.Chain = &chaincfg.RegressionNetParams
	case "signet":
		cfg.Chain = &chaincfg.SigNetParams
	default:
		cfg.Chain = &chaincfg.MainNetParams
	}

	return cfg
}

func getEnvOrElse(env, defaultValue string) string {
	if found := os.Getenv(env); found != "" {
		return found
	}
	return defaultValue
}

func getEnvOrFail(env string) string {
	found := os.Getenv(env)
	if found == "" {
		log.Fatalf("%s is not set", env)
	}
	return found
}

func getEnvOrInt(env string, defaultValue int) int {
	raw := os.Getenv(env)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("%s (%q) is not a valid int", env, raw)
	}
	return value
}

func splitCSV(raw string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if i > start {
				out = append(out, raw[start:i])
			}
			start = i + 1
		}
	}
	return out
}
