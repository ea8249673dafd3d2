package build

import (
	"github.com/sirupsen/logrus"
	"gitlab.com/arcanecrypto/noded/build/teslalog"
	"gitlab.com/arcanecrypto/noded/internal/apierr"
	"gitlab.com/arcanecrypto/noded/internal/encoding"
	"gitlab.com/arcanecrypto/noded/internal/httpapi"
	"gitlab.com/arcanecrypto/noded/internal/liquidity"
	"gitlab.com/arcanecrypto/noded/internal/peer"
	"gitlab.com/arcanecrypto/noded/internal/store"
	"gitlab.com/arcanecrypto/noded/testutil"
)

// subsystemLoggers holds every logger registered via addSubLogger, keyed by
// its subsystem tag.
var subsystemLoggers = map[string]*teslalog.Logger{}

func init() {
	addSubLogger("ENCD", encoding.UseLogger)
	addSubLogger("STOR", store.UseLogger)
	addSubLogger("LIQD", liquidity.UseLogger)
	addSubLogger("PEER", peer.UseLogger)
	addSubLogger("HTTP", httpapi.UseLogger)
	addSubLogger("APIE", apierr.UseLogger)

	addSubLogger("TESTU", testutil.UseLogger)
}

func addSubLogger(subsystem string, useLogger func(*teslalog.Logger)) {
	logger := teslalog.New(subsystem)
	subsystemLoggers[subsystem] = logger
	useLogger(logger)
}

// SetLogLevel sets the level of a single, already-registered subsystem.
func SetLogLevel(subsystem string, level logrus.Level) {
	logger, ok := subsystemLoggers[subsystem]
	if !ok {
		return
	}
	logger.SetLevel(level)
}

// SetLogLevels sets the level of every registered subsystem logger.
func SetLogLevels(level logrus.Level) {
	for subsystem := range subsystemLoggers {
		SetLogLevel(subsystem, level)
	}
}

// SubLoggers returns every currently registered subsystem logger.
func SubLoggers() map[string]*teslalog.Logger {
	return subsystemLoggers
}

// DisableColors forces every registered logger to log without ANSI colors.
func DisableColors() {
	for subsystem := range subsystemLoggers {
		subsystemLoggers[subsystem].DisableColors()
	}
}

// SetLogFile points every registered logger at the given log file, opened
// for appending, in addition to stdout.
func SetLogFile(file string) error {
	for subsystem := range subsystemLoggers {
		if err := subsystemLoggers[subsystem].SetLogFile(file); err != nil {
			return err
		}
	}
	return nil
}
