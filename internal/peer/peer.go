// Package peer implements component D: the supervisor that maintains the
// node's single logical connection to its configured peer (the LSP),
// fans out protocol events to internal subscribers, and dispatches
// webhooks.
package peer

import (
	"context"
	"sync"
	"time"

	"gitlab.com/arcanecrypto/noded/build/teslalog"
	"gitlab.com/arcanecrypto/noded/internal/lnproto"
)

var log = teslalog.New("PEER")

// UseLogger lets build wire in the registered subsystem logger.
func UseLogger(logger *teslalog.Logger) {
	log = logger
}

// Config bounds the connect/reconnect timing the supervisor enforces.
type Config struct {
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	ReconnectDelay   time.Duration
}

// Supervisor owns the reconnect loop and the event bus built on top of
// it.
type Supervisor struct {
	engine lnproto.ProtocolEngine
	config Config
	bus    *EventBus

	readyOnce sync.Once
	ready     chan struct{}

	feeCreditMu sync.RWMutex
	feeCredit   int64
}

// New constructs a Supervisor around the given protocol engine.
func New(engine lnproto.ProtocolEngine, config Config) *Supervisor {
	return &Supervisor{
		engine: engine,
		config: config,
		bus:    NewEventBus(),
		ready:  make(chan struct{}),
	}
}

// FeeCredit returns the most recently reported fee-credit balance. Zero
// until the engine's FeeCreditFlow has emitted at least once.
func (s *Supervisor) FeeCredit() int64 {
	s.feeCreditMu.RLock()
	defer s.feeCreditMu.RUnlock()
	return s.feeCredit
}

// EventBus returns the supervisor's event bus, for subscribing and for
// wiring webhook dispatch.
func (s *Supervisor) EventBus() *EventBus {
	return s.bus
}

// Ready is closed the first time the connection reaches Established.
func (s *Supervisor) Ready() <-chan struct{} {
	return s.ready
}

// Run is the perpetual reconnect loop: connect, wait for the connection
// to close, sleep, repeat. It returns only when ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.runOneConnection(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.config.ReconnectDelay):
		}
	}
}

func (s *Supervisor) runOneConnection(ctx context.Context) {
	connectCtx, cancel := context.WithTimeout(ctx, s.config.ConnectTimeout+s.config.HandshakeTimeout)
	defer cancel()

	if err := s.engine.Connect(connectCtx, s.config.ConnectTimeout, s.config.HandshakeTimeout); err != nil {
		log.WithError(err).Warn("could not connect to peer")
		return
	}

	states := s.engine.ConnectionState(ctx)
	events := s.engine.NodeEvents(ctx)
	feeCredits := s.engine.FeeCreditFlow(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			if state == lnproto.ConnectionEstablished {
				s.readyOnce.Do(func() { close(s.ready) })
			}
			if state == lnproto.ConnectionClosed {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case credit, ok := <-feeCredits:
			if !ok {
				feeCredits = nil
				continue
			}
			s.feeCreditMu.Lock()
			s.feeCredit = credit
			s.feeCreditMu.Unlock()
		}
	}
}

// handleEvent applies the fan-out rule before publishing to the bus: only
// a PaymentReceived with a positive amount is surfaced; every other event,
// and a zero-amount PaymentReceived, is not published.
func (s *Supervisor) handleEvent(event lnproto.NodeEvent) {
	if pr, ok := event.(lnproto.PaymentReceived); !ok || pr.AmountSat <= 0 {
		return
	}
	s.bus.Publish(event)
}
