// Package liquidity implements component C: the pure liquidity-accept
// policy that decides how an incoming payment too small or too
// fee-expensive to settle directly on a new or spliced-in channel should
// be handled.
package liquidity

import (
	"sync"

	"gitlab.com/arcanecrypto/noded/build/teslalog"
)

var log = teslalog.New("LIQD")

// UseLogger lets build wire in the registered subsystem logger.
func UseLogger(logger *teslalog.Logger) {
	log = logger
}

// Policy is the configurable bounds the decision rule is evaluated
// against.
type Policy struct {
	MaxAbsoluteFeeSat      int64
	MaxRelativeFeeBasisPts int64
	MaxAllowedCreditSat    int64
	SkipAbsoluteFeeCheck   bool
}

// Bounds a Policy's fields must stay within.
const (
	MinAbsoluteFeeSat      = 5_000
	MaxAbsoluteFeeSatBound = 100_000
	MinRelativeFeeBasisPts = 1
	MaxRelativeFeeBasisPts = 50
	MinAllowedCreditSat    = 0
	MaxAllowedCreditSat    = 100_000
)

// Validate reports whether p's fields fall within the bounds named by
// spec §4.C.
func (p Policy) Validate() error {
	if p.MaxAbsoluteFeeSat < MinAbsoluteFeeSat || p.MaxAbsoluteFeeSat > MaxAbsoluteFeeSatBound {
		return policyBoundsError{field: "maxAbsoluteFee", value: p.MaxAbsoluteFeeSat, min: MinAbsoluteFeeSat, max: MaxAbsoluteFeeSatBound}
	}
	if p.MaxRelativeFeeBasisPts < MinRelativeFeeBasisPts || p.MaxRelativeFeeBasisPts > MaxRelativeFeeBasisPts {
		return policyBoundsError{field: "maxRelativeFeeBasisPoints", value: p.MaxRelativeFeeBasisPts, min: MinRelativeFeeBasisPts, max: MaxRelativeFeeBasisPts}
	}
	if p.MaxAllowedCreditSat < MinAllowedCreditSat || p.MaxAllowedCreditSat > MaxAllowedCreditSat {
		return policyBoundsError{field: "maxAllowedCredit", value: p.MaxAllowedCreditSat, min: MinAllowedCreditSat, max: MaxAllowedCreditSat}
	}
	return nil
}

type policyBoundsError struct {
	field      string
	value      int64
	min, max   int64
}

func (e policyBoundsError) Error() string {
	return "liquidity: " + e.field + " out of bounds"
}

// Default returns the policy defaults named by spec §4.C.
func Default() Policy {
	return Policy{
		MaxAbsoluteFeeSat:      40_000,
		MaxRelativeFeeBasisPts: 30,
		MaxAllowedCreditSat:    100_000,
		SkipAbsoluteFeeCheck:   false,
	}
}

// Decision is the tagged outcome of Decide.
type Decision interface {
	isDecision()
}

// Accept grants the payment as requested: it will open or splice into a
// channel and pay the on-chain fee out of the payment amount.
type Accept struct{}

func (Accept) isDecision() {}

// AcceptAsCredit defers the payment: rather than attempting any on-chain
// action, the amount is added to the fee-credit balance.
type AcceptAsCredit struct {
	AmountSat int64
}

func (AcceptAsCredit) isDecision() {}

// RejectReason names why a payment was rejected.
type RejectReason string

const (
	RejectCreditFull   RejectReason = "creditFull"
	RejectOverAbsolute RejectReason = "overAbsolute"
	RejectOverRelative RejectReason = "overRelative"
)

// Reject is the refusal outcome.
type Reject struct {
	Reason RejectReason
}

func (Reject) isDecision() {}

// Cell holds the single mutable liquidity policy behind a single-writer,
// many-reader lock, per spec §5 ("Configuration is immutable after
// startup except for the liquidity policy").
type Cell struct {
	mu     sync.RWMutex
	policy Policy
}

// NewCell seeds a Cell with the given starting policy.
func NewCell(p Policy) *Cell {
	return &Cell{policy: p}
}

// Get returns the current policy.
func (c *Cell) Get() Policy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy
}

// Set replaces the current policy, rejecting it if out of bounds.
func (c *Cell) Set(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = p
	log.WithField("maxAbsoluteFeeSat", p.MaxAbsoluteFeeSat).Info("liquidity policy updated")
	return nil
}

// Decide implements the decision rule applied in order: a payment that
// can't cover its own fee is deferred to fee credit (space permitting);
// otherwise the two fee caps gate acceptance. channelsEmpty is accepted
// for parity with the collaborator surface callers evaluate against but
// does not itself gate any branch of the published rule.
func Decide(policy Policy, amountSat, feeSat, creditAvailableSat int64, channelsEmpty bool) Decision {
	if amountSat < feeSat {
		if creditAvailableSat+amountSat <= policy.MaxAllowedCreditSat {
			return AcceptAsCredit{AmountSat: amountSat}
		}
		return Reject{Reason: RejectCreditFull}
	}

	if feeSat > policy.MaxAbsoluteFeeSat && !policy.SkipAbsoluteFeeCheck {
		return Reject{Reason: RejectOverAbsolute}
	}

	if feeSat*10_000 > amountSat*policy.MaxRelativeFeeBasisPts {
		return Reject{Reason: RejectOverRelative}
	}

	return Accept{}
}
