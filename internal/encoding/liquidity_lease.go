package encoding

import "encoding/json"

// TagLiquidityLeaseV0 tags the persisted record of a liquidity lease
// granted by the policy engine for an inbound-liquidity purchase (spec
// §4.C).
const TagLiquidityLeaseV0 = "LIQUIDITY_LEASE_V0"

// LiquidityLease records the terms under which inbound liquidity was
// extended: how much was granted, what it cost, and for how long the
// lease is valid.
type LiquidityLease struct {
	AmountSat              int64  `json:"amountSat"`
	FeeSat                 int64  `json:"feeSat"`
	LeaseDurationBlocks    uint32 `json:"leaseDurationBlocks"`
	LeaseExpiryBlockHeight uint32 `json:"leaseExpiryBlockHeight"`
}

// EncodeLiquidityLease returns the (tag, blob) pair to persist for l.
func EncodeLiquidityLease(l LiquidityLease) (tag string, blob []byte, err error) {
	blob, err = json.Marshal(l)
	return TagLiquidityLeaseV0, blob, err
}

// DecodeLiquidityLease turns a persisted (tag, blob) pair back into a
// LiquidityLease.
func DecodeLiquidityLease(tag string, blob []byte) (LiquidityLease, error) {
	if tag != TagLiquidityLeaseV0 {
		return LiquidityLease{}, unknownTag("LiquidityLease", tag)
	}
	var l LiquidityLease
	if err := json.Unmarshal(blob, &l); err != nil {
		return LiquidityLease{}, decodeFailure("LiquidityLease", tag, err)
	}
	return l, nil
}
