// Package lnproto declares the collaborator interfaces the rest of the
// node is built against: the protocol engine that actually speaks
// Lightning to the configured peer, and the LNURL/Lightning-address
// resolver used by the HTTP surface. Concrete implementations (wrapping a
// real node's gRPC/socket protocol and a real HTTP LNURL client) are
// deliberately out of scope here; internal/peer and internal/httpapi are
// built entirely against these interfaces.
package lnproto

import (
	"context"
	"time"
)

// ConnectionState is the lifecycle state of the connection to the
// configured peer.
type ConnectionState string

const (
	ConnectionEstablishing ConnectionState = "Establishing"
	ConnectionEstablished  ConnectionState = "Established"
	ConnectionClosed       ConnectionState = "Closed"
)

// Channel is a snapshot of one channel's state with the peer.
type Channel struct {
	ChannelID     string
	CapacitySat   int64
	LocalBalance  int64
	RemoteBalance int64
	IsUsable      bool
}

// NodeEvent is the union of protocol-level events the engine surfaces.
// PaymentReceived (with a positive amount) is the only variant the peer
// supervisor publishes to the event bus; the other variants are not
// forwarded to subscribers.
type NodeEvent interface {
	isNodeEvent()
}

// PaymentReceived announces that an incoming payment advanced: either it
// first became received, or an existing receipt gained another part.
type PaymentReceived struct {
	PaymentHash string
	AmountSat   int64
}

func (PaymentReceived) isNodeEvent() {}

// ChannelConfirmed announces that a channel-opening or splice-in
// transaction reached sufficient confirmations.
type ChannelConfirmed struct {
	ChannelID string
	TxID      string
}

func (ChannelConfirmed) isNodeEvent() {}

// PayInvoiceResult is the outcome of a payInvoice/payOffer round-trip.
type PayInvoiceResult struct {
	Preimage string
	FeesPaid int64
	Failed   bool
	Reason   string
}

// SpliceResult is the outcome of a spliceOut/spliceCpfp round-trip.
type SpliceResult struct {
	TxID   string
	Failed bool
	Reason string
}

// FeeratesFlow carries a stream of on-chain feerate estimates as
// reported by the engine's mempool/fee oracle.
type FeeratesFlow <-chan int64

// FeeCreditFlow carries a stream of fee-credit balance updates.
type FeeCreditFlow <-chan int64

// ProtocolEngine is the collaborator interface to the underlying
// Lightning protocol engine: connect/disconnect, channel state, event
// streams, and every outbound command the HTTP surface and peer
// supervisor can issue.
type ProtocolEngine interface {
	Connect(ctx context.Context, connectTimeout, handshakeTimeout time.Duration) error
	Disconnect(ctx context.Context) error

	Channels(ctx context.Context) ([]Channel, error)
	ConnectionState(ctx context.Context) <-chan ConnectionState
	NodeEvents(ctx context.Context) <-chan NodeEvent

	PayInvoice(ctx context.Context, invoice string, amountSatOverride *int64) (PayInvoiceResult, error)
	PayOffer(ctx context.Context, offer string, amountSat int64, fetchInvoiceTimeout time.Duration) (PayInvoiceResult, error)
	SpliceOut(ctx context.Context, channelID, address string, amountSat int64) (SpliceResult, error)
	SpliceCpfp(ctx context.Context, channelID string, feerateSatPerVbyte int64) (SpliceResult, error)

	Send(ctx context.Context, command interface{}) error

	CreateInvoice(ctx context.Context, amountSat *int64, description, descriptionHash string, expiry time.Duration) (paymentHash, preimage, serialized string, err error)
	RequestAddress(ctx context.Context) (string, error)

	SetAutoLiquidityParams(ctx context.Context, maxAbsoluteFeeSat, maxRelativeFeeBasisPts, maxAllowedCreditSat int64) error
	RegisterFcmToken(ctx context.Context, token string) error
	EstimateFeeForSpliceCpfp(ctx context.Context, channelID string, feerateSatPerVbyte int64) (int64, error)
	RemoteFundingRates(ctx context.Context) ([]LiquidityRate, error)

	OnChainFeeratesFlow(ctx context.Context) FeeratesFlow
	FeeCreditFlow(ctx context.Context) FeeCreditFlow
}

// LiquidityRate is one entry of the LSP's published inbound-liquidity fee
// schedule, keyed by lease duration.
type LiquidityRate struct {
	LeaseDurationBlocks uint32
	FeeBasisPoints      int64
	MinFeeSat           int64
}

// LnurlTag identifies which LNURL flow a fetched LNURL descriptor
// represents.
type LnurlTag string

const (
	LnurlTagPay      LnurlTag = "payRequest"
	LnurlTagWithdraw LnurlTag = "withdrawRequest"
	LnurlTagAuth     LnurlTag = "login"
)

// LnurlDescriptor is the metadata fetched from an LNURL endpoint before
// the actual pay/withdraw/auth step is carried out.
type LnurlDescriptor struct {
	Tag             LnurlTag
	Callback        string
	MinSendable     int64
	MaxSendable     int64
	MinWithdrawable int64
	MaxWithdrawable int64
	K1              string
}

// AddressResolver resolves Lightning addresses and raw LNURLs, and
// carries out the pay/withdraw/auth handshake against the resolved
// endpoint.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, address string) (LnurlDescriptor, error)
	ExecuteLnurl(ctx context.Context, lnurl string) (LnurlDescriptor, error)
	GetLnurlPayInvoice(ctx context.Context, descriptor LnurlDescriptor, amountMsat int64) (invoice string, err error)
	SendWithdrawInvoice(ctx context.Context, descriptor LnurlDescriptor, invoice string) error
	SignAndSendAuthRequest(ctx context.Context, descriptor LnurlDescriptor, linkingKeySeed []byte) error
}
