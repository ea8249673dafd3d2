package store

import (
	"time"

	"github.com/google/uuid"

	"gitlab.com/arcanecrypto/noded/internal/encoding"
)

// IncomingPayment is the domain shape of a single incoming payment, after
// its polymorphic columns have been decoded.
type IncomingPayment struct {
	ID          uuid.UUID               `json:"id"`
	PaymentHash string                  `json:"paymentHash"`
	Preimage    string                  `json:"preimage"`
	Origin      encoding.IncomingOrigin `json:"origin"`
	CreatedAt   time.Time               `json:"createdAt"`
	Received    *Received               `json:"received,omitempty"`
}

// Received is the subset of an IncomingPayment that only exists once the
// payment has actually been received.
type Received struct {
	ReceivedWith []encoding.ReceivedWith `json:"receivedWith"`
	ReceivedAt   time.Time               `json:"receivedAt"`
}

// incomingRow is the raw database row, before the polymorphic columns are
// decoded into Origin/Received.
type incomingRow struct {
	PaymentHash      string     `db:"payment_hash"`
	ID               uuid.UUID  `db:"id"`
	Preimage         string     `db:"preimage"`
	OriginType       string     `db:"origin_type"`
	OriginBlob       []byte     `db:"origin_blob"`
	CreatedAt        time.Time  `db:"created_at"`
	ReceivedAt       *time.Time `db:"received_at"`
	ReceivedWithType *string    `db:"received_with_type"`
	ReceivedWithBlob []byte     `db:"received_with_blob"`
}

// LightningOutgoingPayment is the domain shape of an outgoing Lightning
// payment, including its decoded parts.
type LightningOutgoingPayment struct {
	ID              uuid.UUID                        `json:"id"`
	Recipient       string                            `json:"recipient"`
	RecipientAmount int64                             `json:"recipientAmountSat"`
	Details         encoding.LightningOutgoingDetails `json:"details"`
	Parts           []Part                            `json:"parts"`
	Status          encoding.OutgoingStatus           `json:"status"`
	CreatedAt       time.Time                         `json:"createdAt"`
	CompletedAt     *time.Time                        `json:"completedAt,omitempty"`
}

// Part is one leg of a (possibly multi-part) outgoing Lightning payment.
type Part struct {
	ID          uuid.UUID           `json:"id"`
	ParentID    uuid.UUID           `json:"parentId"`
	AmountSat   int64               `json:"amountSat"`
	Route       []encoding.RouteHop `json:"route"`
	Status      encoding.PartStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	CompletedAt *time.Time          `json:"completedAt,omitempty"`
}

// outgoingPaymentRow is the raw outgoing_payment row.
type outgoingPaymentRow struct {
	ID                 uuid.UUID  `db:"id"`
	Recipient          string     `db:"recipient"`
	RecipientAmountSat int64      `db:"recipient_amount_sat"`
	DetailsType        string     `db:"details_type"`
	DetailsBlob        []byte     `db:"details_blob"`
	StatusType         *string    `db:"status_type"`
	StatusBlob         []byte     `db:"status_blob"`
	CompletedAt        *time.Time `db:"completed_at"`
	CreatedAt          time.Time  `db:"created_at"`
}

// outgoingPartRow is the raw outgoing_payment_part row, or a synthetic
// all-NULL part row when a query LEFT JOINs a payment with no parts.
type outgoingPartRow struct {
	ID          *uuid.UUID `db:"part_id"`
	ParentID    *uuid.UUID `db:"part_parent_id"`
	AmountSat   *int64     `db:"part_amount_sat"`
	Route       *string    `db:"part_route"`
	StatusType  *string    `db:"part_status_type"`
	StatusBlob  []byte     `db:"part_status_blob"`
	CompletedAt *time.Time `db:"part_completed_at"`
	CreatedAt   *time.Time `db:"part_created_at"`
}

// ChannelCloseOutgoingPayment records an on-chain payout produced by
// closing a channel.
type ChannelCloseOutgoingPayment struct {
	ID                     uuid.UUID
	AmountSat              int64
	Address                string
	IsSentToDefaultAddress bool
	MiningFeeSat           int64
	ChannelID              string
	TxID                   string
	ClosingInfo            encoding.ChannelCloseInfo
	CreatedAt              time.Time
	ConfirmedAt            *time.Time
	LockedAt               *time.Time
}

// InboundLiquidityOutgoingPayment records an on-chain payout that
// purchased inbound liquidity from the peer.
type InboundLiquidityOutgoingPayment struct {
	ID           uuid.UUID
	ChannelID    string
	TxID         string
	MiningFeeSat int64
	Purchase     encoding.LiquidityLease
	CreatedAt    time.Time
	ConfirmedAt  *time.Time
	LockedAt     *time.Time
}

// PaymentType identifies which entity family a PaymentMetadata row
// belongs to.
type PaymentType string

const (
	PaymentTypeIncoming          PaymentType = "IncomingPaymentId"
	PaymentTypeLightningOutgoing PaymentType = "LightningOutgoingId"
	PaymentTypeChannelClose      PaymentType = "ChannelCloseId"
	PaymentTypeInboundLiquidity  PaymentType = "InboundLiquidityId"
)

// PaymentMetadata carries caller-supplied annotations keyed by a payment's
// native identity.
type PaymentMetadata struct {
	PaymentType PaymentType `db:"payment_type"`
	PaymentID   string      `db:"payment_id"`
	ExternalID  *string     `db:"external_id"`
	WebhookURL  *string     `db:"webhook_url"`
}

// CompletedPayment is the flat, per-kind shape the streaming CSV export
// visits (spec's processSuccessfulPayments).
type CompletedPayment struct {
	Kind        string
	ID          string
	AmountSat   int64
	CompletedAt time.Time
}
