package encoding

import (
	"encoding/json"
	"fmt"
)

// Tag constants for the LightningOutgoingDetails family: what kind of
// outgoing payment was requested (spec §3, §4.A).
const (
	TagOutgoingDetailsNormalV0  = "OUTGOING_DETAILS_NORMAL_V0"
	TagOutgoingDetailsKeySendV0 = "OUTGOING_DETAILS_KEYSEND_V0"
	TagOutgoingDetailsSwapOutV0 = "OUTGOING_DETAILS_SWAPOUT_V0"
	TagOutgoingDetailsBlindedV0 = "OUTGOING_DETAILS_BLINDED_V0"
)

// LightningOutgoingDetails is the tagged variant describing what an
// outgoing Lightning payment actually paid for.
type LightningOutgoingDetails interface {
	isLightningOutgoingDetails()
}

// OutgoingDetailsNormal is a standard BOLT11-invoice payment.
type OutgoingDetailsNormal struct {
	PaymentRequest string `json:"paymentRequest"`
}

func (OutgoingDetailsNormal) isLightningOutgoingDetails() {}

// OutgoingDetailsKeySend is a spontaneous payment with no invoice,
// identified only by the preimage chosen by the sender.
type OutgoingDetailsKeySend struct {
	Preimage string `json:"preimage"`
}

func (OutgoingDetailsKeySend) isLightningOutgoingDetails() {}

// OutgoingDetailsSwapOut is a payment that settles by sending funds
// on-chain to address, via a Lightning-to-on-chain swap.
type OutgoingDetailsSwapOut struct {
	Address        string `json:"address"`
	PaymentRequest string `json:"paymentRequest"`
}

func (OutgoingDetailsSwapOut) isLightningOutgoingDetails() {}

// OutgoingDetailsBlinded is a payment sent to a BOLT12 offer over a
// blinded path.
type OutgoingDetailsBlinded struct {
	PaymentRequest string `json:"paymentRequest"`
	PayerKey       string `json:"payerKey"`
}

func (OutgoingDetailsBlinded) isLightningOutgoingDetails() {}

// EncodeOutgoingDetails returns the (tag, blob) pair to persist for d.
func EncodeOutgoingDetails(d LightningOutgoingDetails) (tag string, blob []byte, err error) {
	switch v := d.(type) {
	case OutgoingDetailsNormal:
		tag = TagOutgoingDetailsNormalV0
		blob, err = json.Marshal(v)
	case OutgoingDetailsKeySend:
		tag = TagOutgoingDetailsKeySendV0
		blob, err = json.Marshal(v)
	case OutgoingDetailsSwapOut:
		tag = TagOutgoingDetailsSwapOutV0
		blob, err = json.Marshal(v)
	case OutgoingDetailsBlinded:
		tag = TagOutgoingDetailsBlindedV0
		blob, err = json.Marshal(v)
	default:
		err = fmt.Errorf("encoding: unhandled LightningOutgoingDetails type %T", d)
	}
	return tag, blob, err
}

// DecodeOutgoingDetails turns a persisted (tag, blob) pair back into a
// LightningOutgoingDetails.
func DecodeOutgoingDetails(tag string, blob []byte) (LightningOutgoingDetails, error) {
	switch tag {
	case TagOutgoingDetailsNormalV0:
		var v OutgoingDetailsNormal
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("LightningOutgoingDetails", tag, err)
		}
		return v, nil
	case TagOutgoingDetailsKeySendV0:
		var v OutgoingDetailsKeySend
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("LightningOutgoingDetails", tag, err)
		}
		return v, nil
	case TagOutgoingDetailsSwapOutV0:
		var v OutgoingDetailsSwapOut
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("LightningOutgoingDetails", tag, err)
		}
		return v, nil
	case TagOutgoingDetailsBlindedV0:
		var v OutgoingDetailsBlinded
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("LightningOutgoingDetails", tag, err)
		}
		return v, nil
	default:
		return nil, unknownTag("LightningOutgoingDetails", tag)
	}
}
