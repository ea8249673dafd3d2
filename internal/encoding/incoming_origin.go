package encoding

import (
	"encoding/json"
	"fmt"
)

// Tag constants for the IncomingOrigin family (spec §3, §4.A). New
// variants get a new tag; these are never renamed or reused.
const (
	TagIncomingOriginInvoiceV0 = "INCOMING_ORIGIN_INVOICE_V0"
	TagIncomingOriginOfferV0   = "INCOMING_ORIGIN_OFFER_V0"
	TagIncomingOriginSwapInV0  = "INCOMING_ORIGIN_SWAPIN_V0"
	TagIncomingOriginOnChainV0 = "INCOMING_ORIGIN_ONCHAIN_V0"
)

// IncomingOrigin is the tagged variant describing how an IncomingPayment
// was created (spec §3).
type IncomingOrigin interface {
	isIncomingOrigin()
}

// OriginInvoice is the origin of a payment created from a BOLT11 invoice.
type OriginInvoice struct {
	Request string `json:"request"`
}

func (OriginInvoice) isIncomingOrigin() {}

// OriginOffer is the origin of a payment created from a bound BOLT12
// offer.
type OriginOffer struct {
	Metadata []byte `json:"metadata"`
}

func (OriginOffer) isIncomingOrigin() {}

// OriginSwapIn is the origin of a payment created via an on-chain swap-in
// address.
type OriginSwapIn struct {
	Address string `json:"address"`
}

func (OriginSwapIn) isIncomingOrigin() {}

// OriginOnChain is the origin of a payment received directly on-chain.
type OriginOnChain struct {
	Txids []string `json:"txids"`
}

func (OriginOnChain) isIncomingOrigin() {}

// EncodeIncomingOrigin returns the (tag, blob) pair to persist for o.
func EncodeIncomingOrigin(o IncomingOrigin) (tag string, blob []byte, err error) {
	switch v := o.(type) {
	case OriginInvoice:
		tag = TagIncomingOriginInvoiceV0
		blob, err = json.Marshal(v)
	case OriginOffer:
		tag = TagIncomingOriginOfferV0
		blob, err = json.Marshal(v)
	case OriginSwapIn:
		tag = TagIncomingOriginSwapInV0
		blob, err = json.Marshal(v)
	case OriginOnChain:
		tag = TagIncomingOriginOnChainV0
		blob, err = json.Marshal(v)
	default:
		err = fmt.Errorf("encoding: unhandled IncomingOrigin type %T", o)
	}
	return tag, blob, err
}

// DecodeIncomingOrigin turns a persisted (tag, blob) pair back into an
// IncomingOrigin. An unrecognized tag is a DecodeError, never a silent
// default.
func DecodeIncomingOrigin(tag string, blob []byte) (IncomingOrigin, error) {
	switch tag {
	case TagIncomingOriginInvoiceV0:
		var v OriginInvoice
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("IncomingOrigin", tag, err)
		}
		return v, nil
	case TagIncomingOriginOfferV0:
		var v OriginOffer
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("IncomingOrigin", tag, err)
		}
		return v, nil
	case TagIncomingOriginSwapInV0:
		var v OriginSwapIn
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("IncomingOrigin", tag, err)
		}
		return v, nil
	case TagIncomingOriginOnChainV0:
		var v OriginOnChain
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("IncomingOrigin", tag, err)
		}
		return v, nil
	default:
		return nil, unknownTag("IncomingOrigin", tag)
	}
}
