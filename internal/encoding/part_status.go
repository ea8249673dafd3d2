package encoding

import (
	"encoding/json"
	"fmt"
)

// Tag constants for the PartStatus family: the lifecycle state of a
// single outgoing payment part (one leg of an MPP split) (spec §3, §5).
const (
	TagPartStatusPendingV0   = "PART_STATUS_PENDING_V0"
	TagPartStatusSucceededV0 = "PART_STATUS_SUCCEEDED_V0"
	TagPartStatusFailedV0    = "PART_STATUS_FAILED_V0"
)

// PartStatus is the tagged variant describing where a single outgoing
// part stands.
type PartStatus interface {
	isPartStatus()
}

// PartStatusPending is the initial, in-flight state of a part.
type PartStatusPending struct{}

func (PartStatusPending) isPartStatus() {}

// PartStatusSucceeded records the preimage that proves this part
// settled.
type PartStatusSucceeded struct {
	Preimage string `json:"preimage"`
}

func (PartStatusSucceeded) isPartStatus() {}

// PartStatusFailed records why this part did not settle. Remote is true
// when the failure was reported by a node other than the local one (and
// is thus potentially retryable over a different route).
type PartStatusFailed struct {
	Code   string `json:"code"`
	Remote bool   `json:"remote"`
}

func (PartStatusFailed) isPartStatus() {}

// EncodePartStatus returns the (tag, blob) pair to persist for s.
func EncodePartStatus(s PartStatus) (tag string, blob []byte, err error) {
	switch v := s.(type) {
	case PartStatusPending:
		tag = TagPartStatusPendingV0
		blob, err = json.Marshal(v)
	case PartStatusSucceeded:
		tag = TagPartStatusSucceededV0
		blob, err = json.Marshal(v)
	case PartStatusFailed:
		tag = TagPartStatusFailedV0
		blob, err = json.Marshal(v)
	default:
		err = fmt.Errorf("encoding: unhandled PartStatus type %T", s)
	}
	return tag, blob, err
}

// DecodePartStatus turns a persisted (tag, blob) pair back into a
// PartStatus.
func DecodePartStatus(tag string, blob []byte) (PartStatus, error) {
	switch tag {
	case TagPartStatusPendingV0:
		var v PartStatusPending
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("PartStatus", tag, err)
		}
		return v, nil
	case TagPartStatusSucceededV0:
		var v PartStatusSucceeded
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("PartStatus", tag, err)
		}
		return v, nil
	case TagPartStatusFailedV0:
		var v PartStatusFailed
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("PartStatus", tag, err)
		}
		return v, nil
	default:
		return nil, unknownTag("PartStatus", tag)
	}
}

// Tag constants for the OutgoingStatus family: the lifecycle state of
// the payment as a whole, aggregated across all of its parts.
const (
	TagOutgoingStatusPendingV0   = "OUTGOING_STATUS_PENDING_V0"
	TagOutgoingStatusSucceededV0 = "OUTGOING_STATUS_SUCCEEDED_OFFCHAIN_V0"
	TagOutgoingStatusFailedV0    = "OUTGOING_STATUS_FAILED_V0"
)

// OutgoingStatus is the tagged variant describing the aggregate state of
// an outgoing payment.
type OutgoingStatus interface {
	isOutgoingStatus()
}

// OutgoingStatusPending is the state while at least one part is still
// pending and none has succeeded.
type OutgoingStatusPending struct{}

func (OutgoingStatusPending) isOutgoingStatus() {}

// OutgoingStatusSucceededOffChain records the preimage and the total fee
// paid, summed across every succeeded part, once the payment is
// complete.
type OutgoingStatusSucceededOffChain struct {
	Preimage  string `json:"preimage"`
	FeesPaid  int64  `json:"feesPaidSat"`
}

func (OutgoingStatusSucceededOffChain) isOutgoingStatus() {}

// OutgoingStatusFailed records that every part failed and none
// succeeded.
type OutgoingStatusFailed struct {
	Reason string `json:"reason"`
}

func (OutgoingStatusFailed) isOutgoingStatus() {}

// EncodeOutgoingStatus returns the (tag, blob) pair to persist for s.
func EncodeOutgoingStatus(s OutgoingStatus) (tag string, blob []byte, err error) {
	switch v := s.(type) {
	case OutgoingStatusPending:
		tag = TagOutgoingStatusPendingV0
		blob, err = json.Marshal(v)
	case OutgoingStatusSucceededOffChain:
		tag = TagOutgoingStatusSucceededV0
		blob, err = json.Marshal(v)
	case OutgoingStatusFailed:
		tag = TagOutgoingStatusFailedV0
		blob, err = json.Marshal(v)
	default:
		err = fmt.Errorf("encoding: unhandled OutgoingStatus type %T", s)
	}
	return tag, blob, err
}

// DecodeOutgoingStatus turns a persisted (tag, blob) pair back into an
// OutgoingStatus.
func DecodeOutgoingStatus(tag string, blob []byte) (OutgoingStatus, error) {
	switch tag {
	case TagOutgoingStatusPendingV0:
		var v OutgoingStatusPending
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("OutgoingStatus", tag, err)
		}
		return v, nil
	case TagOutgoingStatusSucceededV0:
		var v OutgoingStatusSucceededOffChain
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("OutgoingStatus", tag, err)
		}
		return v, nil
	case TagOutgoingStatusFailedV0:
		var v OutgoingStatusFailed
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("OutgoingStatus", tag, err)
		}
		return v, nil
	default:
		return nil, unknownTag("OutgoingStatus", tag)
	}
}
