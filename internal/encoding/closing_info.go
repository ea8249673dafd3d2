package encoding

import (
	"encoding/json"
	"fmt"
)

// Tag constants for the ChannelCloseInfo family: how and why a channel
// was closed (spec §3, §4.A).
const (
	TagChannelCloseMutualV0       = "CHANNEL_CLOSE_MUTUAL_V0"
	TagChannelCloseLocalV0        = "CHANNEL_CLOSE_LOCAL_V0"
	TagChannelCloseRemoteForceV0  = "CHANNEL_CLOSE_REMOTE_FORCE_V0"
	TagChannelCloseRevokedV0      = "CHANNEL_CLOSE_REVOKED_V0"
	TagChannelCloseOtherV0        = "CHANNEL_CLOSE_OTHER_V0"
)

// ChannelCloseInfo is the tagged variant describing how a channel
// reached its closed state.
type ChannelCloseInfo interface {
	isChannelCloseInfo()
}

// CloseMutual is a cooperative close negotiated with the peer.
type CloseMutual struct {
	ClosingTxId string `json:"closingTxId"`
}

func (CloseMutual) isChannelCloseInfo() {}

// CloseLocal is a unilateral close broadcast by this node.
type CloseLocal struct {
	ClosingTxId string `json:"closingTxId"`
}

func (CloseLocal) isChannelCloseInfo() {}

// CloseRemoteForce is a unilateral close broadcast by the remote peer.
type CloseRemoteForce struct {
	ClosingTxId string `json:"closingTxId"`
}

func (CloseRemoteForce) isChannelCloseInfo() {}

// CloseRevoked is a close using a revoked (outdated) commitment
// transaction, published either by this node or the peer.
type CloseRevoked struct {
	ClosingTxId string `json:"closingTxId"`
}

func (CloseRevoked) isChannelCloseInfo() {}

// CloseOther is any close that does not fit the other known categories
// (e.g. funding transaction never confirmed, channel was never actually
// opened).
type CloseOther struct {
	Reason string `json:"reason"`
}

func (CloseOther) isChannelCloseInfo() {}

// EncodeChannelCloseInfo returns the (tag, blob) pair to persist for c.
func EncodeChannelCloseInfo(c ChannelCloseInfo) (tag string, blob []byte, err error) {
	switch v := c.(type) {
	case CloseMutual:
		tag = TagChannelCloseMutualV0
		blob, err = json.Marshal(v)
	case CloseLocal:
		tag = TagChannelCloseLocalV0
		blob, err = json.Marshal(v)
	case CloseRemoteForce:
		tag = TagChannelCloseRemoteForceV0
		blob, err = json.Marshal(v)
	case CloseRevoked:
		tag = TagChannelCloseRevokedV0
		blob, err = json.Marshal(v)
	case CloseOther:
		tag = TagChannelCloseOtherV0
		blob, err = json.Marshal(v)
	default:
		err = fmt.Errorf("encoding: unhandled ChannelCloseInfo type %T", c)
	}
	return tag, blob, err
}

// DecodeChannelCloseInfo turns a persisted (tag, blob) pair back into a
// ChannelCloseInfo.
func DecodeChannelCloseInfo(tag string, blob []byte) (ChannelCloseInfo, error) {
	switch tag {
	case TagChannelCloseMutualV0:
		var v CloseMutual
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("ChannelCloseInfo", tag, err)
		}
		return v, nil
	case TagChannelCloseLocalV0:
		var v CloseLocal
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("ChannelCloseInfo", tag, err)
		}
		return v, nil
	case TagChannelCloseRemoteForceV0:
		var v CloseRemoteForce
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("ChannelCloseInfo", tag, err)
		}
		return v, nil
	case TagChannelCloseRevokedV0:
		var v CloseRevoked
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("ChannelCloseInfo", tag, err)
		}
		return v, nil
	case TagChannelCloseOtherV0:
		var v CloseOther
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, decodeFailure("ChannelCloseInfo", tag, err)
		}
		return v, nil
	default:
		return nil, unknownTag("ChannelCloseInfo", tag)
	}
}
