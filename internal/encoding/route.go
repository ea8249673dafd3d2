package encoding

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// RouteHop is one hop of a resolved payment route: the two endpoint node
// public keys and the short channel id connecting them.
type RouteHop struct {
	NodeA          [33]byte
	NodeB          [33]byte
	ShortChannelId *uint64
}

// EncodeRoute renders a route as the compact, human-grep-able text format
// the store persists in every outgoing part's route column for diagnostics:
// "<nodeA hex>:<nodeB hex>:<shortChannelId>;<nodeA hex>:<nodeB hex>:<shortChannelId>;...".
// This is the one value family where JSON would be needlessly verbose for
// what is, on disk, a debugging aid rather than a value the node's logic
// branches on; the teacher's own preference for plain delimited strings
// in narrow, append-only log-like columns is followed here instead.
func EncodeRoute(hops []RouteHop) string {
	parts := make([]string, 0, len(hops))
	for _, h := range hops {
		scid := ""
		if h.ShortChannelId != nil {
			scid = strconv.FormatUint(*h.ShortChannelId, 10)
		}
		parts = append(parts, fmt.Sprintf("%s:%s:%s",
			hex.EncodeToString(h.NodeA[:]),
			hex.EncodeToString(h.NodeB[:]),
			scid,
		))
	}
	return strings.Join(parts, ";")
}

// DecodeRoute parses the text format written by EncodeRoute. An empty
// string decodes to a nil, zero-hop route. Any malformed hop is a
// DecodeError: a route string is either fully trustworthy or rejected
// outright, never partially trusted.
func DecodeRoute(s string) ([]RouteHop, error) {
	if s == "" {
		return nil, nil
	}
	rawHops := strings.Split(s, ";")
	hops := make([]RouteHop, 0, len(rawHops))
	for _, raw := range rawHops {
		fields := strings.Split(raw, ":")
		if len(fields) != 3 {
			return nil, decodeFailure("Route", "ROUTE_TEXT_V0", fmt.Errorf("hop %q: expected 3 fields, got %d", raw, len(fields)))
		}
		nodeA, err := decodeNodeId(fields[0])
		if err != nil {
			return nil, decodeFailure("Route", "ROUTE_TEXT_V0", fmt.Errorf("hop %q: nodeA: %w", raw, err))
		}
		nodeB, err := decodeNodeId(fields[1])
		if err != nil {
			return nil, decodeFailure("Route", "ROUTE_TEXT_V0", fmt.Errorf("hop %q: nodeB: %w", raw, err))
		}
		var scid *uint64
		if fields[2] != "" {
			parsed, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return nil, decodeFailure("Route", "ROUTE_TEXT_V0", fmt.Errorf("hop %q: shortChannelId: %w", raw, err))
			}
			scid = &parsed
		}
		hops = append(hops, RouteHop{NodeA: nodeA, NodeB: nodeB, ShortChannelId: scid})
	}
	return hops, nil
}

func decodeNodeId(s string) ([33]byte, error) {
	var out [33]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 33 {
		return out, fmt.Errorf("node id must be 33 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
