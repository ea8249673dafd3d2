// Package encoding implements component A: tagged-version (type, blob)
// codecs for every polymorphic value the payments store persists (spec
// §4.A). Each value family exposes Encode(value) -> (tag, blob) and
// Decode(tag, blob) -> (value, error). Encoding is deterministic
// (decode(encode(v)) == v); adding a variant adds a new tag, and no tag is
// ever reused or repurposed, so old rows keep decoding forever.
//
// Internally every blob is just the JSON serialization of the variant's
// Go struct: JSON is the teacher's tool of choice for arbitrary persisted
// payloads (e.g. `api/apifees` request/response shapes), and using it here
// keeps the format both human-debuggable and trivially forwards-extendable
// field-by-field, while the tag alone governs which variant (and which
// struct shape) a blob must be parsed against.
package encoding

import (
	"fmt"

	"gitlab.com/arcanecrypto/noded/build/teslalog"
)

var log = teslalog.New("ENCD")

// UseLogger lets build wire in the registered subsystem logger.
func UseLogger(logger *teslalog.Logger) {
	log = logger
}

// DecodeError is raised whenever a persisted (tag, blob) pair cannot be
// turned back into a value: an unrecognized tag, or a tag whose blob
// doesn't parse. Per spec §4.A/§7 this is a state-corruption error: it is
// never silently swallowed or defaulted away.
type DecodeError struct {
	Family string
	Tag    string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("encoding: could not decode %s value with tag %q: %s", e.Family, e.Tag, e.Cause)
	}
	return fmt.Sprintf("encoding: unknown tag %q for %s", e.Tag, e.Family)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func unknownTag(family, tag string) error {
	return &DecodeError{Family: family, Tag: tag}
}

func decodeFailure(family, tag string, cause error) error {
	return &DecodeError{Family: family, Tag: tag, Cause: cause}
}
