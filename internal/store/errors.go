package store

import "fmt"

// IncomingPaymentNotFoundError is raised by receive when no row exists for
// the given payment hash.
type IncomingPaymentNotFoundError struct {
	PaymentHash string
}

func (e *IncomingPaymentNotFoundError) Error() string {
	return fmt.Sprintf("store: no incoming payment with hash %q", e.PaymentHash)
}

// UnreadableIncomingReceivedWithError is raised when the three
// received_* columns of a row are inconsistent: neither all-set,
// all-null, nor only received_at set.
type UnreadableIncomingReceivedWithError struct {
	PaymentHash string
	ReceivedAt  interface{}
	Type        *string
}

func (e *UnreadableIncomingReceivedWithError) Error() string {
	return fmt.Sprintf(
		"store: incoming payment %q has an inconsistent received_at/received_with_type combination (received_at=%v, type=%v)",
		e.PaymentHash, e.ReceivedAt, e.Type,
	)
}

// UnhandledOutgoingStatusError is raised when an outgoing_payment row's
// completed_at and (status_type, status_blob) are not co-present or
// co-absent.
type UnhandledOutgoingStatusError struct {
	ID string
}

func (e *UnhandledOutgoingStatusError) Error() string {
	return fmt.Sprintf("store: outgoing payment %q has an inconsistent completed_at/status combination", e.ID)
}

// UnhandledOutgoingPartStatusError is the part-level analogue of
// UnhandledOutgoingStatusError.
type UnhandledOutgoingPartStatusError struct {
	PartID string
}

func (e *UnhandledOutgoingPartStatusError) Error() string {
	return fmt.Sprintf("store: outgoing payment part %q has an inconsistent completed_at/status combination", e.PartID)
}
