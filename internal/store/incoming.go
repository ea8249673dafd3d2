package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gitlab.com/arcanecrypto/noded/internal/encoding"
)

// AddIncoming inserts a newly-issued incoming payment. Fails if a row
// with this payment hash already exists.
func (s *Store) AddIncoming(preimage, paymentHash string, origin encoding.IncomingOrigin, createdAt time.Time) (IncomingPayment, error) {
	tag, blob, err := encoding.EncodeIncomingOrigin(origin)
	if err != nil {
		return IncomingPayment{}, errors.Wrap(err, "could not encode origin")
	}

	row := incomingRow{
		PaymentHash: paymentHash,
		ID:          uuid.New(),
		Preimage:    preimage,
		OriginType:  tag,
		OriginBlob:  blob,
		CreatedAt:   createdAt,
	}

	const query = `INSERT INTO incoming_payment
		(payment_hash, id, preimage, origin_type, origin_blob, created_at)
		VALUES (:payment_hash, :id, :preimage, :origin_type, :origin_blob, :created_at)`

	if _, err := s.db.NamedExec(query, row); err != nil {
		return IncomingPayment{}, errors.Wrapf(err, "could not insert incoming payment %q", paymentHash)
	}

	return hydrateIncoming(row)
}

// Receive accumulates newly-observed received parts onto an existing
// incoming payment, inside a single transaction. The first successful
// call establishes ReceivedAt; later calls union their parts onto the
// existing list without overwriting it.
func (s *Store) Receive(paymentHash string, receivedWith []encoding.ReceivedWith, receivedAt time.Time) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}

	var row incomingRow
	if err := tx.Get(&row, `SELECT * FROM incoming_payment WHERE payment_hash = $1 FOR UPDATE`, paymentHash); err != nil {
		_ = tx.Rollback()
		return &IncomingPaymentNotFoundError{PaymentHash: paymentHash}
	}

	existing, err := decodeReceivedWith(row)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	union := append(existing, receivedWith...)
	newTag, newBlob, err := encoding.EncodeReceivedWithList(union)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "could not encode receivedWith")
	}

	effectiveReceivedAt := receivedAt
	if row.ReceivedAt != nil {
		effectiveReceivedAt = *row.ReceivedAt
	}

	const query = `UPDATE incoming_payment
		SET received_at = $1, received_with_type = $2, received_with_blob = $3
		WHERE payment_hash = $4`
	if _, err := tx.Exec(query, effectiveReceivedAt, newTag, newBlob, paymentHash); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "could not update received columns")
	}

	return tx.Commit()
}

// SetLocked rewrites lockedAt on every NewChannel/SpliceIn received part
// and bumps receivedAt to the same value, so listings ordered by
// receivedAt surface the change.
func (s *Store) SetLocked(paymentHash string, lockedAt time.Time) error {
	return s.updateReceivedWithParts(paymentHash, lockedAt, func(parts []encoding.ReceivedWith, at time.Time) []encoding.ReceivedWith {
		out := make([]encoding.ReceivedWith, len(parts))
		for i, p := range parts {
			switch v := p.(type) {
			case encoding.ReceivedWithNewChannel:
				v.LockedAt = &at
				out[i] = v
			case encoding.ReceivedWithSpliceIn:
				v.LockedAt = &at
				out[i] = v
			default:
				out[i] = p
			}
		}
		return out
	}, true)
}

// SetConfirmed rewrites confirmedAt on the same parts SetLocked targets,
// preserving receivedAt.
func (s *Store) SetConfirmed(paymentHash string, confirmedAt time.Time) error {
	return s.updateReceivedWithParts(paymentHash, confirmedAt, func(parts []encoding.ReceivedWith, at time.Time) []encoding.ReceivedWith {
		out := make([]encoding.ReceivedWith, len(parts))
		for i, p := range parts {
			switch v := p.(type) {
			case encoding.ReceivedWithNewChannel:
				v.ConfirmedAt = &at
				out[i] = v
			case encoding.ReceivedWithSpliceIn:
				v.ConfirmedAt = &at
				out[i] = v
			default:
				out[i] = p
			}
		}
		return out
	}, false)
}

func (s *Store) updateReceivedWithParts(paymentHash string, at time.Time, transform func([]encoding.ReceivedWith, time.Time) []encoding.ReceivedWith, bumpReceivedAt bool) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}

	var row incomingRow
	if err := tx.Get(&row, `SELECT * FROM incoming_payment WHERE payment_hash = $1 FOR UPDATE`, paymentHash); err != nil {
		_ = tx.Rollback()
		return &IncomingPaymentNotFoundError{PaymentHash: paymentHash}
	}

	existing, err := decodeReceivedWith(row)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	updated := transform(existing, at)
	tag, blob, err := encoding.EncodeReceivedWithList(updated)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "could not encode receivedWith")
	}

	receivedAt := row.ReceivedAt
	if bumpReceivedAt {
		receivedAt = &at
	}

	const query = `UPDATE incoming_payment
		SET received_at = $1, received_with_type = $2, received_with_blob = $3
		WHERE payment_hash = $4`
	if _, err := tx.Exec(query, receivedAt, tag, blob, paymentHash); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "could not update received columns")
	}

	return tx.Commit()
}

// Get fetches a single incoming payment by its payment hash.
func (s *Store) Get(paymentHash string) (IncomingPayment, error) {
	var row incomingRow
	if err := s.db.Get(&row, `SELECT * FROM incoming_payment WHERE payment_hash = $1`, paymentHash); err != nil {
		return IncomingPayment{}, errors.Wrapf(err, "could not get incoming payment %q", paymentHash)
	}
	return hydrateIncoming(row)
}

// ListAllNotConfirmed streams every received incoming payment that has at
// least one NewChannel/SpliceIn part without a confirmedAt, invoking visit
// for each. Payments with no NewChannel/SpliceIn part are skipped.
func (s *Store) ListAllNotConfirmed(visit func(IncomingPayment) error) error {
	const query = `SELECT * FROM incoming_payment
		WHERE received_at IS NOT NULL
		ORDER BY created_at ASC`
	return s.streamIncoming(query, nil, func(p IncomingPayment) error {
		for _, part := range p.Received.ReceivedWith {
			switch v := part.(type) {
			case encoding.ReceivedWithNewChannel:
				if v.ConfirmedAt == nil {
					return visit(p)
				}
			case encoding.ReceivedWithSpliceIn:
				if v.ConfirmedAt == nil {
					return visit(p)
				}
			}
		}
		return nil
	})
}

// ListCreatedWithin returns incoming payments created in [from, to),
// newest first, paginated.
func (s *Store) ListCreatedWithin(from, to time.Time, limit, offset int) ([]IncomingPayment, error) {
	const query = `SELECT * FROM incoming_payment
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	return s.queryIncoming(query, from, to, limit, offset)
}

// ListReceivedWithin returns received incoming payments in [from, to),
// newest-received first, paginated, optionally filtered by externalId.
func (s *Store) ListReceivedWithin(from, to time.Time, limit, offset int, externalID *string) ([]IncomingPayment, error) {
	if externalID == nil {
		const query = `SELECT * FROM incoming_payment
			WHERE received_at >= $1 AND received_at < $2
			ORDER BY received_at DESC
			LIMIT $3 OFFSET $4`
		return s.queryIncoming(query, from, to, limit, offset)
	}

	const query = `SELECT ip.* FROM incoming_payment ip
		JOIN payment_metadata pm ON pm.payment_type = $5 AND pm.payment_id = ip.id::text
		WHERE ip.received_at >= $1 AND ip.received_at < $2 AND pm.external_id = $6
		ORDER BY ip.received_at DESC
		LIMIT $3 OFFSET $4`
	return s.queryIncoming(query, from, to, limit, offset, PaymentTypeIncoming, *externalID)
}

// GetOldestReceivedDate returns the earliest receivedAt across all
// received incoming payments.
func (s *Store) GetOldestReceivedDate() (time.Time, error) {
	var t time.Time
	err := s.db.Get(&t, `SELECT MIN(received_at) FROM incoming_payment WHERE received_at IS NOT NULL`)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "could not get oldest received date")
	}
	return t, nil
}

// ListExpiredPayments returns unreceived incoming payments created in
// [from, to) whose invoice has passed its expiry; expiry itself is
// computed by the caller (the BOLT11 decoder), since the store has no
// notion of invoice expiry independent of the encoded origin blob.
func (s *Store) ListExpiredPayments(from, to time.Time, isExpired func(IncomingPayment) bool) ([]IncomingPayment, error) {
	const query = `SELECT * FROM incoming_payment
		WHERE received_at IS NULL AND created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC`
	all, err := s.queryIncoming(query, from, to)
	if err != nil {
		return nil, err
	}

	expired := make([]IncomingPayment, 0, len(all))
	for _, p := range all {
		if isExpired(p) {
			expired = append(expired, p)
		}
	}
	return expired, nil
}

// Delete removes an unreceived incoming payment. Returns true iff exactly
// one row was removed; a received payment is never removed. Invoice expiry
// is not checked here.
func (s *Store) Delete(paymentHash string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM incoming_payment WHERE payment_hash = $1 AND received_at IS NULL`, paymentHash)
	if err != nil {
		return false, errors.Wrapf(err, "could not delete incoming payment %q", paymentHash)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "could not read rows affected")
	}
	return rows == 1, nil
}

func (s *Store) queryIncoming(query string, args ...interface{}) ([]IncomingPayment, error) {
	var rows []incomingRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "could not query incoming payments")
	}
	payments := make([]IncomingPayment, 0, len(rows))
	for _, row := range rows {
		p, err := hydrateIncoming(row)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (s *Store) streamIncoming(query string, args []interface{}, visit func(IncomingPayment) error) error {
	rows, err := s.db.Queryx(query, args...)
	if err != nil {
		return errors.Wrap(err, "could not query incoming payments")
	}
	defer rows.Close()

	for rows.Next() {
		var row incomingRow
		if err := rows.StructScan(&row); err != nil {
			return errors.Wrap(err, "could not scan incoming payment row")
		}
		p, err := hydrateIncoming(row)
		if err != nil {
			return err
		}
		if err := visit(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

func decodeReceivedWith(row incomingRow) ([]encoding.ReceivedWith, error) {
	switch {
	case row.ReceivedAt == nil && row.ReceivedWithType == nil:
		return nil, nil
	case row.ReceivedAt != nil && row.ReceivedWithType != nil:
		return encoding.DecodeReceivedWithList(*row.ReceivedWithType, row.ReceivedWithBlob)
	case row.ReceivedAt != nil && row.ReceivedWithType == nil:
		// Only receivedAt set: a lock/confirm transition bumped the
		// timestamp before any part had ever been appended. Treat as
		// empty, not corrupt.
		return nil, nil
	default:
		return nil, &UnreadableIncomingReceivedWithError{PaymentHash: row.PaymentHash, ReceivedAt: row.ReceivedAt, Type: row.ReceivedWithType}
	}
}

func hydrateIncoming(row incomingRow) (IncomingPayment, error) {
	origin, err := encoding.DecodeIncomingOrigin(row.OriginType, row.OriginBlob)
	if err != nil {
		return IncomingPayment{}, err
	}

	p := IncomingPayment{
		ID:          row.ID,
		PaymentHash: row.PaymentHash,
		Preimage:    row.Preimage,
		Origin:      origin,
		CreatedAt:   row.CreatedAt,
	}

	if row.ReceivedAt != nil {
		parts, err := decodeReceivedWith(row)
		if err != nil {
			return IncomingPayment{}, err
		}
		p.Received = &Received{ReceivedWith: parts, ReceivedAt: *row.ReceivedAt}
	}

	return p, nil
}
