package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"gitlab.com/arcanecrypto/noded/internal/encoding"
)

// AddOutgoing transactionally inserts a new outgoing Lightning payment and
// its initial parts.
func (s *Store) AddOutgoing(recipient string, recipientAmount int64, details encoding.LightningOutgoingDetails, parts []Part, createdAt time.Time) (LightningOutgoingPayment, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return LightningOutgoingPayment{}, errors.Wrap(err, "could not begin transaction")
	}

	id := uuid.New()
	tag, blob, err := encoding.EncodeOutgoingDetails(details)
	if err != nil {
		_ = tx.Rollback()
		return LightningOutgoingPayment{}, errors.Wrap(err, "could not encode details")
	}

	const insertPayment = `INSERT INTO outgoing_payment
		(id, recipient, recipient_amount_sat, details_type, details_blob, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(insertPayment, id, recipient, recipientAmount, tag, blob, createdAt); err != nil {
		_ = tx.Rollback()
		return LightningOutgoingPayment{}, errors.Wrap(err, "could not insert outgoing payment")
	}

	inserted, err := insertParts(tx, id, parts)
	if err != nil {
		_ = tx.Rollback()
		return LightningOutgoingPayment{}, err
	}

	if err := tx.Commit(); err != nil {
		return LightningOutgoingPayment{}, errors.Wrap(err, "could not commit")
	}

	return LightningOutgoingPayment{
		ID:              id,
		Recipient:       recipient,
		RecipientAmount: recipientAmount,
		Details:         details,
		Parts:           inserted,
		Status:          encoding.OutgoingStatusPending{},
		CreatedAt:       createdAt,
	}, nil
}

// AddParts transactionally inserts additional parts for an already
// existing payment. The foreign key on outgoing_payment_part.parent_id
// enforces that the parent exists.
func (s *Store) AddParts(parentID uuid.UUID, parts []Part) ([]Part, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, errors.Wrap(err, "could not begin transaction")
	}
	inserted, err := insertParts(tx, parentID, parts)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "could not commit")
	}
	return inserted, nil
}

func insertParts(tx *sqlx.Tx, parentID uuid.UUID, parts []Part) ([]Part, error) {
	const insertPart = `INSERT INTO outgoing_payment_part
		(id, parent_id, amount_sat, route, status_type, status_blob, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	inserted := make([]Part, 0, len(parts))
	for _, p := range parts {
		id := p.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		status := p.Status
		if status == nil {
			status = encoding.PartStatusPending{}
		}
		// Pending is stored as NULL status columns; a terminal status is
		// stored together with its completed_at.
		var tag, blob interface{}
		completedAt := p.CompletedAt
		if _, pending := status.(encoding.PartStatusPending); pending {
			completedAt = nil
		} else {
			statusTag, statusBlob, err := encoding.EncodePartStatus(status)
			if err != nil {
				return nil, errors.Wrap(err, "could not encode part status")
			}
			tag, blob = statusTag, statusBlob
			if completedAt == nil {
				createdAt := p.CreatedAt
				completedAt = &createdAt
			}
		}
		route := encoding.EncodeRoute(p.Route)

		if _, err := tx.Exec(insertPart, id, parentID, p.AmountSat, route, tag, blob, completedAt, p.CreatedAt); err != nil {
			return nil, errors.Wrapf(err, "could not insert part %s", id)
		}

		p.ID = id
		p.ParentID = parentID
		p.Status = status
		p.CompletedAt = completedAt
		inserted = append(inserted, p)
	}
	return inserted, nil
}

// CompletePayment updates a payment's aggregate status and completedAt.
// Returns whether exactly one row changed.
func (s *Store) CompletePayment(id uuid.UUID, status encoding.OutgoingStatus, completedAt time.Time) (bool, error) {
	tag, blob, err := encoding.EncodeOutgoingStatus(status)
	if err != nil {
		return false, errors.Wrap(err, "could not encode status")
	}

	const query = `UPDATE outgoing_payment
		SET status_type = $1, status_blob = $2, completed_at = $3
		WHERE id = $4`
	result, err := s.db.Exec(query, tag, blob, completedAt, id)
	if err != nil {
		return false, errors.Wrapf(err, "could not complete payment %s", id)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "could not read rows affected")
	}
	return rows == 1, nil
}

// UpdatePart transitions a single part to a terminal status. Returns
// whether exactly one row changed.
func (s *Store) UpdatePart(partID uuid.UUID, status encoding.PartStatus, completedAt time.Time) (bool, error) {
	tag, blob, err := encoding.EncodePartStatus(status)
	if err != nil {
		return false, errors.Wrap(err, "could not encode part status")
	}

	const query = `UPDATE outgoing_payment_part
		SET status_type = $1, status_blob = $2, completed_at = $3
		WHERE id = $4`
	result, err := s.db.Exec(query, tag, blob, completedAt, partID)
	if err != nil {
		return false, errors.Wrapf(err, "could not update part %s", partID)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "could not read rows affected")
	}
	return rows == 1, nil
}

// GetPaymentFromPartID looks up the owning payment of a given part,
// rehydrates it with all of its parts, and applies filterUselessParts.
func (s *Store) GetPaymentFromPartID(partID uuid.UUID) (LightningOutgoingPayment, error) {
	var parentID uuid.UUID
	if err := s.db.Get(&parentID, `SELECT parent_id FROM outgoing_payment_part WHERE id = $1`, partID); err != nil {
		return LightningOutgoingPayment{}, errors.Wrapf(err, "could not find parent of part %s", partID)
	}
	return s.GetPayment(parentID)
}

// GetPayment fetches a single outgoing payment together with its parts.
func (s *Store) GetPayment(id uuid.UUID) (LightningOutgoingPayment, error) {
	payments, err := s.queryOutgoing(outgoingBaseQuery+` WHERE op.id = $1`, id)
	if err != nil {
		return LightningOutgoingPayment{}, err
	}
	if len(payments) == 0 {
		return LightningOutgoingPayment{}, errors.Errorf("no outgoing payment with id %s", id)
	}
	return payments[0], nil
}

// ListPaymentsWithin returns every outgoing payment created in
// [from, to), newest first, paginated.
func (s *Store) ListPaymentsWithin(from, to time.Time, limit, offset int) ([]LightningOutgoingPayment, error) {
	query := outgoingBaseQuery + ` WHERE op.id IN (
			SELECT id FROM outgoing_payment
			WHERE created_at >= $1 AND created_at < $2
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4)
		ORDER BY op.created_at DESC, opp.created_at ASC`
	return s.queryOutgoing(query, from, to, limit, offset)
}

// ListSuccessfulOrPendingPaymentsWithin is the same as ListPaymentsWithin
// but excludes payments whose aggregate status is Failed.
func (s *Store) ListSuccessfulOrPendingPaymentsWithin(from, to time.Time, limit, offset int) ([]LightningOutgoingPayment, error) {
	query := outgoingBaseQuery + ` WHERE op.id IN (
			SELECT id FROM outgoing_payment
			WHERE created_at >= $1 AND created_at < $2
			AND (status_type IS NULL OR status_type != $5)
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4)
		ORDER BY op.created_at DESC, opp.created_at ASC`
	return s.queryOutgoing(query, from, to, limit, offset, encoding.TagOutgoingStatusFailedV0)
}

// ListPaymentsForPaymentHash is a diagnostic lookup: returns every
// outgoing payment sent toward invoices whose payment hash matches.
// Details blobs are matched textually since the hash itself lives inside
// the decoded details, not as its own indexed column.
func (s *Store) ListPaymentsForPaymentHash(paymentHash string) ([]LightningOutgoingPayment, error) {
	query := outgoingBaseQuery + ` WHERE op.details_blob::text LIKE '%' || $1 || '%'
		ORDER BY op.created_at DESC, opp.created_at ASC`
	return s.queryOutgoing(query, paymentHash)
}

const outgoingBaseQuery = `SELECT
	op.id, op.recipient, op.recipient_amount_sat, op.details_type, op.details_blob,
	op.status_type, op.status_blob, op.completed_at, op.created_at,
	opp.id AS part_id, opp.parent_id AS part_parent_id, opp.amount_sat AS part_amount_sat,
	opp.route AS part_route, opp.status_type AS part_status_type, opp.status_blob AS part_status_blob,
	opp.completed_at AS part_completed_at, opp.created_at AS part_created_at
	FROM outgoing_payment op
	LEFT JOIN outgoing_payment_part opp ON opp.parent_id = op.id`

// queryOutgoing runs a (payment, part) denormalized query and groups the
// resulting flat rows by payment id, preserving insertion order, then
// applies filterUselessParts to each group.
func (s *Store) queryOutgoing(query string, args ...interface{}) ([]LightningOutgoingPayment, error) {
	rows, err := s.db.Queryx(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "could not query outgoing payments")
	}
	defer rows.Close()

	order := make([]uuid.UUID, 0)
	byID := make(map[uuid.UUID]*outgoingGroup)

	for rows.Next() {
		var payRow outgoingPaymentRow
		var partRow outgoingPartRow
		if err := rows.Scan(
			&payRow.ID, &payRow.Recipient, &payRow.RecipientAmountSat, &payRow.DetailsType, &payRow.DetailsBlob,
			&payRow.StatusType, &payRow.StatusBlob, &payRow.CompletedAt, &payRow.CreatedAt,
			&partRow.ID, &partRow.ParentID, &partRow.AmountSat, &partRow.Route,
			&partRow.StatusType, &partRow.StatusBlob, &partRow.CompletedAt, &partRow.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "could not scan outgoing payment row")
		}

		group, ok := byID[payRow.ID]
		if !ok {
			group = &outgoingGroup{payment: payRow}
			byID[payRow.ID] = group
			order = append(order, payRow.ID)
		}

		// A payment with no parts produces one all-NULL synthetic part
		// row via the LEFT JOIN; discard it rather than treating it as a
		// real part.
		if partRow.ID != nil {
			group.parts = append(group.parts, partRow)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	payments := make([]LightningOutgoingPayment, 0, len(order))
	for _, id := range order {
		group := byID[id]
		p, err := hydrateOutgoing(group.payment, group.parts)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

type outgoingGroup struct {
	payment outgoingPaymentRow
	parts   []outgoingPartRow
}

func hydrateOutgoing(row outgoingPaymentRow, partRows []outgoingPartRow) (LightningOutgoingPayment, error) {
	details, err := encoding.DecodeOutgoingDetails(row.DetailsType, row.DetailsBlob)
	if err != nil {
		return LightningOutgoingPayment{}, err
	}

	var status encoding.OutgoingStatus = encoding.OutgoingStatusPending{}
	if row.StatusType != nil && row.CompletedAt != nil {
		status, err = encoding.DecodeOutgoingStatus(*row.StatusType, row.StatusBlob)
		if err != nil {
			return LightningOutgoingPayment{}, err
		}
	} else if row.StatusType != nil || row.CompletedAt != nil {
		return LightningOutgoingPayment{}, &UnhandledOutgoingStatusError{ID: row.ID.String()}
	}

	parts := make([]Part, 0, len(partRows))
	for _, pr := range partRows {
		part, err := hydratePart(pr)
		if err != nil {
			return LightningOutgoingPayment{}, err
		}
		parts = append(parts, part)
	}

	parts = filterUselessParts(status, parts)

	return LightningOutgoingPayment{
		ID:              row.ID,
		Recipient:       row.Recipient,
		RecipientAmount: row.RecipientAmountSat,
		Details:         details,
		Parts:           parts,
		Status:          status,
		CreatedAt:       row.CreatedAt,
		CompletedAt:     row.CompletedAt,
	}, nil
}

func hydratePart(row outgoingPartRow) (Part, error) {
	route, err := encoding.DecodeRoute(*row.Route)
	if err != nil {
		return Part{}, err
	}

	var status encoding.PartStatus = encoding.PartStatusPending{}
	if row.StatusType != nil && row.CompletedAt != nil {
		status, err = encoding.DecodePartStatus(*row.StatusType, row.StatusBlob)
		if err != nil {
			return Part{}, err
		}
	} else if row.StatusType != nil || row.CompletedAt != nil {
		return Part{}, &UnhandledOutgoingPartStatusError{PartID: row.ID.String()}
	}

	return Part{
		ID:          *row.ID,
		ParentID:    *row.ParentID,
		AmountSat:   *row.AmountSat,
		Route:       route,
		Status:      status,
		CreatedAt:   *row.CreatedAt,
		CompletedAt: row.CompletedAt,
	}, nil
}

// filterUselessParts implements the spec rule: once a payment has
// succeeded off-chain, only its succeeded parts are worth exposing —
// failed/abandoned MPP attempts would otherwise confuse balance
// accounting. Every other status keeps all parts.
func filterUselessParts(status encoding.OutgoingStatus, parts []Part) []Part {
	if _, ok := status.(encoding.OutgoingStatusSucceededOffChain); !ok {
		return parts
	}
	kept := make([]Part, 0, len(parts))
	for _, p := range parts {
		if _, ok := p.Status.(encoding.PartStatusSucceeded); ok {
			kept = append(kept, p)
		}
	}
	return kept
}
