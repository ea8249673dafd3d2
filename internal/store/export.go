package store

import (
	"time"

	"github.com/pkg/errors"

	"gitlab.com/arcanecrypto/noded/internal/encoding"
)

// StreamCompletedPayments streams completed outgoing payments — succeeded
// outgoing Lightning payments, confirmed channel closes, and confirmed
// inbound-liquidity purchases — in ascending completedAt order within
// [from, to), invoking visit once per row. Incoming payments are not
// included. Rows are scanned and visited one at a time; they are never
// collected into a slice.
func (s *Store) StreamCompletedPayments(from, to time.Time, visit func(CompletedPayment) error) error {
	const query = `
		SELECT 'LightningOutgoing' AS kind, id::text AS id, recipient_amount_sat AS amount_sat, completed_at
		FROM outgoing_payment
		WHERE status_type = $3 AND completed_at >= $1 AND completed_at < $2
		UNION ALL
		SELECT 'ChannelClose' AS kind, id::text AS id, amount_sat, confirmed_at AS completed_at
		FROM channel_close_outgoing_payment
		WHERE confirmed_at >= $1 AND confirmed_at < $2
		UNION ALL
		SELECT 'InboundLiquidity' AS kind, id::text AS id, mining_fee_sat AS amount_sat, confirmed_at AS completed_at
		FROM inbound_liquidity_outgoing_payment
		WHERE confirmed_at >= $1 AND confirmed_at < $2
		ORDER BY completed_at ASC`

	rows, err := s.db.Queryx(query, from, to, encoding.TagOutgoingStatusSucceededV0)
	if err != nil {
		return errors.Wrap(err, "could not query completed payments")
	}
	defer rows.Close()

	for rows.Next() {
		var row CompletedPayment
		if err := rows.Scan(&row.Kind, &row.ID, &row.AmountSat, &row.CompletedAt); err != nil {
			return errors.Wrap(err, "could not scan completed payment row")
		}
		if err := visit(row); err != nil {
			return err
		}
	}
	return rows.Err()
}
