package store

import (
	"github.com/pkg/errors"
)

// AddMetadata inserts (or replaces) the caller-supplied annotation for a
// payment, keyed by its native identity. Called before createInvoice
// responds when the caller supplied an externalId or webhookUrl.
func (s *Store) AddMetadata(meta PaymentMetadata) error {
	const query = `INSERT INTO payment_metadata (payment_type, payment_id, external_id, webhook_url)
		VALUES (:payment_type, :payment_id, :external_id, :webhook_url)
		ON CONFLICT (payment_type, payment_id) DO UPDATE
		SET external_id = :external_id, webhook_url = :webhook_url`
	if _, err := s.db.NamedExec(query, meta); err != nil {
		return errors.Wrapf(err, "could not insert metadata for %s %q", meta.PaymentType, meta.PaymentID)
	}
	return nil
}

// WebhookURLForPaymentHash resolves the per-payment webhook URL
// registered for the incoming payment with this payment hash, if any.
// It implements peer.MetadataLookup.
func (s *Store) WebhookURLForPaymentHash(paymentHash string) (string, bool) {
	var id string
	if err := s.db.Get(&id, `SELECT id FROM incoming_payment WHERE payment_hash = $1`, paymentHash); err != nil {
		return "", false
	}

	var url *string
	err := s.db.Get(&url, `SELECT webhook_url FROM payment_metadata WHERE payment_type = $1 AND payment_id = $2`,
		PaymentTypeIncoming, id)
	if err != nil || url == nil {
		return "", false
	}
	return *url, true
}
