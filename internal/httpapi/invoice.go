package httpapi

import (
	"encoding/hex"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/lightningnetwork/lnd/zpay32"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
	"gitlab.com/arcanecrypto/noded/internal/encoding"
	"gitlab.com/arcanecrypto/noded/internal/store"
)

const maxDescriptionLength = 128

type createInvoiceResponse struct {
	AmountSat   *int64 `json:"amountSat,omitempty"`
	PaymentHash string `json:"paymentHash"`
	Serialized  string `json:"serialized"`
}

// createInvoice accepts exactly one of description/descriptionHash,
// an optional amountSat, and an optional expirySeconds, and responds with
// the resulting invoice. An externalId or webhookUrl is persisted as
// metadata before the response is sent.
func (s *Server) createInvoice(c *gin.Context) {
	description := optionalString(c, "description")
	descriptionHash := optionalString(c, "descriptionHash")
	if (description == "") == (descriptionHash == "") {
		apierr.Public(c, http.StatusBadRequest, apierr.ErrBadRequest)
		return
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		apierr.InvalidParameter(c, "description", "string of at most 128 characters")
		return
	}

	amountSat, amountGiven, ok := optionalAmountSat(c, "amountSat")
	if !ok {
		return
	}
	expirySeconds, expiryGiven, ok := optionalExpirySeconds(c)
	if !ok {
		return
	}
	expiry := time.Hour
	if expiryGiven {
		expiry = time.Duration(expirySeconds) * time.Second
	}

	externalID := optionalString(c, "externalId")
	webhookURL := optionalString(c, "webhookUrl")

	var amountPtr *int64
	if amountGiven {
		amountPtr = &amountSat
	}

	paymentHash, preimage, serialized, err := s.engine.CreateInvoice(c.Request.Context(), amountPtr, description, descriptionHash, expiry)
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	incoming, err := s.store.AddIncoming(preimage, paymentHash, encoding.OriginInvoice{Request: serialized}, time.Now())
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	if externalID != "" || webhookURL != "" {
		meta := store.PaymentMetadata{PaymentType: store.PaymentTypeIncoming, PaymentID: incoming.ID.String()}
		if externalID != "" {
			meta.ExternalID = &externalID
		}
		if webhookURL != "" {
			meta.WebhookURL = &webhookURL
		}
		if err := s.store.AddMetadata(meta); err != nil {
			apierr.Internal(c, err)
			return
		}
	}

	response := createInvoiceResponse{PaymentHash: paymentHash, Serialized: serialized}
	if amountGiven {
		response.AmountSat = &amountSat
	}
	c.JSON(http.StatusOK, response)
}

type decodeInvoiceResponse struct {
	PaymentHash   string `json:"paymentHash"`
	AmountSat     *int64 `json:"amountSat,omitempty"`
	Description   string `json:"description,omitempty"`
	ExpirySeconds int64  `json:"expirySeconds"`
}

// decodeInvoice reports the fields encoded in a serialized BOLT11
// invoice, without touching the store or the peer.
func (s *Server) decodeInvoice(c *gin.Context) {
	invoice, ok := requiredString(c, "invoice")
	if !ok {
		return
	}

	decoded, err := zpay32.Decode(invoice, s.network)
	if err != nil {
		apierr.InvalidParameter(c, "invoice", "serialized BOLT11 invoice")
		return
	}

	response := decodeInvoiceResponse{
		PaymentHash:   hex.EncodeToString(decoded.PaymentHash[:]),
		ExpirySeconds: int64(decoded.Expiry().Seconds()),
	}
	if decoded.MilliSat != nil {
		amount := int64(decoded.MilliSat.ToSatoshis())
		response.AmountSat = &amount
	}
	if decoded.Description != nil {
		response.Description = *decoded.Description
	}

	c.JSON(http.StatusOK, response)
}
