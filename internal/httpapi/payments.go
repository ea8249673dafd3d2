package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/zpay32"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
	"gitlab.com/arcanecrypto/noded/internal/encoding"
	"gitlab.com/arcanecrypto/noded/internal/lnproto"
)

type paymentSentResponse struct {
	Preimage string `json:"preimage"`
	FeesPaid int64  `json:"feesSat"`
}

type paymentFailedResponse struct {
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
}

// payInvoice forwards a BOLT11 invoice (with an optional amount
// override for any-amount invoices) to the peer and records the
// resulting outgoing payment.
func (s *Server) payInvoice(c *gin.Context) {
	invoice, ok := requiredString(c, "invoice")
	if !ok {
		return
	}
	amountSat, amountGiven, ok := optionalAmountSat(c, "amountSat")
	if !ok {
		return
	}
	var amountPtr *int64
	if amountGiven {
		amountPtr = &amountSat
	}

	payment, err := s.store.AddOutgoing(s.recipientOf(invoice), amountSat, encoding.OutgoingDetailsNormal{PaymentRequest: invoice}, nil, time.Now())
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	result, err := s.engine.PayInvoice(c.Request.Context(), invoice, amountPtr)
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	s.respondPaymentResult(c, payment.ID, result)
}

// payLnAddress resolves a Lightning Address to its pay-service LNURL
// descriptor and pays it.
func (s *Server) payLnAddress(c *gin.Context) {
	address, ok := requiredString(c, "address")
	if !ok {
		return
	}
	amountSat, ok := requiredAmountSat(c, "amountSat")
	if !ok {
		return
	}

	descriptor, err := s.resolver.ResolveAddress(c.Request.Context(), address)
	if err != nil {
		apierr.Public(c, http.StatusNotFound, apierr.ErrLnurlNotFound)
		return
	}

	s.executeLnurlPay(c, descriptor, amountSat)
}

// lnurlPay executes the pay flow against a raw LNURL.
func (s *Server) lnurlPay(c *gin.Context) {
	lnurl, ok := requiredString(c, "lnurl")
	if !ok {
		return
	}
	amountSat, ok := requiredAmountSat(c, "amountSat")
	if !ok {
		return
	}

	descriptor, err := s.resolver.ExecuteLnurl(c.Request.Context(), lnurl)
	if err != nil {
		apierr.Public(c, http.StatusNotFound, apierr.ErrLnurlNotFound)
		return
	}
	if descriptor.Tag != lnproto.LnurlTagPay {
		apierr.InvalidParameter(c, "lnurl", "an LNURL-pay endpoint")
		return
	}

	s.executeLnurlPay(c, descriptor, amountSat)
}

func (s *Server) executeLnurlPay(c *gin.Context, descriptor lnproto.LnurlDescriptor, amountSat int64) {
	if descriptor.Tag != lnproto.LnurlTagPay {
		apierr.Public(c, http.StatusOK, apierr.ErrBadRequest)
		return
	}
	amountMsat := amountSat * 1000
	if amountMsat < descriptor.MinSendable || amountMsat > descriptor.MaxSendable {
		apierr.InvalidParameter(c, "amountSat", "amount within the recipient's sendable range")
		return
	}

	invoice, err := s.resolver.GetLnurlPayInvoice(c.Request.Context(), descriptor, amountMsat)
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	recipient := s.recipientOf(invoice)
	if recipient == "" {
		recipient = descriptor.Callback
	}
	payment, err := s.store.AddOutgoing(recipient, amountSat, encoding.OutgoingDetailsNormal{PaymentRequest: invoice}, nil, time.Now())
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	result, err := s.engine.PayInvoice(c.Request.Context(), invoice, &amountSat)
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	s.respondPaymentResult(c, payment.ID, result)
}

// lnurlWithdraw executes the withdraw flow: the node is the payee here,
// so a fresh invoice is created first and handed to the withdraw
// service.
func (s *Server) lnurlWithdraw(c *gin.Context) {
	lnurl, ok := requiredString(c, "lnurl")
	if !ok {
		return
	}

	descriptor, err := s.resolver.ExecuteLnurl(c.Request.Context(), lnurl)
	if err != nil {
		apierr.Public(c, http.StatusNotFound, apierr.ErrLnurlNotFound)
		return
	}
	if descriptor.Tag != lnproto.LnurlTagWithdraw {
		apierr.InvalidParameter(c, "lnurl", "an LNURL-withdraw endpoint")
		return
	}

	amountSat := descriptor.MaxWithdrawable / 1000
	paymentHash, preimage, serialized, err := s.engine.CreateInvoice(c.Request.Context(), &amountSat, "lnurl-withdraw", "", time.Hour)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	if _, err := s.store.AddIncoming(preimage, paymentHash, encoding.OriginInvoice{Request: serialized}, time.Now()); err != nil {
		apierr.Internal(c, err)
		return
	}

	if err := s.resolver.SendWithdrawInvoice(c.Request.Context(), descriptor, serialized); err != nil {
		apierr.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, createInvoiceResponse{PaymentHash: paymentHash, Serialized: serialized})
}

// lnurlAuth executes the LNURL-auth login flow against the resolved
// descriptor using a linking key seed derived from the primary password.
func (s *Server) lnurlAuth(c *gin.Context) {
	lnurl, ok := requiredString(c, "lnurl")
	if !ok {
		return
	}

	descriptor, err := s.resolver.ExecuteLnurl(c.Request.Context(), lnurl)
	if err != nil {
		apierr.Public(c, http.StatusNotFound, apierr.ErrLnurlNotFound)
		return
	}
	if descriptor.Tag != lnproto.LnurlTagAuth {
		apierr.InvalidParameter(c, "lnurl", "an LNURL-auth endpoint")
		return
	}

	seed := linkingKeySeed(s.config.PrimaryPassword)
	if err := s.resolver.SignAndSendAuthRequest(c.Request.Context(), descriptor, seed); err != nil {
		apierr.Internal(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// linkingKeySeed reduces the primary password to a valid secp256k1 scalar,
// the root seed the resolver derives per-domain LNURL-auth linking keys
// from. Hashing before handing it to btcec guarantees the seed always
// falls within the curve order, regardless of password length or content.
func linkingKeySeed(primaryPassword string) []byte {
	sum := sha256.Sum256([]byte(primaryPassword))
	priv, _ := btcec.PrivKeyFromBytes(sum[:])
	return priv.Serialize()
}

// recipientOf returns the hex-encoded destination pubkey of a BOLT11
// invoice, or "" if it doesn't decode (e.g. a BOLT12 offer).
func (s *Server) recipientOf(invoice string) string {
	decoded, err := zpay32.Decode(invoice, s.network)
	if err != nil || decoded.Destination == nil {
		return ""
	}
	return hex.EncodeToString(decoded.Destination.SerializeCompressed())
}

// respondPaymentResult completes the just-inserted outgoing payment and
// responds with the matching PaymentSent/PaymentFailed shape — never a
// partial success.
func (s *Server) respondPaymentResult(c *gin.Context, paymentID uuid.UUID, result lnproto.PayInvoiceResult) {
	now := time.Now()

	if result.Failed {
		status := encoding.OutgoingStatusFailed{Reason: result.Reason}
		if _, err := s.store.CompletePayment(paymentID, status, now); err != nil {
			apierr.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, paymentFailedResponse{Reason: result.Reason, Attempts: 1})
		return
	}

	status := encoding.OutgoingStatusSucceededOffChain{Preimage: result.Preimage, FeesPaid: result.FeesPaid}
	if _, err := s.store.CompletePayment(paymentID, status, now); err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentSentResponse{Preimage: result.Preimage, FeesPaid: result.FeesPaid})
}
