package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
	"gitlab.com/arcanecrypto/noded/internal/encoding"
	"gitlab.com/arcanecrypto/noded/internal/store"
)

const defaultListLimit = 20

// getIncomingPayment fetches one incoming payment by its payment hash.
func (s *Server) getIncomingPayment(c *gin.Context) {
	paymentHash := c.Param("paymentHash")
	payment, err := s.store.Get(paymentHash)
	if err != nil {
		var decodeErr *encoding.DecodeError
		var unreadableErr *store.UnreadableIncomingReceivedWithError
		if errors.As(err, &decodeErr) || errors.As(err, &unreadableErr) {
			apierr.StateCorruption(c, err)
			return
		}
		apierr.Public(c, http.StatusNotFound, apierr.ErrPaymentNotFound)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// listIncomingPayments lists incoming payments created within an
// optional [from, to) window, newest first, paginated.
func (s *Server) listIncomingPayments(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	payments, err := s.store.ListCreatedWithin(from, to, limit, offset)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// listOutgoingPayments lists outgoing Lightning payments created within
// an optional [from, to) window, newest first, paginated.
func (s *Server) listOutgoingPayments(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	payments, err := s.store.ListPaymentsWithin(from, to, limit, offset)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func parseWindow(c *gin.Context) (from, to time.Time, ok bool) {
	from = time.Unix(0, 0).UTC()
	to = time.Now().UTC()

	if raw := c.Query("from"); raw != "" {
		seconds, err := parseUnixSeconds(raw)
		if err != nil {
			apierr.InvalidParameter(c, "from", "unix timestamp in seconds")
			return from, to, false
		}
		from = seconds
	}
	if raw := c.Query("to"); raw != "" {
		seconds, err := parseUnixSeconds(raw)
		if err != nil {
			apierr.InvalidParameter(c, "to", "unix timestamp in seconds")
			return from, to, false
		}
		to = seconds
	}
	return from, to, true
}

func parseUnixSeconds(raw string) (time.Time, error) {
	amount, err := parseNonNegativeInt(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(amount, 0).UTC(), nil
}

func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limit = defaultListLimit
	offset = 0

	if raw := c.Query("limit"); raw != "" {
		amount, err := parseNonNegativeInt(raw)
		if err != nil {
			apierr.InvalidParameter(c, "limit", "non-negative integer")
			return limit, offset, false
		}
		limit = int(amount)
	}
	if raw := c.Query("offset"); raw != "" {
		amount, err := parseNonNegativeInt(raw)
		if err != nil {
			apierr.InvalidParameter(c, "offset", "non-negative integer")
			return limit, offset, false
		}
		offset = int(amount)
	}
	return limit, offset, true
}
