package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
)

type balanceResponse struct {
	BalanceSat   int64 `json:"balanceSat"`
	FeeCreditSat int64 `json:"feeCreditSat"`
}

// getBalance sums the local balance across every usable channel with the
// peer. Fee credit is read from the supervisor's cached snapshot of the
// engine's FeeCreditFlow rather than re-derived from the payments store.
func (s *Server) getBalance(c *gin.Context) {
	channels, err := s.engine.Channels(c.Request.Context())
	if err != nil {
		apierr.Internal(c, err)
		return
	}

	var balance int64
	for _, ch := range channels {
		if ch.IsUsable {
			balance += ch.LocalBalance
		}
	}

	c.JSON(http.StatusOK, balanceResponse{BalanceSat: balance, FeeCreditSat: s.supervisor.FeeCredit()})
}
