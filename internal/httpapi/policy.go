package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
	"gitlab.com/arcanecrypto/noded/internal/liquidity"
)

type liquidityPolicyResponse struct {
	MaxAbsoluteFeeSat      int64 `json:"maxAbsoluteFeeSat"`
	MaxRelativeFeeBasisPts int64 `json:"maxRelativeFeeBasisPoints"`
	MaxAllowedCreditSat    int64 `json:"maxAllowedCreditSat"`
}

// getLiquidityPolicy reports the currently active liquidity policy.
func (s *Server) getLiquidityPolicy(c *gin.Context) {
	p := s.liquidity.Get()
	c.JSON(http.StatusOK, liquidityPolicyResponse{
		MaxAbsoluteFeeSat:      p.MaxAbsoluteFeeSat,
		MaxRelativeFeeBasisPts: p.MaxRelativeFeeBasisPts,
		MaxAllowedCreditSat:    p.MaxAllowedCreditSat,
	})
}

// setLiquidityPolicy replaces the active liquidity policy, propagating it
// to the protocol engine's own auto-liquidity parameters so both sides of
// the accept/credit/reject decision agree.
func (s *Server) setLiquidityPolicy(c *gin.Context) {
	maxAbsoluteFeeSat, ok := requiredAmountSat(c, "maxAbsoluteFeeSat")
	if !ok {
		return
	}
	maxRelativeFeeBasisPts, ok := requiredAmountSat(c, "maxRelativeFeeBasisPoints")
	if !ok {
		return
	}
	maxAllowedCreditSat, ok := requiredAmountSat(c, "maxAllowedCreditSat")
	if !ok {
		return
	}

	policy := liquidity.Policy{
		MaxAbsoluteFeeSat:      maxAbsoluteFeeSat,
		MaxRelativeFeeBasisPts: maxRelativeFeeBasisPts,
		MaxAllowedCreditSat:    maxAllowedCreditSat,
	}
	if err := s.liquidity.Set(policy); err != nil {
		apierr.InvalidParameter(c, "policy", "value within configured bounds")
		return
	}

	if err := s.engine.SetAutoLiquidityParams(c.Request.Context(), maxAbsoluteFeeSat, maxRelativeFeeBasisPts, maxAllowedCreditSat); err != nil {
		apierr.Internal(c, err)
		return
	}

	c.Status(http.StatusOK)
}
