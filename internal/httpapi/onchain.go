package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
)

type spliceResultResponse struct {
	TxID string `json:"txId"`
}

// sendToAddress splices out to an external on-chain address and responds
// with the splice transaction id. Nothing is written to the store here.
func (s *Server) sendToAddress(c *gin.Context) {
	channelID, ok := requiredString(c, "channelId")
	if !ok {
		return
	}
	address, ok := requiredString(c, "address")
	if !ok {
		return
	}
	amountSat, ok := requiredAmountSat(c, "amountSat")
	if !ok {
		return
	}

	result, err := s.engine.SpliceOut(c.Request.Context(), channelID, address, amountSat)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	if result.Failed {
		apierr.Public(c, http.StatusOK, apierr.ErrBadRequest)
		return
	}

	c.JSON(http.StatusOK, spliceResultResponse{TxID: result.TxID})
}

// bumpFee splices a CPFP transaction onto an unconfirmed channel-funding
// or splice transaction at the given feerate.
func (s *Server) bumpFee(c *gin.Context) {
	channelID, ok := requiredString(c, "channelId")
	if !ok {
		return
	}
	feerate, ok := requiredAmountSat(c, "feerateSatPerVbyte")
	if !ok {
		return
	}

	result, err := s.engine.SpliceCpfp(c.Request.Context(), channelID, feerate)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	if result.Failed {
		apierr.Public(c, http.StatusOK, apierr.ErrBadRequest)
		return
	}

	c.JSON(http.StatusOK, spliceResultResponse{TxID: result.TxID})
}

// closeChannel requests a mutual close, optionally to an address other
// than the node's default.
func (s *Server) closeChannel(c *gin.Context) {
	channelID, ok := requiredString(c, "channelId")
	if !ok {
		return
	}
	address := optionalString(c, "address")
	if address == "" {
		resolved, err := s.engine.RequestAddress(c.Request.Context())
		if err != nil {
			apierr.Internal(c, err)
			return
		}
		address = resolved
	}

	result, err := s.engine.SpliceOut(c.Request.Context(), channelID, address, 0)
	if err != nil {
		apierr.Internal(c, err)
		return
	}
	if result.Failed {
		apierr.Public(c, http.StatusOK, apierr.ErrBadRequest)
		return
	}

	c.JSON(http.StatusOK, spliceResultResponse{TxID: result.TxID})
}
