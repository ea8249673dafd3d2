package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/arcanecrypto/noded/internal/liquidity"
)

func TestGetLiquidityPolicyReportsDefaults(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/getliquiditypolicy", nil)
	req.SetBasicAuth("", testReadOnlyPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		MaxAbsoluteFeeSat      int64 `json:"maxAbsoluteFeeSat"`
		MaxRelativeFeeBasisPts int64 `json:"maxRelativeFeeBasisPoints"`
		MaxAllowedCreditSat    int64 `json:"maxAllowedCreditSat"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	def := liquidity.Default()
	require.Equal(t, def.MaxAbsoluteFeeSat, body.MaxAbsoluteFeeSat)
	require.Equal(t, def.MaxRelativeFeeBasisPts, body.MaxRelativeFeeBasisPts)
	require.Equal(t, def.MaxAllowedCreditSat, body.MaxAllowedCreditSat)
}

func TestSetLiquidityPolicyAppliesToEngineAndCell(t *testing.T) {
	engine := &fakeEngine{}
	server := newTestServer(t, engine, &fakeResolver{})

	form := url.Values{
		"maxAbsoluteFeeSat":         {"50000"},
		"maxRelativeFeeBasisPoints": {"20"},
		"maxAllowedCreditSat":       {"80000"},
	}
	req := httptest.NewRequest(http.MethodPost, "/setliquiditypolicy", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, engine.setLiquidityCalls)

	getReq := httptest.NewRequest(http.MethodGet, "/getliquiditypolicy", nil)
	getReq.SetBasicAuth("", testReadOnlyPassword)
	getW := httptest.NewRecorder()
	server.Router.ServeHTTP(getW, getReq)

	var body struct {
		MaxAbsoluteFeeSat int64 `json:"maxAbsoluteFeeSat"`
	}
	require.NoError(t, json.Unmarshal(getW.Body.Bytes(), &body))
	require.Equal(t, int64(50000), body.MaxAbsoluteFeeSat)
}

func TestSetLiquidityPolicyRejectsOutOfBoundsValue(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	form := url.Values{
		"maxAbsoluteFeeSat":         {strconv.Itoa(liquidity.MaxAbsoluteFeeSatBound + 1)},
		"maxRelativeFeeBasisPoints": {"20"},
		"maxAllowedCreditSat":       {"80000"},
	}
	req := httptest.NewRequest(http.MethodPost, "/setliquiditypolicy", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ERR_INVALID_PARAMETER")
}
