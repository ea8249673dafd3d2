package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/arcanecrypto/noded/internal/lnproto"
)

func TestPayInvoiceSucceeds(t *testing.T) {
	engine := &fakeEngine{
		payResult: lnproto.PayInvoiceResult{Preimage: "abc123", FeesPaid: 7},
	}
	server := newTestServer(t, engine, &fakeResolver{})

	form := url.Values{"invoice": {"lnbc1..."}}
	req := httptest.NewRequest(http.MethodPost, "/payinvoice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Preimage string `json:"preimage"`
		FeesPaid int64  `json:"feesSat"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "abc123", body.Preimage)
	require.Equal(t, int64(7), body.FeesPaid)
}

func TestPayInvoiceReportsFailure(t *testing.T) {
	engine := &fakeEngine{
		payResult: lnproto.PayInvoiceResult{Failed: true, Reason: "no route"},
	}
	server := newTestServer(t, engine, &fakeResolver{})

	form := url.Values{"invoice": {"lnbc1..."}}
	req := httptest.NewRequest(http.MethodPost, "/payinvoice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "no route", body.Reason)
}

func TestLnurlPayRejectsWrongTag(t *testing.T) {
	resolver := &fakeResolver{descriptor: lnproto.LnurlDescriptor{Tag: lnproto.LnurlTagWithdraw}}
	server := newTestServer(t, &fakeEngine{}, resolver)

	form := url.Values{"lnurl": {"lnurl1..."}, "amountSat": {"1000"}}
	req := httptest.NewRequest(http.MethodPost, "/lnurlpay", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLnurlPayRejectsAmountOutsideRange(t *testing.T) {
	resolver := &fakeResolver{descriptor: lnproto.LnurlDescriptor{
		Tag:         lnproto.LnurlTagPay,
		MinSendable: 10_000,
		MaxSendable: 20_000,
	}}
	server := newTestServer(t, &fakeEngine{}, resolver)

	form := url.Values{"lnurl": {"lnurl1..."}, "amountSat": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/lnurlpay", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ERR_INVALID_PARAMETER")
}

func TestLnurlAuthDerivesDeterministicSeed(t *testing.T) {
	resolver := &fakeResolver{descriptor: lnproto.LnurlDescriptor{Tag: lnproto.LnurlTagAuth}}
	server := newTestServer(t, &fakeEngine{}, resolver)

	form := url.Values{"lnurl": {"lnurl1..."}}
	req := httptest.NewRequest(http.MethodPost, "/lnurlauth", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resolver.authSeed, 32)

	// Deriving again from the same password must produce the same seed;
	// the linking key must stay stable across requests/restarts.
	resolver2 := &fakeResolver{descriptor: lnproto.LnurlDescriptor{Tag: lnproto.LnurlTagAuth}}
	server2 := newTestServer(t, &fakeEngine{}, resolver2)
	req2 := httptest.NewRequest(http.MethodPost, "/lnurlauth", strings.NewReader(form.Encode()))
	req2.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req2.SetBasicAuth("", testPrimaryPassword)
	w2 := httptest.NewRecorder()
	server2.Router.ServeHTTP(w2, req2)

	require.Equal(t, resolver.authSeed, resolver2.authSeed)
}
