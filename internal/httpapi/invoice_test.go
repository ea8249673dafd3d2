package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateInvoiceRoundTrip(t *testing.T) {
	hash := newHash()
	engine := &fakeEngine{
		createdPaymentHash: hash,
		createdPreimage:    "preimage-" + hash,
		createdSerialized:  "lnbc1...",
	}
	server := newTestServer(t, engine, &fakeResolver{})

	form := url.Values{"description": {"coffee"}, "amountSat": {"1000"}, "externalId": {"order-1"}}
	req := httptest.NewRequest(http.MethodPost, "/createinvoice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		AmountSat   *int64 `json:"amountSat"`
		PaymentHash string `json:"paymentHash"`
		Serialized  string `json:"serialized"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, hash, body.PaymentHash)
	require.Equal(t, "lnbc1...", body.Serialized)
	require.NotNil(t, body.AmountSat)
	require.Equal(t, int64(1000), *body.AmountSat)

	stored, err := testStore.Get(hash)
	require.NoError(t, err)
	require.Equal(t, "preimage-"+hash, stored.Preimage)

	webhookURL, found := testStore.WebhookURLForPaymentHash(hash)
	require.False(t, found)
	require.Empty(t, webhookURL)
}

func TestDecodeInvoiceRejectsMalformedInvoice(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	form := url.Values{"invoice": {"not-a-real-invoice"}}
	req := httptest.NewRequest(http.MethodPost, "/decodeinvoice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testReadOnlyPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ERR_INVALID_PARAMETER")
}
