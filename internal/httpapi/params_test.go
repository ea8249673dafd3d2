package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateInvoiceRejectsBothDescriptionFields(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	form := url.Values{"description": {"a"}, "descriptionHash": {"b"}}
	req := httptest.NewRequest(http.MethodPost, "/createinvoice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateInvoiceRejectsNegativeAmount(t *testing.T) {
	server := newTestServer(t, &fakeEngine{createdPaymentHash: newHash(), createdSerialized: "lnbc1..."}, &fakeResolver{})

	form := url.Values{"description": {"coffee"}, "amountSat": {"-5"}}
	req := httptest.NewRequest(http.MethodPost, "/createinvoice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ERR_INVALID_PARAMETER")
}

func TestCreateInvoiceRejectsWhenNeitherDescriptionFieldGiven(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	req := httptest.NewRequest(http.MethodPost, "/createinvoice", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ERR_BAD_REQUEST")
}

func TestPayInvoiceRejectsMissingInvoiceParameter(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	req := httptest.NewRequest(http.MethodPost, "/payinvoice", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("", testPrimaryPassword)

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ERR_MISSING_PARAMETER")
}
