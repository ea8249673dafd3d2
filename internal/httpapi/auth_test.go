package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthTiers(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	newReadRequest := func(password string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		if password != "" {
			req.SetBasicAuth("", password)
		}
		return req
	}
	newFullAccessRequest := func(password string) *http.Request {
		form := url.Values{"channelId": {"chan1"}, "feerateSatPerVbyte": {"10"}}
		req := httptest.NewRequest(http.MethodPost, "/bumpfee", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if password != "" {
			req.SetBasicAuth("", password)
		}
		return req
	}

	cases := []struct {
		name       string
		request    *http.Request
		wantStatus int
	}{
		{"read route with primary password", newReadRequest(testPrimaryPassword), http.StatusOK},
		{"read route with read-only password", newReadRequest(testReadOnlyPassword), http.StatusOK},
		{"read route with no credentials", newReadRequest(""), http.StatusUnauthorized},
		{"read route with wrong password", newReadRequest("wrong"), http.StatusUnauthorized},
		{"full-access route with read-only password is rejected", newFullAccessRequest(testReadOnlyPassword), http.StatusUnauthorized},
		{"full-access route with primary password is accepted", newFullAccessRequest(testPrimaryPassword), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.Router.ServeHTTP(w, tc.request)
			require.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestAuthAcceptsWebsocketSubprotocolHeader(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	req := httptest.NewRequest("GET", "/websocket", nil)
	req.Header.Set("Sec-WebSocket-Protocol", testReadOnlyPassword)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	// Authentication passed (no 401); whether the plain ResponseRecorder
	// can complete a real websocket handshake is irrelevant here.
	require.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMissingSubprotocolHeader(t *testing.T) {
	server := newTestServer(t, &fakeEngine{}, &fakeResolver{})

	req := httptest.NewRequest("GET", "/websocket", nil)
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
