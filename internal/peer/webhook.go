package peer

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"gitlab.com/arcanecrypto/noded/internal/lnproto"
)

// HttpPoster is the collaborator a WebhookDispatcher posts through;
// *http.Client satisfies it directly.
type HttpPoster interface {
	Do(req *http.Request) (*http.Response, error)
}

// MetadataLookup resolves the per-payment webhook URL to additionally
// notify for a PaymentReceived event, if any was registered when the
// payment's invoice was created.
type MetadataLookup interface {
	WebhookURLForPaymentHash(paymentHash string) (string, bool)
}

// WebhookDispatcher POSTs every event it's given as a subscriber to every
// configured global webhook URL, plus — for PaymentReceived only — the
// per-payment URL registered in metadata. Every POST carries
// X-Phoenix-Signature: hex(HMAC-SHA256(secret, body)). Failures are
// logged and never retried. Each POST is made synchronously inside Send,
// so a slow endpoint delays the bus's delivery to the subscribers after
// this one until the poster returns.
type WebhookDispatcher struct {
	globalURLs []string
	secret     []byte
	poster     HttpPoster
	metadata   MetadataLookup
}

// NewWebhookDispatcher constructs a dispatcher that POSTs to globalURLs
// plus any per-payment URL resolved through metadata.
func NewWebhookDispatcher(globalURLs []string, secret []byte, poster HttpPoster, metadata MetadataLookup) *WebhookDispatcher {
	return &WebhookDispatcher{globalURLs: globalURLs, secret: secret, poster: poster, metadata: metadata}
}

// Send implements Subscriber.
func (w *WebhookDispatcher) Send(event lnproto.NodeEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("could not marshal webhook event")
		return
	}
	signature := w.sign(body)

	urls := append([]string{}, w.globalURLs...)
	if pr, ok := event.(lnproto.PaymentReceived); ok && w.metadata != nil {
		if url, found := w.metadata.WebhookURLForPaymentHash(pr.PaymentHash); found {
			urls = append(urls, url)
		}
	}

	for _, url := range urls {
		w.post(url, body, signature)
	}
}

func (w *WebhookDispatcher) sign(body []byte) string {
	mac := hmac.New(sha256.New, w.secret)
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (w *WebhookDispatcher) post(url string, body []byte, signature string) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.WithError(err).WithField("url", url).Error("could not build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Phoenix-Signature", signature)

	resp, err := w.poster.Do(req)
	if err != nil {
		log.WithError(err).WithField("url", url).Warn("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	log.WithField("url", url).WithField("status", resp.StatusCode).Debug("webhook delivered")
}
