package httpx

import (
	"net/http"
	"time"
)

const (
	defaultExternalHTTPTimeout = 90 * time.Second
	userAgent                  = "feedbackbot/1.0"
)

// userAgentTransport stamps outbound model requests that carry no User-Agent.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", userAgent)
	}
	return t.base.RoundTrip(req)
}

func newExternalHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: userAgentTransport{base: http.DefaultTransport},
	}
}

var externalHTTPClient = newExternalHTTPClient(defaultExternalHTTPTimeout)

// ExternalHTTPClient is shared by every model provider client.
func ExternalHTTPClient() *http.Client {
	return externalHTTPClient
}

// ConfigureExternalHTTPClient sets the overall per-request timeout; values
// below one second keep the default. It returns the timeout in effect.
func ConfigureExternalHTTPClient(timeoutSeconds int) time.Duration {
	timeout := defaultExternalHTTPTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	externalHTTPClient.Timeout = timeout
	return timeout
}
