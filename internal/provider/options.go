package provider

import (
	"net/http"
	"time"
)

const (
	// DefaultAPIURL is the IBM Quantum runtime API endpoint.
	DefaultAPIURL = "https://api.quantum-computing.ibm.com/runtime"
	// DefaultRetries is the number of attempts every request gets. One attempt means no retry.
	DefaultRetries = 1
	// DefaultUserAgent identifies the client in the User-Agent header.
	DefaultUserAgent = "sabre-bench"
)

type dialOptions struct {
	token     string
	apiURL    string
	instance  string
	userAgent string
	retries   int
	// zero means no timeout
	timeout    time.Duration
	retryDelay time.Duration
	httpClient *http.Client
}

// DialOption configures a Client.
type DialOption func(*dialOptions)

// WithToken sets the bearer token used for every request.
func WithToken(token string) DialOption {
	return func(o *dialOptions) { o.token = token }
}

// WithAPIURL points the client at a different API root.
func WithAPIURL(url string) DialOption {
	return func(o *dialOptions) { o.apiURL = url }
}

// WithInstance sets the service instance (CRN or hub/group/project) sent with each request.
func WithInstance(instance string) DialOption {
	return func(o *dialOptions) { o.instance = instance }
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) DialOption {
	return func(o *dialOptions) { o.timeout = timeout }
}

// WithRetries sets how many attempts a request gets on transport errors and 5xx responses.
func WithRetries(retries int, delay time.Duration) DialOption {
	return func(o *dialOptions) {
		o.retries = retries
		o.retryDelay = delay
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) DialOption {
	return func(o *dialOptions) { o.userAgent = ua }
}

// WithHTTPClient replaces the underlying HTTP client. The timeout option is ignored when set.
func WithHTTPClient(c *http.Client) DialOption {
	return func(o *dialOptions) { o.httpClient = c }
}
