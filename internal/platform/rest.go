package platform

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-resty/resty/v2"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/retry"
)

// REST executes requests against one API base URL under a resilience policy.
// Both platform clients are thin wrappers around it; they differ only in
// auth scheme and defaults.
type REST struct {
	name    string
	http    *resty.Client
	breaker *retry.Breaker[*resty.Response]
	log     logr.Logger
}

type restConfig struct {
	headers    map[string]string
	username   string
	password   string
	basicAuth  bool
	insecure   bool
	httpClient *http.Client
}

// RESTOption configures a REST executor.
type RESTOption func(*restConfig)

// WithHeader adds a static header to every request.
func WithHeader(key, value string) RESTOption {
	return func(rc *restConfig) {
		rc.headers[key] = value
	}
}

// WithBasicAuth attaches HTTP basic credentials to every request.
func WithBasicAuth(username, password string) RESTOption {
	return func(rc *restConfig) {
		rc.username = username
		rc.password = password
		rc.basicAuth = true
	}
}

// WithInsecureTLS disables peer certificate verification. Gated on explicit
// profile configuration; self-signed internal clusters are the use case.
func WithInsecureTLS() RESTOption {
	return func(rc *restConfig) {
		rc.insecure = true
	}
}

// WithHTTPClient substitutes the underlying HTTP client (useful for testing
// against httptest TLS servers).
func WithHTTPClient(hc *http.Client) RESTOption {
	return func(rc *restConfig) {
		rc.httpClient = hc
	}
}

// NewREST builds an executor for baseURL under the given policy.
func NewREST(name, baseURL string, policy retry.Policy, log logr.Logger, opts ...RESTOption) *REST {
	rc := &restConfig{headers: make(map[string]string)}
	for _, opt := range opts {
		opt(rc)
	}

	var client *resty.Client
	if rc.httpClient != nil {
		client = resty.NewWithClient(rc.httpClient)
	} else {
		transport := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: policy.ConnectTimeout,
			}).DialContext,
			TLSHandshakeTimeout: policy.ConnectTimeout,
		}
		client = resty.New().SetTransport(transport)
	}

	client.
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(policy.Timeout).
		SetDisableWarn(true).
		SetLogger(restyLogger{log: log}).
		SetRetryCount(policy.MaxAttempts - 1).
		SetRetryWaitTime(policy.InitialBackoff).
		SetRetryMaxWaitTime(policy.MaxBackoff).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil {
				return false
			}
			if err != nil {
				return policy.ShouldRetry(r.Request.Method, 0, err)
			}
			return policy.ShouldRetry(r.Request.Method, r.StatusCode(), nil)
		}).
		SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
			if r == nil {
				return policy.BackoffFor(1), nil
			}
			if d, ok := retry.RetryAfter(r.RawResponse); ok {
				return d, nil
			}
			return policy.BackoffFor(r.Request.Attempt), nil
		})

	for k, v := range rc.headers {
		client.SetHeader(k, v)
	}
	if rc.basicAuth {
		client.SetBasicAuth(rc.username, rc.password)
	}
	if rc.insecure && rc.httpClient == nil {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) // #nosec G402 -- explicit profile opt-in
	}

	return &REST{
		name:    name,
		http:    client,
		breaker: retry.NewBreaker[*resty.Response](name, policy.Breaker),
		log:     log,
	}
}

// BaseURL returns the configured API base.
func (r *REST) BaseURL() string { return r.http.BaseURL }

// Do executes one JSON request and returns the raw response body. HTTP >= 400
// becomes an APIError carrying the verbatim body; a failure before any
// response arrived becomes a TransportError. An empty success body (204, most
// DELETEs) returns nil.
func (r *REST) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	resp, err := r.execute(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	raw := resp.Body()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// DoBytes executes a GET and returns the body verbatim, for binary payloads.
func (r *REST) DoBytes(ctx context.Context, path string) ([]byte, error) {
	resp, err := r.execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// DoMultipart executes a POST carrying one file as a multipart form part.
// Module uploads are the consumer; the endpoint rejects JSON bodies.
func (r *REST) DoMultipart(ctx context.Context, path, field, filename string, data []byte) (json.RawMessage, error) {
	r.logRequest(http.MethodPost, path)
	start := time.Now()

	resp, err := r.breaker.Do(func() (*resty.Response, error) {
		req := r.http.R().SetContext(ctx).SetFileReader(field, filename, bytes.NewReader(data))
		resp, err := req.Post(path)
		if err != nil {
			return resp, errdefs.Transport(fmt.Errorf("%s POST %s: %w", r.name, path, err))
		}
		if resp.IsError() {
			return resp, errdefs.API(resp.StatusCode(), string(resp.Body()))
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	r.log.V(2).Info("response",
		"client", r.name,
		"method", http.MethodPost,
		"path", path,
		"status", resp.StatusCode(),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	raw := resp.Body()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

func (r *REST) execute(ctx context.Context, method, path string, body any) (*resty.Response, error) {
	r.logRequest(method, path)
	start := time.Now()

	resp, err := r.breaker.Do(func() (*resty.Response, error) {
		req := r.http.R().SetContext(ctx)
		if body != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(body)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			return resp, errdefs.Transport(fmt.Errorf("%s %s %s: %w", r.name, method, path, err))
		}
		if resp.IsError() {
			return resp, errdefs.API(resp.StatusCode(), string(resp.Body()))
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	r.log.V(2).Info("response",
		"client", r.name,
		"method", method,
		"path", path,
		"status", resp.StatusCode(),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return resp, nil
}

// logRequest emits the debug request line with credentials masked.
func (r *REST) logRequest(method, path string) {
	if !r.log.V(2).Enabled() {
		return
	}
	kv := []any{"client", r.name, "method", method, "url", r.http.BaseURL + path}
	for name := range r.http.Header {
		if sensitiveHeader(name) {
			kv = append(kv, strings.ToLower(name), "****")
		}
	}
	if r.http.UserInfo != nil {
		kv = append(kv, "authorization", "Basic ****")
	}
	r.log.V(2).Info("request", kv...)
}

func sensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "x-api-key", "x-api-secret-key", "authorization":
		return true
	}
	return false
}

// restyLogger bridges resty's internal logging onto logr so transport noise
// follows the CLI's verbosity flags.
type restyLogger struct {
	log logr.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.V(1).Info("transport: " + fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.V(1).Info("transport: " + fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.V(2).Info("transport: " + fmt.Sprintf(format, v...))
}
