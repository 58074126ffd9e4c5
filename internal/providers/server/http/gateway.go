package http

import (
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/crmarques/zpasync/config"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMediaType   = "application/json"
	defaultPageSize    = 500
	mgmtConfigPrefix   = "/mgmtconfig/v1/admin/customers"
)

// Gateway is the authenticated transport to the ZPA management API. It is
// shared by every per-kind endpoint of one invocation.
type Gateway struct {
	baseURL     *url.URL
	customerID  string
	auth        config.Auth
	client      *http.Client
	limiter     *rate.Limiter
	listFilters map[string]string
	pageSize    int
	tlsDebug    tlsDebugInfo

	oauthMu          sync.Mutex
	oauthAccessToken string
	oauthExpiresAt   time.Time

	policySetMu  sync.Mutex
	policySetIDs map[string]string
}

type GatewayOption func(*Gateway)

// WithHTTPClient replaces the transport client, keeping the configured timeout
// when the replacement has none.
func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		if g == nil || client == nil {
			return
		}
		if client.Timeout == 0 {
			client.Timeout = g.client.Timeout
		}
		g.client = client
	}
}

func WithPageSize(size int) GatewayOption {
	return func(g *Gateway) {
		if g == nil || size <= 0 {
			return
		}
		g.pageSize = size
	}
}

func NewGateway(cfg config.API, opts ...GatewayOption) (*Gateway, error) {
	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	customerID := strings.TrimSpace(cfg.CustomerID)
	if customerID == "" {
		return nil, validationError("api.customer-id is required", nil)
	}

	auth, err := buildAuthConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}

	tlsConfig, err := buildTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	gateway := &Gateway{
		baseURL:    baseURL,
		customerID: customerID,
		auth:       auth,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		listFilters:  cloneStringMap(cfg.ListFilters),
		pageSize:     defaultPageSize,
		tlsDebug:     newTLSDebugInfo(cfg.TLS),
		policySetIDs: map[string]string{},
	}
	if cfg.RateLimit != nil && cfg.RateLimit.RequestsPerSecond > 0 {
		burst := max(cfg.RateLimit.Burst, 1)
		gateway.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), burst)
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(gateway)
	}
	return gateway, nil
}

// CustomerID is the tenant every request is scoped to.
func (g *Gateway) CustomerID() string {
	if g == nil {
		return ""
	}
	return g.customerID
}

// customerPath joins relative under the tenant's management API root.
func (g *Gateway) customerPath(relative string) string {
	return path.Join(mgmtConfigPrefix, g.customerID, strings.TrimPrefix(relative, "/"))
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, validationError("api.base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("api.base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("api.base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("api.base-url host is required", nil)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	return parsed, nil
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}

	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
