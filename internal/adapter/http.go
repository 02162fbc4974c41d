package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/dashkeys/internal/config"
	"github.com/MKhiriev/dashkeys/internal/logger"
)

// KeyPlacement says where a request carries the API key.
type KeyPlacement string

const (
	// PlaceBearer sends "Authorization: Bearer <key>".
	PlaceBearer KeyPlacement = "bearer"
	// PlaceHeader sends the key in the header named by Endpoint.Param.
	PlaceHeader KeyPlacement = "header"
	// PlaceQuery sends the key in the query parameter named by Endpoint.Param.
	PlaceQuery KeyPlacement = "query"
)

const (
	defaultHeaderName = "X-API-Key"
	defaultQueryParam = "apikey"
)

// Endpoint describes a third-party API and how it expects the key.
type Endpoint struct {
	Service   string
	BaseURL   string
	Placement KeyPlacement
	// Param is the header or query parameter name. Ignored for PlaceBearer.
	Param string
}

// Response is the raw result of a keyed request.
type Response struct {
	StatusCode int
	Body       []byte
}

type keyedHTTPClient struct {
	client *resty.Client
	lookup CredentialLookup
	logger *logger.Logger
}

// NewKeyedHTTPClient constructs a resty-backed [KeyedClient] that resolves
// keys through lookup. Timeout and retry count come from cfg.
func NewKeyedHTTPClient(cfg config.Adapter, lookup CredentialLookup, log *logger.Logger) KeyedClient {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json")

	return &keyedHTTPClient{client: client, lookup: lookup, logger: log}
}

func (h *keyedHTTPClient) Get(ctx context.Context, endpoint Endpoint, path string) (*Response, error) {
	baseURL, err := normalizeBaseURL(endpoint.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	source, err := h.lookup(endpoint.Service)
	if err != nil {
		return nil, fmt.Errorf("resolve credential for %q: %w", endpoint.Service, err)
	}
	key, ok, err := source.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve api key for %q: %w", endpoint.Service, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotSet, endpoint.Service)
	}

	req, err := h.keyedRequest(ctx, endpoint, key)
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		// transport errors echo the URL, which carries the key for PlaceQuery
		err = redactKey(err, key)
		h.logger.Err(err).Str("func", "keyedHTTPClient.Get").Str("service", endpoint.Service).Msg("request failed")
		return nil, fmt.Errorf("get request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

func (h *keyedHTTPClient) keyedRequest(ctx context.Context, endpoint Endpoint, key string) (*resty.Request, error) {
	req := h.client.R().SetContext(ctx)

	switch endpoint.Placement {
	case PlaceBearer, "":
		req.SetAuthToken(key)
	case PlaceHeader:
		name := endpoint.Param
		if name == "" {
			name = defaultHeaderName
		}
		req.SetHeader(name, key)
	case PlaceQuery:
		name := endpoint.Param
		if name == "" {
			name = defaultQueryParam
		}
		req.SetQueryParam(name, key)
	default:
		return nil, fmt.Errorf("%w: unknown key placement %q", ErrInvalidEndpoint, endpoint.Placement)
	}
	return req, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	msg := err.Error()
	redacted := strings.NewReplacer(key, "REDACTED", url.QueryEscape(key), "REDACTED").Replace(msg)
	if redacted == msg {
		return err
	}
	return &redactedError{msg: redacted, err: err}
}
