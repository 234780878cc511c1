package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Client talks to the order backend's JSON API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header for the request.
func WithIdempotencyKey(key string) RequestOption {
	return func(opts *requestOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

// ListParams filters product and customer listings. Nil fields are omitted.
type ListParams struct {
	Search   *string
	Limit    *int
	IsActive *bool
}

// NewClient instantiates the backend client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: parsed, http: httpClient}, nil
}

// CreateOrder posts a new order.
func (c *Client) CreateOrder(ctx context.Context, body CreateOrderRequest, optFns ...RequestOption) (*Envelope[Order], error) {
	var opts requestOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	header := http.Header{}
	if opts.idempotencyKey != "" {
		header.Set("Idempotency-Key", opts.idempotencyKey)
	}
	var out Envelope[Order]
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, header, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProducts(ctx context.Context, params ListParams) ([]Product, error) {
	query, err := params.encode()
	if err != nil {
		return nil, err
	}
	var out Envelope[[]Product]
	if err := c.do(ctx, http.MethodGet, "/api/products", query, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var out Envelope[Product]
	if err := c.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) ListCustomers(ctx context.Context, params ListParams) ([]Customer, error) {
	query, err := params.encode()
	if err != nil {
		return nil, err
	}
	var out Envelope[[]Customer]
	if err := c.do(ctx, http.MethodGet, "/api/customers", query, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var out Envelope[Customer]
	if err := c.do(ctx, http.MethodGet, "/api/customers/"+strconv.FormatInt(id, 10), nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, header http.Header, body, out any) error {
	if c == nil || c.http == nil {
		return errors.New("backend client not configured")
	}
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call backend API: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
		var envelope Envelope[json.RawMessage]
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Body = envelope.Error
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

// encode renders the parameters as form-style query values.
func (p ListParams) encode() (url.Values, error) {
	values := url.Values{}
	add := func(name string, value any) error {
		frag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		parsed, err := url.ParseQuery(frag)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		for k, vs := range parsed {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
		return nil
	}
	if p.Search != nil {
		if err := add("search", *p.Search); err != nil {
			return nil, err
		}
	}
	if p.Limit != nil {
		if err := add("limit", *p.Limit); err != nil {
			return nil, err
		}
	}
	if p.IsActive != nil {
		if err := add("is_active", *p.IsActive); err != nil {
			return nil, err
		}
	}
	return values, nil
}
