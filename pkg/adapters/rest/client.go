package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/roster/internal/logging"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	// DefaultPath is the collection path below the base URL.
	DefaultPath = "/data"
	// DefaultRetries is the number of automatic retries of a list request.
	DefaultRetries = 3
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries a per-attempt correlation id.
	RequestIDHeader = "X-Request-Id"

	maxErrorBody = 512
)

// retryStatuses are the response codes a list request is retried on.
var retryStatuses = map[int]bool{
	http.StatusRequestTimeout:      true, // 408
	http.StatusConflict:            true, // 409
	http.StatusTooEarly:            true, // 425
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// Client implements ports.UserResource over HTTP and JSON.
//
//	GET    {base}{path}       list
//	POST   {base}{path}       create  {name, email}
//	PATCH  {base}{path}/{id}  update  {name, email}
//	DELETE {base}{path}/{id}  delete
type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. c is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithPath sets the collection path (default "/data").
func WithPath(path string) Option {
	return func(cl *Client) {
		if path != "" {
			cl.path = "/" + strings.Trim(path, "/")
		}
	}
}

// WithRetries sets how many times a failed list request is retried.
func WithRetries(n int) Option {
	return func(cl *Client) {
		if n >= 0 {
			cl.retries = n
		}
	}
}

// WithRetryDelay sets the pause between list attempts (default none).
func WithRetryDelay(d time.Duration) Option {
	return func(cl *Client) {
		if d >= 0 {
			cl.retryDelay = d
		}
	}
}

// WithTimeout bounds each attempt, whatever HTTP client is used.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient creates a client for the collection at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       DefaultPath,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retries:    DefaultRetries,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// writeBody is the payload of create and update requests.
type writeBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// List fetches the collection, retrying on network errors and transient
// statuses. Other statuses fail at once.
func (c *Client) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	attempt := 0

	operation := func() error {
		attempt++
		status, body, err := c.do(ctx, http.MethodGet, c.collectionURL(), nil)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(&domain.RequestError{Op: domain.OpList, Err: ctx.Err()})
			}
			return &domain.RequestError{Op: domain.OpList, Err: err}
		}
		if !isSuccess(status) {
			reqErr := &domain.RequestError{Op: domain.OpList, StatusCode: status, Err: statusError(status, body)}
			if retryStatuses[status] {
				return reqErr
			}
			return backoff.Permanent(reqErr)
		}
		if err := json.Unmarshal(body, &users); err != nil {
			return backoff.Permanent(&domain.RequestError{Op: domain.OpList, StatusCode: status, Err: fmt.Errorf("decode users: %w", err)})
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.retries)),
		ctx,
	)
	notify := func(err error, next time.Duration) {
		c.logger.WarnContext(ctx, "list request failed, retrying", "attempt", attempt, "next_in", next, "err", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		var reqErr *domain.RequestError
		if errors.As(err, &reqErr) {
			return nil, reqErr
		}
		return nil, &domain.RequestError{Op: domain.OpList, Err: err}
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Create posts a new record. The returned user is nil when the response
// carries no usable record with an id.
func (c *Client) Create(ctx context.Context, data domain.UserFormData) (*domain.User, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.collectionURL(), writeBody(data))
	if err != nil {
		return nil, &domain.RequestError{Op: domain.OpCreate, Err: err}
	}
	if !isSuccess(status) {
		return nil, &domain.RequestError{Op: domain.OpCreate, StatusCode: status, Err: statusError(status, body)}
	}

	var created domain.User
	if err := json.Unmarshal(body, &created); err != nil || created.ID == 0 {
		c.logger.DebugContext(ctx, "create response carries no record", "status", status)
		return nil, nil
	}
	return &created, nil
}

// Update patches name and email of the record with the given id.
func (c *Client) Update(ctx context.Context, id int, data domain.UserFormData) error {
	status, body, err := c.do(ctx, http.MethodPatch, c.itemURL(id), writeBody(data))
	if err != nil {
		return &domain.RequestError{Op: domain.OpUpdate, UserID: id, Err: err}
	}
	if !isSuccess(status) {
		return &domain.RequestError{Op: domain.OpUpdate, UserID: id, StatusCode: status, Err: statusError(status, body)}
	}
	return nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id int) error {
	status, body, err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil)
	if err != nil {
		return &domain.RequestError{Op: domain.OpDelete, UserID: id, Err: err}
	}
	if !isSuccess(status) {
		return &domain.RequestError{Op: domain.OpDelete, UserID: id, StatusCode: status, Err: statusError(status, body)}
	}
	return nil
}

func (c *Client) collectionURL() string {
	return c.baseURL + c.path
}

func (c *Client) itemURL(id int) string {
	return c.collectionURL() + "/" + strconv.Itoa(id)
}

// do performs one request and reads the whole response body.
func (c *Client) do(ctx context.Context, method, url string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed", "method", method, "url", url, "request_id", requestID, "err", err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.DebugContext(ctx, "request done",
		"method", method,
		"url", url,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return errors.New(msg)
}
