// Package upstream is a client for the remote dashboard API.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"sellout-dashboard/internal/config"
	"sellout-dashboard/internal/metrics"
	"sellout-dashboard/internal/models"
	"sellout-dashboard/internal/observability"
)

// Client is a resty-backed implementation of the dashboard API.
type Client struct {
	http    *resty.Client
	metrics *metrics.UpstreamMetrics
	logger  *slog.Logger
}

// NewClient builds a client using the provided configuration values.
func NewClient(cfg config.UpstreamConfig, m *metrics.UpstreamMetrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		http:    restyClient,
		metrics: m,
		logger:  logger,
	}
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (result *LoginResult, err error) {
	defer c.observe(ctx, "login", time.Now(), &err)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"username": username, "password": password}).
		Post("/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}

	env, perr := parseEnvelope(resp.Body())
	if resp.IsError() {
		message := "Login failed"
		if perr == nil && env.Error != "" {
			message = env.Error
		}
		return nil, &APIError{Status: resp.StatusCode(), Message: message}
	}
	if perr != nil {
		return nil, perr
	}
	if env.Error != "" {
		return nil, &APIError{Status: resp.StatusCode(), Message: env.Error}
	}

	result = new(LoginResult)
	if err := json.Unmarshal(env.Data, result); err != nil {
		return nil, fmt.Errorf("decode login data: %w", err)
	}
	if result.Token == "" {
		return nil, &APIError{Status: resp.StatusCode(), Message: "login response has no token"}
	}
	return result, nil
}

// Verify checks the token against /auth/verify.
func (c *Client) Verify(ctx context.Context, token string) (err error) {
	defer c.observe(ctx, "verify", time.Now(), &err)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/auth/verify")
	if err != nil {
		return fmt.Errorf("verify request: %w", err)
	}
	return statusError(resp)
}

func (c *Client) Training(ctx context.Context, token string, page, perPage int) ([]models.Training, error) {
	return list[models.Training](ctx, c, token, models.KindTraining, page, perPage)
}

func (c *Client) Coloris(ctx context.Context, token string, page, perPage int) ([]models.Coloris, error) {
	return list[models.Coloris](ctx, c, token, models.KindColoris, page, perPage)
}

func (c *Client) Sellout(ctx context.Context, token string, page, perPage int) ([]models.Sellout, error) {
	return list[models.Sellout](ctx, c, token, models.KindSellout, page, perPage)
}

func list[T any](ctx context.Context, c *Client, token string, kind models.DatasetKind, page, perPage int) (items []T, err error) {
	defer c.observe(ctx, "list."+kind.String(), time.Now(), &err)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"per_page": strconv.Itoa(perPage),
			"page":     strconv.Itoa(page),
		}).
		Get("/" + kind.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", kind, err)
	}
	if err := statusError(resp); err != nil {
		return nil, err
	}
	items, skipped, err := decodeList[T](resp.Body())
	if skipped > 0 {
		observability.LoggerFrom(ctx, c.logger).Warn("skipped undecodable records",
			"kind", kind,
			"skipped", skipped,
			"kept", len(items),
		)
	}
	return items, err
}

// Create stores one manually entered record.
func (c *Client) Create(ctx context.Context, token string, kind models.DatasetKind, payload any) (err error) {
	defer c.observe(ctx, "create."+kind.String(), time.Now(), &err)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/" + kind.String())
	if err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return statusError(resp)
}

// Import uploads a spreadsheet and returns the number of imported rows.
func (c *Client) Import(ctx context.Context, token string, kind models.DatasetKind, filename string, file io.Reader) (count int, err error) {
	defer c.observe(ctx, "import."+kind.String(), time.Now(), &err)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetFileReader("file", filename, file).
		Post("/" + kind.String() + "/import")
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", kind, err)
	}
	if err := statusError(resp); err != nil {
		return 0, err
	}

	env, err := parseEnvelope(resp.Body())
	if err != nil {
		return 0, err
	}
	if env.Error != "" {
		return 0, &APIError{Status: resp.StatusCode(), Message: env.Error}
	}
	if env.Count != nil {
		return *env.Count, nil
	}
	return 0, nil
}

// Download is a streamed export. Callers must close Body.
type Download struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
}

// Export streams the spreadsheet export for kind.
func (c *Client) Export(ctx context.Context, token string, kind models.DatasetKind) (dl *Download, err error) {
	defer c.observe(ctx, "export."+kind.String(), time.Now(), &err)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("token", token).
		SetDoNotParseResponse(true).
		Get("/" + kind.String() + "/export")
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", kind, err)
	}

	body := resp.RawBody()
	if resp.IsError() {
		defer body.Close()
		raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))
		return nil, errorFromBody(resp.StatusCode(), resp.Status(), raw)
	}

	disposition := resp.Header().Get("Content-Disposition")
	if disposition == "" {
		disposition = fmt.Sprintf(`attachment; filename="%s.xlsx"`, kind)
	}
	return &Download{
		Body:               body,
		ContentType:        resp.Header().Get("Content-Type"),
		ContentDisposition: disposition,
	}, nil
}

func (c *Client) observe(ctx context.Context, operation string, start time.Time, errp *error) {
	err := *errp
	c.metrics.Observe(operation, time.Since(start), err)

	_, span := observability.StartSpan(ctx, "upstream."+operation)
	span.StartTime = start
	if err != nil {
		span.SetError(err)
	}
	span.FinishAndLog(ctx, observability.LoggerFrom(ctx, c.logger))
}

func statusError(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	return errorFromBody(resp.StatusCode(), resp.Status(), resp.Body())
}

// errorFromBody maps an error response, preferring the envelope message
// over the HTTP status line. Only 401 means the token is gone; a 403 stays
// an *APIError so the session survives it.
func errorFromBody(status int, statusLine string, body []byte) error {
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, status)
	}
	message := strings.TrimSpace(statusLine)
	if env, err := parseEnvelope(body); err == nil && env.Error != "" {
		message = env.Error
	}
	return &APIError{Status: status, Message: message}
}
