package eform

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

	"items-planning/core/apperr"
	"items-planning/core/logger"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to the remote case and folder service over HTTP.
//
// Transport errors, 429 and 5xx responses are retried with exponential backoff.
// 404 responses are reported as absent results, never as errors, except for
// ReadTemplate. Every other failure is returned as an apperr.KindRemote error.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        Config
	logger     *zap.Logger
}

// New creates a remote service client.
func New(cfg Config, log *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.timeout()},
		limiter:    rate.NewLimiter(limit, burst),
		cfg:        cfg,
		logger:     logger.OrNop(log),
	}
}

// ReadTemplate fetches a template definition.
func (c *Client) ReadTemplate(ctx context.Context, templateID int) (*Template, error) {
	var tpl Template
	status, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/templates/%d", templateID), nil, &tpl)
	if err != nil {
		return nil, apperr.Remote("read template", err).WithOp("eform.read_template")
	}
	if status == http.StatusNotFound {
		return nil, apperr.NotFound(fmt.Sprintf("template %d not found", templateID)).WithOp("eform.read_template")
	}
	return &tpl, nil
}

// CreateCase submits payload to a site and returns the external handle of the new
// case, or nil when the service accepted the request without assigning one.
func (c *Client) CreateCase(ctx context.Context, payload *CasePayload, siteID int) (*int, error) {
	var res createCaseResponse
	body := createCaseRequest{CasePayload: payload, SiteID: siteID}
	status, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/sites/%d/cases", siteID), body, &res)
	if err != nil {
		return nil, apperr.Remote(fmt.Sprintf("create case at site %d", siteID), err).WithOp("eform.create_case")
	}
	if status == http.StatusNotFound || status == http.StatusNoContent {
		return nil, nil
	}
	return res.ExternalID, nil
}

// LookupByExternalID resolves a case by the handle returned from CreateCase.
// A nil record means the remote service does not know the case.
func (c *Client) LookupByExternalID(ctx context.Context, externalID int) (*CaseRecord, error) {
	return c.lookup(ctx, fmt.Sprintf("/api/cases/by-uid/%d", externalID), "eform.lookup_external")
}

// LookupByCaseID resolves a case by its canonical internal id.
// A nil record means the remote service does not know the case.
func (c *Client) LookupByCaseID(ctx context.Context, caseID int) (*CaseRecord, error) {
	return c.lookup(ctx, fmt.Sprintf("/api/cases/%d", caseID), "eform.lookup_case")
}

func (c *Client) lookup(ctx context.Context, path, op string) (*CaseRecord, error) {
	var rec CaseRecord
	status, err := c.do(ctx, http.MethodGet, path, nil, &rec)
	if err != nil {
		return nil, apperr.Remote("lookup case", err).WithOp(op)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &rec, nil
}

// DeleteCase removes a case instance by external handle. A case the service does
// not know is reported as apperr.KindNotFound.
func (c *Client) DeleteCase(ctx context.Context, externalID int) error {
	status, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cases/by-uid/%d", externalID), nil, nil)
	if err != nil {
		return apperr.Remote(fmt.Sprintf("delete case %d", externalID), err).WithOp("eform.delete_case")
	}
	if status == http.StatusNotFound {
		return apperr.NotFound(fmt.Sprintf("case %d", externalID)).WithOp("eform.delete_case")
	}
	return nil
}

// ListFolders returns every folder, optionally including inactive ones.
func (c *Client) ListFolders(ctx context.Context, includeInactive bool) ([]Folder, error) {
	query := url.Values{}
	query.Set("include_inactive", strconv.FormatBool(includeInactive))

	var folders []Folder
	status, err := c.do(ctx, http.MethodGet, "/api/folders?"+query.Encode(), nil, &folders)
	if err != nil {
		return nil, apperr.Remote("list folders", err).WithOp("eform.list_folders")
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return folders, nil
}

// CreateFolder creates a folder. The service does not return the new id;
// callers list folders again to learn it.
func (c *Client) CreateFolder(ctx context.Context, name, description string, parentID *int) error {
	body := createFolderRequest{Name: name, Description: description, ParentID: parentID}
	if _, err := c.do(ctx, http.MethodPost, "/api/folders", body, nil); err != nil {
		return apperr.Remote(fmt.Sprintf("create folder %q", name), err).WithOp("eform.create_folder")
	}
	return nil
}

// Ping checks if the API is available. It is not retried.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/ping", nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping failed: status %d", resp.StatusCode)
	}
	return nil
}

var errMalformedResponse = errors.New("malformed response")

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("unexpected status %d", e.code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

// do sends one logical request. It returns the final status code; 404 is returned
// without error and without decoding so callers can map it to an absent result.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(uint64(max(c.cfg.MaxRetries, 0)), retry.NewExponential(c.cfg.retryBase()))

	var status int
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		code, err := c.send(ctx, method, path, payload, out)
		status = code
		if err == nil {
			return nil
		}

		var se *statusError
		if errors.As(err, &se) && se.code != http.StatusTooManyRequests && se.code < 500 {
			return err
		}
		if errors.Is(err, errMalformedResponse) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		c.logger.Warn("Remote request failed, retrying",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return retry.RetryableError(err)
	})
	if err != nil {
		c.logger.Error("Remote request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return status, err
	}
	return status, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, nil
	case resp.StatusCode == http.StatusNoContent:
		return resp.StatusCode, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// decode below
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
