// Package client talks to the form service HTTP API. It implements the
// submission contracts so a form view can run against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/submission"
)

const (
	apiPrefix = "/api/v1"

	// responsesPageSize matches the server's maximum page size.
	responsesPageSize = 500
)

var (
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("access denied")
)

var (
	_ submission.FormFetcher      = (*Client)(nil)
	_ submission.Submitter        = (*Client)(nil)
	_ submission.ResponsesFetcher = (*Client)(nil)
)

// APIError is a non-2xx answer the client has no sentinel for.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client.Timeout = timeout }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New constructs a client for the given base URL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetForm(ctx context.Context, id string) (*models.Form, error) {
	var form models.Form
	if err := c.do(ctx, http.MethodGet, formPath(id), nil, &form); err != nil {
		return nil, fmt.Errorf("get form %s: %w", id, err)
	}
	return &form, nil
}

func (c *Client) SubmitAnswers(ctx context.Context, req submission.SubmitRequest) (*submission.SubmitResult, error) {
	payload := struct {
		Answers []formschema.AnswerInput `json:"answers"`
	}{Answers: req.Answers}

	var result submission.SubmitResult
	if err := c.do(ctx, http.MethodPost, formPath(req.FormID)+"/responses", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResponses returns the newest page of responses. Only the form owner
// may call it.
func (c *Client) ListResponses(ctx context.Context, formID string) ([]models.FormResponse, error) {
	var list struct {
		Responses []models.FormResponse `json:"responses"`
	}
	path := fmt.Sprintf("%s/responses?limit=%d", formPath(formID), responsesPageSize)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, fmt.Errorf("list responses of %s: %w", formID, err)
	}
	return list.Responses, nil
}

func formPath(id string) string {
	return apiPrefix + "/forms/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeHTTPError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

type errorResponse struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
	Code    string          `json:"code"`
}

func decodeHTTPError(status int, body []byte) error {
	var resp errorResponse
	_ = json.Unmarshal(body, &resp)

	switch status {
	case http.StatusNotFound:
		return submission.ErrFormNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusBadRequest:
		var details apperrors.ValidationErrors
		if len(resp.Details) > 0 && json.Unmarshal(resp.Details, &details) == nil && len(details) > 0 {
			return details
		}
	}
	return &APIError{Status: status, Message: resp.Message, Code: resp.Code}
}
