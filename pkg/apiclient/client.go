// Package apiclient talks to the candidate profile API over HTTP. It
// satisfies the profile page's ProfileAPI and ImageUploader so the same
// forms run against a remote server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"jobby-backend/internal/domain"
	"jobby-backend/internal/form"
	"jobby-backend/pkg/validation"
)

var (
	_ form.ProfileAPI    = (*Client)(nil)
	_ form.ImageUploader = (*Client)(nil)
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/v1.
func New(baseURL, token string) *Client {
	return NewWithHTTPClient(baseURL, token, &http.Client{Timeout: 30 * time.Second})
}

func NewWithHTTPClient(baseURL, token string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
	// Fields is set when the server rejected individual fields.
	Fields validation.FieldErrors
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, e.Fields.Error())
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap exposes field errors to errors.As.
func (e *Error) Unwrap() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e.Fields
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (c *Client) CurrentProfile(ctx context.Context) (*domain.CandidateProfile, error) {
	var profile *domain.CandidateProfile
	if err := c.doJSON(ctx, http.MethodGet, "/candidates/me/profile", nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req *domain.ProfileUpdate) error {
	return c.doJSON(ctx, http.MethodPut, "/candidates/me/profile", req, nil)
}

func (c *Client) UpdateProfileImage(ctx context.Context, req *domain.ImageUpdate) error {
	return c.doJSON(ctx, http.MethodPut, "/candidates/me/profile/image", req, nil)
}

func (c *Client) UpdateContact(ctx context.Context, req *domain.ContactUpdate) error {
	return c.doJSON(ctx, http.MethodPut, "/candidates/me/contact", req, nil)
}

// Upload sends r as the multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*domain.ImageUploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/uploads/images", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result domain.ImageUploadResult
	if err := c.send(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var bodyReader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, bodyReader)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// send executes req and decodes the envelope's data into out. A missing
// data member leaves out untouched.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("server not reachable (%w)", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &Error{Status: resp.StatusCode, Message: env.Message}
		if len(env.Error) > 0 {
			var fields validation.FieldErrors
			if json.Unmarshal(env.Error, &fields) == nil && len(fields) > 0 {
				apiErr.Fields = fields
			}
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}
