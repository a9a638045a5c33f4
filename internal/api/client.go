// Package api wraps all outbound calls to the project-management backend.
//
// The client deliberately does not turn 4xx/5xx statuses into errors: every
// completed HTTP exchange yields a Response whose Status the caller branches
// on (201/200 success, 400/403/500 specific messages). Only transport
// failures and the 401 forced-logout case surface as errors.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUnauthorized is returned after a 401 response. The logout side effect
// has already fired by the time the caller sees it.
var ErrUnauthorized = errors.New("unauthorized")

// Session is the slice of the session store the client needs: a token to
// attach and a logout hook for 401 responses.
type Session interface {
	Token() string
	Logout() error
}

// Response is a completed HTTP exchange.
type Response struct {
	Status int
	Body   []byte
}

// Client is the configured gateway to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    Session
}

// New creates a client with a fixed base URL and request timeout.
func New(baseURL string, timeout time.Duration, session Session) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
	}
}

// Get issues a GET request.
func (c *Client) Get(path string) (*Response, error) {
	return c.do(http.MethodGet, path, "", nil)
}

// Post issues a POST request with a JSON body. A nil payload sends no body.
func (c *Client) Post(path string, payload any) (*Response, error) {
	body, contentType, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	return c.do(http.MethodPost, path, contentType, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(path string, payload any) (*Response, error) {
	body, contentType, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	return c.do(http.MethodPut, path, contentType, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(path string) (*Response, error) {
	return c.do(http.MethodDelete, path, "", nil)
}

// PostMultipart issues a POST with multipart form fields plus one file part.
func (c *Client) PostMultipart(path string, fields map[string]string, fileField, fileName string, file io.Reader) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write form field: %w", err)
		}
	}
	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return c.do(http.MethodPost, path, w.FormDataContentType(), &buf)
}

func jsonBody(payload any) (io.Reader, string, error) {
	if payload == nil {
		return nil, "", nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request body: %w", err)
	}
	return bytes.NewReader(raw), "application/json", nil
}

func (c *Client) do(method, path, contentType string, body io.Reader) (*Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Force logout once, then propagate the rejection.
		_ = c.session.Logout()
		return &Response{Status: resp.StatusCode, Body: raw}, ErrUnauthorized
	}

	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// errorBody is the backend's error payload shape.
type errorBody struct {
	Error string `json:"error"`
}

// StatusMessage maps a non-success response to the user-facing failure text.
func StatusMessage(r *Response) string {
	var eb errorBody
	_ = json.Unmarshal(r.Body, &eb)

	switch r.Status {
	case http.StatusBadRequest:
		if eb.Error != "" {
			return "Bad Request: " + eb.Error
		}
		return "Bad Request: Invalid input data"
	case http.StatusForbidden:
		if eb.Error != "" {
			return eb.Error
		}
		return "You don't have permission"
	case http.StatusInternalServerError:
		if eb.Error != "" {
			return "Server Error: " + eb.Error
		}
		return "Server Error: Something went wrong"
	default:
		if eb.Error != "" {
			return fmt.Sprintf("Error %d: %s", r.Status, eb.Error)
		}
		return fmt.Sprintf("Error %d: An unknown error occurred", r.Status)
	}
}
