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

	"github.com/dmitrijs2005/audiokeeper/internal/client/models"
	"github.com/dmitrijs2005/audiokeeper/internal/common"
)

const defaultTimeout = 10 * time.Second

// HTTPClient implements Client over the JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/health", "", nil, &body)
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/accounts", "", req, &u)
	return u, err
}

// Login exchanges credentials for an access token using the form-encoded
// password grant.
func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {string(password)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.send(req, &tok); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/accounts/me", token, nil, &u)
	return u, err
}

func (c *HTTPClient) UpdateMe(ctx context.Context, token string, req models.UpdateRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPatch, "/accounts/me", token, req, &u)
	return u, err
}

func (c *HTTPClient) DeleteMe(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/me", token, nil, nil)
}

func (c *HTTPClient) ListFiles(ctx context.Context, token string) ([]models.AudioFile, error) {
	var files []models.AudioFile
	err := c.do(ctx, http.MethodGet, "/audio_files", token, nil, &files)
	return files, err
}

func (c *HTTPClient) CreateFile(ctx context.Context, token string, req models.FileRequest) (models.AudioFile, error) {
	var f models.AudioFile
	err := c.do(ctx, http.MethodPost, "/audio_files", token, req, &f)
	return f, err
}

func (c *HTTPClient) DeleteFile(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/audio_files/"+url.PathEscape(id), token, nil, nil)
}

func (c *HTTPClient) UploadURL(ctx context.Context, token, id string) (models.UploadTicket, error) {
	var t models.UploadTicket
	err := c.do(ctx, http.MethodPost, "/audio_files/"+url.PathEscape(id)+"/upload-url", token, nil, &t)
	return t, err
}

func (c *HTTPClient) DownloadURL(ctx context.Context, token, id string) (string, error) {
	var body struct {
		DownloadURL string `json:"download_url"`
	}
	err := c.do(ctx, http.MethodGet, "/audio_files/"+url.PathEscape(id)+"/download-url", token, nil, &body)
	return body.DownloadURL, err
}

// Upload PUTs body to a presigned object storage URL.
func (c *HTTPClient) Upload(ctx context.Context, url string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")

	// presigned uploads can be slow; the context bounds them instead
	resp, err := (&http.Client{Transport: c.http.Transport}).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload failed: %s", resp.Status)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError maps an error response to the shared error kinds, keeping
// the server's detail message.
func statusError(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	detail := body.Detail
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return common.Invalid(detail)
	case resp.StatusCode == http.StatusUnauthorized:
		return common.Unauthorized(detail)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, detail)
	case resp.StatusCode == http.StatusConflict:
		return common.Conflict(detail)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, detail)
	default:
		return fmt.Errorf("%w: %s", common.ErrorInternal, detail)
	}
}
