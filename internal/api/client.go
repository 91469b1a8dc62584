package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://127.0.0.1:5000"
	DefaultPrefix  = "/api/"
	uploadField    = "file"
)

type Options struct {
	BaseURL string
	Prefix  string
	// Timeout bounds a single request. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the bot dashboard REST API. It never retries and never
// interprets the HTTP status code: every response body is decoded and the
// caller decides success from the envelope.
type Client struct {
	root   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// TransportError is returned when a request could not be completed or its
// body was not JSON.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func New(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	root, err := url.Parse(strings.TrimRight(base, "/") + "/" + strings.Trim(prefix, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if root.Scheme != "http" && root.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https: %q", base)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{root: root, http: hc, logger: logger}, nil
}

// Endpoint resolves an API-relative path such as "bot/status".
func (c *Client) Endpoint(path string) string {
	return c.root.String() + strings.TrimLeft(path, "/")
}

func (c *Client) GetConfig(ctx context.Context) (BotConfig, error) {
	var out BotConfig
	err := c.doJSON(ctx, "get config", http.MethodGet, "config", nil, &out)
	return out, err
}

func (c *Client) SaveConfig(ctx context.Context, cfg BotConfig) (StatusResponse, error) {
	var out StatusResponse
	err := c.doJSON(ctx, "save config", http.MethodPost, "config", cfg, &out)
	return out, err
}

// SaveConfigDocument posts doc as is, so keys this client does not model
// reach the server unchanged.
func (c *Client) SaveConfigDocument(ctx context.Context, doc ConfigDocument) (StatusResponse, error) {
	if doc == nil {
		doc = ConfigDocument{}
	}
	var out StatusResponse
	err := c.doJSON(ctx, "save config", http.MethodPost, "config", doc, &out)
	return out, err
}

func (c *Client) GetPersonalities(ctx context.Context) (Personalities, error) {
	out := Personalities{}
	err := c.doJSON(ctx, "get personalities", http.MethodGet, "personalities", nil, &out)
	return out, err
}

// SavePersonalities replaces the server-side mapping with all of p.
func (c *Client) SavePersonalities(ctx context.Context, p Personalities) (StatusResponse, error) {
	var out StatusResponse
	err := c.doJSON(ctx, "save personalities", http.MethodPost, "personalities", p, &out)
	return out, err
}

func (c *Client) DeletePersonality(ctx context.Context, id string) (StatusResponse, error) {
	var out StatusResponse
	err := c.doJSON(ctx, "delete personality", http.MethodDelete, "personality/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ListPDFs(ctx context.Context) ([]Document, error) {
	var out []Document
	err := c.doJSON(ctx, "list pdfs", http.MethodGet, "pdfs", nil, &out)
	return out, err
}

// UploadPDF sends r as the multipart "file" field. This is the only request
// that is not JSON-encoded.
func (c *Client) UploadPDF(ctx context.Context, filename string, r io.Reader) (StatusResponse, error) {
	const op = "upload pdf"
	var out StatusResponse

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, filepath.Base(filename))
	if err != nil {
		return out, &TransportError{Op: op, Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return out, &TransportError{Op: op, Err: fmt.Errorf("read file: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return out, &TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint("upload_pdf"), &body)
	if err != nil {
		return out, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	err = c.send(op, req, &out)
	return out, err
}

func (c *Client) DeletePDF(ctx context.Context, path string) (StatusResponse, error) {
	var out StatusResponse
	err := c.doJSON(ctx, "delete pdf", http.MethodPost, "delete_pdf", map[string]string{"path": path}, &out)
	return out, err
}

func (c *Client) BotStatus(ctx context.Context) (BotStatus, error) {
	var out BotStatus
	err := c.doJSON(ctx, "bot status", http.MethodGet, "bot/status", nil, &out)
	return out, err
}

func (c *Client) StartBot(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.doJSON(ctx, "start bot", http.MethodPost, "bot/start", nil, &out)
	return out, err
}

func (c *Client) StopBot(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.doJSON(ctx, "stop bot", http.MethodPost, "bot/stop", nil, &out)
	return out, err
}

func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	var out []Account
	err := c.doJSON(ctx, "get accounts", http.MethodGet, "accounts", nil, &out)
	return out, err
}

// SaveAccounts replaces the server-side account list with accounts.
func (c *Client) SaveAccounts(ctx context.Context, accounts []Account) (StatusResponse, error) {
	if accounts == nil {
		accounts = []Account{}
	}
	var out StatusResponse
	err := c.doJSON(ctx, "save accounts", http.MethodPost, "accounts", accounts, &out)
	return out, err
}

func (c *Client) Logs(ctx context.Context) (LogsResponse, error) {
	var out LogsResponse
	err := c.doJSON(ctx, "get logs", http.MethodGet, "logs", nil, &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Endpoint(path), body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(op, req, out)
}

func (c *Client) send(op string, req *http.Request, out any) error {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response (http %d): %w", resp.StatusCode, err)}
	}
	return nil
}
