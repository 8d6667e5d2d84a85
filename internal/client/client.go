package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/dto"
)

// API paths consumed by the dashboard.
const (
	PathToken          = "/api/token/"
	PathProfile        = "/api/user/me/"
	PathMyCourses      = "/api/my-courses/"
	PathMyAssignments  = "/api/my-assignments/"
	PathMyGrades       = "/api/my-grades/"
	PathChatbot        = "/api/chatbot/query/"
	PathTeacherCourses = "/api/teacher/my-courses/"
	PathUploadContent  = "/api/teacher/upload-content/"
)

const maxErrorBody = 64 << 10

// Client talks to the dashboard API. Calls are synchronous; no timeout or retry is applied
// beyond what the supplied http.Client does.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New builds a client for baseURL such as http://127.0.0.1:8000. A nil httpClient uses a
// zero-value http.Client.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, logger: logger}
}

// ObtainToken exchanges credentials for a token pair. A rejected login is a *StatusError
// whose Detail is the server's message.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (*dto.TokenPair, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathToken, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req, "login")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "Invalid credentials or server error.")
	}
	var pair dto.TokenPair
	if err := decode(resp.Body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Profile returns the caller's profile including group membership.
func (c *Client) Profile(ctx context.Context, token string) (*dto.UserProfile, error) {
	var profile dto.UserProfile
	if err := c.Get(ctx, token, PathProfile, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Get fetches a protected resource into out.
func (c *Client) Get(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.authorized(req, token, "fetch "+path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := classify(resp, http.StatusOK, ""); err != nil {
		return err
	}
	return decode(resp.Body, out)
}

// AskChatbot posts a question and returns the reply text.
func (c *Client) AskChatbot(ctx context.Context, token, query string) (string, error) {
	body, err := json.Marshal(dto.ChatbotQueryRequest{Query: query})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathChatbot, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.authorized(req, token, "chatbot")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := classify(resp, http.StatusOK, ""); err != nil {
		return "", err
	}
	var reply dto.ChatbotReply
	if err := decode(resp.Body, &reply); err != nil {
		return "", err
	}
	return reply.Response, nil
}

// UploadContent sends one file for courseID as multipart form data. Only 201 counts as
// success.
func (c *Client) UploadContent(ctx context.Context, token string, courseID int64, filename string, r io.Reader) (*dto.UploadContentResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("course_id", strconv.FormatInt(courseID, 10)); err != nil {
		return nil, err
	}

	name := filepath.Base(filename)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathUploadContent, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.authorized(req, token, "upload")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := classify(resp, http.StatusCreated, fmt.Sprintf("Upload failed with status %d", resp.StatusCode)); err != nil {
		return nil, err
	}
	var out dto.UploadContentResponse
	if err := decode(resp.Body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) authorized(req *http.Request, token, op string) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, op)
}

func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	c.logger.Debug("api request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	c.logger.Debug("api response", zap.String("url", req.URL.String()), zap.Int("status", resp.StatusCode))
	return resp, nil
}

func classify(resp *http.Response, want int, fallback string) error {
	switch resp.StatusCode {
	case want:
		return nil
	case http.StatusUnauthorized:
		return ErrAuthenticationExpired
	case http.StatusForbidden:
		return ErrAuthorizationDenied
	default:
		return statusError(resp, fallback)
	}
}

// statusError reads the error or detail field from an error body.
func statusError(resp *http.Response, fallback string) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	out := &StatusError{Code: resp.StatusCode, Body: body, Detail: fallback}

	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			out.Detail = payload.Error
		case payload.Detail != "":
			out.Detail = payload.Detail
		}
	}
	return out
}

func decode(r io.Reader, out interface{}) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
