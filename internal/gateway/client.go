// Package gateway is the HTTP client for the VIKSIT KANPUR backend. Every
// portal operation that touches the network goes through it; it attaches the
// bearer token once stored and reports non-2xx responses as plain errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.Mutex
	token        string
	refreshToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTokens stores the bearer and refresh tokens attached to later calls.
func (c *Client) SetTokens(token, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.refreshToken = refreshToken
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

func (c *Client) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/admin-login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, path, map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.SetTokens(result.Token, result.RefreshToken)
	return &result, nil
}

func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", payload, &result); err != nil {
		return nil, err
	}
	c.SetTokens(result.Token, result.RefreshToken)
	return &result, nil
}

func (c *Client) GetUserProblems(ctx context.Context, userID int64) ([]Problem, error) {
	var result struct {
		Problems []Problem `json:"problems"`
	}
	path := "/api/problems?userId=" + strconv.FormatInt(userID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Problems, nil
}

func (c *Client) GetAllProblems(ctx context.Context) ([]Problem, error) {
	var result struct {
		Problems []Problem `json:"problems"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/problems", nil, &result); err != nil {
		return nil, err
	}
	return result.Problems, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var result struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

// SubmitProblem uploads a complaint as multipart: a "payload" JSON field and
// the photo under "image".
func (c *Client) SubmitProblem(ctx context.Context, payload SubmitPayload, imageName string, image io.Reader) (*Problem, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteField("payload", string(payloadJSON)); err != nil {
		return nil, err
	}

	part, err := writer.CreateFormFile("image", imageName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/problems", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Problem Problem `json:"problem"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Problem, nil
}

func (c *Client) UpdateProblem(ctx context.Context, id string, update ProblemUpdate) (*Problem, error) {
	var result struct {
		Problem Problem `json:"problem"`
	}
	if err := c.do(ctx, http.MethodPatch, "/api/problems/"+id, update, &result); err != nil {
		return nil, err
	}
	return &result.Problem, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, update UserUpdate) (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	path := "/api/users/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, update, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// AnalyzeImage asks the backend to categorize a photo. Best-effort.
func (c *Client) AnalyzeImage(ctx context.Context, imageName string, image io.Reader) ([]string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", imageName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Categories, nil
}

// Logout revokes the refresh token server-side and clears local tokens.
// Clearing happens regardless of the network outcome.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()

	var err error
	if refresh != "" {
		err = c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{
			"refreshToken": refresh,
		}, nil)
	}

	c.SetTokens("", "")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
