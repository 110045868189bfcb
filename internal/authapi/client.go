// Package authapi は外部認証APIへのHTTPクライアントを提供します。
// パスワードのハッシュ化やセッションの永続化は外部API側の責務であり、
// このパッケージはリクエストの送信とレスポンスの型付けのみを行います。
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	headerAPIKey = "X-API-Key"

	pathAuthenticate  = "/user-auth"
	pathVerifySession = "/user-auth/verify-session"
	pathLogout        = "/user-auth/logout"
	pathCreateUser    = "/users"
)

// User は外部APIが返すユーザー情報です。
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UserSession はセッション検証で得られるサーバー側ビューです。
// ローカルには保存せず、必要なリクエストごとに再計算します。
type UserSession struct {
	UserID    int       `json:"userId"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthResult は認証成功時に外部APIが返すセッション情報です。
// Session が空のままの2xx応答もあり得るため、呼び出し側で必ず確認します。
type AuthResult struct {
	Session        string    `json:"session"`
	SessionExpires time.Time `json:"sessionExpires"`
}

// StatusError は外部APIが非2xxを返したことを表すエラーです。
// Message にはレスポンスボディの error フィールドが入ります（空の場合あり）。
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth api returned status %d", e.Status)
	}
	return fmt.Sprintf("auth api returned status %d: %s", e.Status, e.Message)
}

// Client は外部認証APIのクライアントです。
// リトライは行わず、1回の呼び出しはタイムアウトで必ず打ち切られます。
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient は Client を作成します。
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Authenticate は資格情報を検証してセッションを発行します。
// 404/401/その他の非2xxは *StatusError として返します。
func (c *Client) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.post(ctx, pathAuthenticate, map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifySession はセッショントークンを外部APIで検証します。
func (c *Client) VerifySession(ctx context.Context, session string) (*UserSession, error) {
	var result UserSession
	err := c.post(ctx, pathVerifySession, map[string]string{
		"session": session,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout はセッションの無効化を外部APIに通知します。レスポンスボディは読み捨てます。
func (c *Client) Logout(ctx context.Context, session string) error {
	return c.post(ctx, pathLogout, map[string]string{
		"session": session,
	}, nil)
}

// CreateUser は新規ユーザーを作成します。
// 平文パスワードを送信しますが、ハッシュ化は外部API側で行われます。
func (c *Client) CreateUser(ctx context.Context, firstName, lastName, email, password string) error {
	return c.post(ctx, pathCreateUser, map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   password,
	}, nil)
}

// post はJSONリクエストを送信し、2xxならレスポンスを out にデコードします。
// 非2xxはボディの error フィールドを添えた *StatusError になります。
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Status:  resp.StatusCode,
			Message: decodeErrorMessage(resp.Body),
		}
	}

	if out == nil {
		// ボディは読み捨ててコネクションを再利用可能にする
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func decodeErrorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	return body.Error
}
