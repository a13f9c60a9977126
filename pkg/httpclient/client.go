package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client はゲートウェイおよびバックエンドへのJSON通信を行うHTTPクライアント。
// 資格情報の付与方法はオプションで構成し、呼び出し側は意識しない。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先のベースURL。
	baseURL string
	// bearer はAuthorizationヘッダーに付与するベアラー資格情報を返す関数。
	// nilまたは空文字列を返す場合はヘッダーを付与しない。
	bearer func() string
	// cookieName / cookieValue はリクエストに付与するクッキー。
	// ゲートウェイ経由の呼び出しでセッションクッキーを提示するために使用する。
	cookieName  string
	cookieValue func() string
}

// Option はClientの構成オプション。
type Option func(*Client)

// WithBearerFunc は毎リクエスト呼び出される資格情報供給関数を設定する。
// セッションホルダーなど、資格情報が入れ替わり得る供給元を注入する。
func WithBearerFunc(f func() string) Option {
	return func(c *Client) { c.bearer = f }
}

// WithCookieFunc は毎リクエスト付与するクッキーの供給元を設定する。
// ゲートウェイの /proxy 経由で呼び出す場合はセッションクッキーをここで渡す。
func WithCookieFunc(name string, value func() string) Option {
	return func(c *Client) {
		c.cookieName = name
		c.cookieValue = value
	}
}

// New は新しいJSON通信用HTTPクライアントを生成する。
// baseURLには接続先のベースURL（例: "http://localhost:8090"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBearer は固定のベアラー資格情報を付与するクライアントの複製を返す。
// リクエスト単位で資格情報が異なる呼び出し（whoAmIの中継など）に使用する。
func (c *Client) WithBearer(credential string) *Client {
	clone := *c
	clone.bearer = func() string { return credential }
	return &clone
}

// GetJSON は指定パスにGETリクエストを送信し、レスポンスをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

// PutJSON は指定パスにJSONボディでPUTリクエストを送信する。
func (c *Client) PutJSON(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, result)
}

// DeleteJSON は指定パスにDELETEリクエストを送信する。
func (c *Client) DeleteJSON(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, result)
}

// doJSON はJSON形式のHTTPリクエストを実行する共通処理。
// ネットワーク到達失敗は *GatewayError、2xx以外の応答は *StatusError として返す。
func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.bearer != nil {
		if credential := c.bearer(); credential != "" {
			req.Header.Set("Authorization", "Bearer "+credential)
		}
	}
	if c.cookieValue != nil {
		if v := c.cookieValue(); v != "" {
			req.AddCookie(&http.Cookie{Name: c.cookieName, Value: v})
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}
