package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// StatusError は2xx以外のHTTP応答を表すエラー。
// 上流のステータスコードをそのまま中継する呼び出し側のために、
// ステータスコードと生のレスポンスボディを保持する。
type StatusError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body は生のレスポンスボディ。
	Body []byte
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, string(e.Body))
}

// Message はレスポンスボディのJSONからエラーメッセージを取り出す。
// `error` または `message` フィールドを探し、どちらも無ければ空文字列を返す。
func (e *StatusError) Message() string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

// GatewayError はネットワークレベルで上流に到達できなかったことを表すエラー。
// 呼び出し側はこのエラーを固定の502応答と汎用メッセージに変換し、
// 上流のアドレスやエラー詳細をクライアントに露出してはならない。
type GatewayError struct {
	// Err は元となったトランスポート層のエラー。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *GatewayError) Error() string {
	return fmt.Sprintf("上流サービスに到達できません: %v", e.Err)
}

// Unwrap はラップされたトランスポートエラーを返す。
func (e *GatewayError) Unwrap() error { return e.Err }

// StatusOf はエラーが *StatusError の場合にそのステータスコードを返す。
// それ以外の場合は ok=false を返す。
func StatusOf(err error) (status int, ok bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// AsStatusError はエラーが *StatusError の場合にtargetへ取り出す。
func AsStatusError(err error, target **StatusError) bool {
	return errors.As(err, target)
}

// IsUnauthorized はエラーが401応答かどうかを判定する。
// 上流による資格情報拒否のハンドリングに使用する。
func IsUnauthorized(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusUnauthorized
}

// IsGatewayError はエラーがネットワーク到達失敗かどうかを判定する。
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
