// Package session は管理画面セッションの表現とセッションクッキーの操作を提供する。
//
// バックエンドが発行したベアラー資格情報はHTTP-onlyクッキーとしてブラウザに
// 保持され、ページスクリプトからは一切参照できない。サーバー側は毎リクエスト
// このクッキーから資格情報を再導出する。資格情報を永続化する場所は存在しない。
package session

import (
	"net/http"
	"time"
)

// CookieName はセッションクッキーの名前。
const CookieName = "auth-token"

// TTL はセッションクッキーの有効期間。上流の資格情報の有効期間と一致させる。
const TTL = 24 * time.Hour

// User は認証済み管理ユーザーのプロフィール。
type User struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
	// Role はユーザーの役割（認可ポリシー自体はバックエンドが所有する）。
	Role string `json:"role"`
}

// Session は1つのクライアントセッションを表す。
// ベアラー資格情報は不透明な文字列であり、ゲートウェイ層は中身を解釈しない。
type Session struct {
	// Credential は上流サービスへのベアラー資格情報。
	Credential string `json:"credential"`
	// User はセッションの持ち主のプロフィール。
	User User `json:"user"`
	// IssuedAt はセッションが確立された日時。
	IssuedAt time.Time `json:"issued_at"`
}

// NewCookie はベアラー資格情報を保持するセッションクッキーを生成する。
// HTTP-only・SameSite=Strict・path=/ は固定。Secure属性は本番環境でのみ有効にする。
func NewCookie(credential string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    credential,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredCookie はセッションクッキーを即時失効させるクッキーを生成する。
// ログアウトおよび上流による資格情報拒否の際に使用する。
func ExpiredCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// CredentialFromRequest はリクエストのセッションクッキーからベアラー資格情報を取り出す。
// クッキーが無い、または値が空の場合は ok=false を返す。
// 存在確認のみであり、資格情報が上流で有効かどうかは検証しない。
func CredentialFromRequest(r *http.Request) (credential string, ok bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
