package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewCookie はセッションクッキーの属性を検証する。
func TestNewCookie(t *testing.T) {
	t.Parallel()

	t.Run("規定の属性でクッキーが生成されること", func(t *testing.T) {
		t.Parallel()

		c := NewCookie("token-abc", false)
		if c.Name != "auth-token" {
			t.Errorf("Name = %q, want %q", c.Name, "auth-token")
		}
		if c.Value != "token-abc" {
			t.Errorf("Value = %q, want %q", c.Value, "token-abc")
		}
		if c.Path != "/" {
			t.Errorf("Path = %q, want %q", c.Path, "/")
		}
		if c.MaxAge != 86400 {
			t.Errorf("MaxAge = %d, want %d", c.MaxAge, 86400)
		}
		if !c.HttpOnly {
			t.Error("HttpOnlyが設定されていない")
		}
		if c.Secure {
			t.Error("非本番環境でSecureが設定されている")
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("SameSite = %v, want %v", c.SameSite, http.SameSiteStrictMode)
		}
	})

	t.Run("本番環境ではSecure属性が有効になること", func(t *testing.T) {
		t.Parallel()

		c := NewCookie("token-abc", true)
		if !c.Secure {
			t.Error("Secureが設定されていない")
		}
	})
}

// TestExpiredCookie は失効クッキーの属性を検証する。
func TestExpiredCookie(t *testing.T) {
	t.Parallel()

	c := ExpiredCookie(false)
	if c.Name != CookieName {
		t.Errorf("Name = %q, want %q", c.Name, CookieName)
	}
	if c.Value != "" {
		t.Errorf("Value = %q, want 空文字列", c.Value)
	}
	if c.MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want 負の値", c.MaxAge)
	}
}

// TestCredentialFromRequest はリクエストからの資格情報再導出を検証する。
func TestCredentialFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("クッキーがある場合に資格情報を取り出せること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "token-xyz"})

		cred, ok := CredentialFromRequest(req)
		if !ok {
			t.Fatal("ok = false, want true")
		}
		if cred != "token-xyz" {
			t.Errorf("credential = %q, want %q", cred, "token-xyz")
		}
	})

	t.Run("クッキーが無い場合はokがfalseになること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if _, ok := CredentialFromRequest(req); ok {
			t.Error("ok = true, want false")
		}
	})

	t.Run("クッキーの値が空の場合はokがfalseになること", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: ""})
		if _, ok := CredentialFromRequest(req); ok {
			t.Error("ok = true, want false")
		}
	})
}

// TestStore はセッションホルダーの基本操作を検証する。
func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("初期状態ではセッションが無いこと", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		if s.Get() != nil {
			t.Error("Get() != nil")
		}
		if s.Credential() != "" {
			t.Errorf("Credential() = %q, want 空文字列", s.Credential())
		}
	})

	t.Run("Setしたセッションを取得できること", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		sess := &Session{
			Credential: "token-1",
			User:       User{ID: "user-1", Email: "admin@example.com", Role: "admin"},
			IssuedAt:   time.Now(),
		}
		s.Set(sess)

		if got := s.Get(); got != sess {
			t.Errorf("Get() = %+v, want %+v", got, sess)
		}
		if s.Credential() != "token-1" {
			t.Errorf("Credential() = %q, want %q", s.Credential(), "token-1")
		}
	})

	t.Run("Clearでセッションが破棄されること", func(t *testing.T) {
		t.Parallel()

		s := NewStore()
		s.Set(&Session{Credential: "token-1"})
		s.Clear()

		if s.Get() != nil {
			t.Error("Clear後にGet() != nil")
		}
		if s.Credential() != "" {
			t.Errorf("Clear後のCredential() = %q, want 空文字列", s.Credential())
		}
	})
}
