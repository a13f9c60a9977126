package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/hopehub/pkg/httpclient"
)

// TestDerive はセッションの再導出とStoreの更新を検証する。
func TestDerive(t *testing.T) {
	t.Parallel()

	t.Run("再導出の成功でStoreが更新されること", func(t *testing.T) {
		t.Parallel()

		gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/me" {
				t.Errorf("パス = %q, want %q", r.URL.Path, "/auth/me")
			}
			if c, err := r.Cookie(CookieName); err != nil || c.Value != "browser-credential" {
				t.Errorf("セッションクッキーが提示されていない: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"user":{"id":"u1","email":"admin@hopehub.example","role":"admin"},"credential":"browser-credential"}`))
		}))
		defer gateway.Close()

		store := NewStore()
		client := httpclient.New(gateway.URL,
			httpclient.WithCookieFunc(CookieName, func() string { return "browser-credential" }))

		sess, err := Derive(context.Background(), client, store)
		if err != nil {
			t.Fatalf("再導出に失敗: %v", err)
		}
		if sess.User.ID != "u1" {
			t.Errorf("id = %q, want %q", sess.User.ID, "u1")
		}
		if got := store.Credential(); got != "browser-credential" {
			t.Errorf("Storeの資格情報 = %q, want %q", got, "browser-credential")
		}
	})

	t.Run("資格情報が拒否されるとStoreが破棄されること", func(t *testing.T) {
		t.Parallel()

		gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"セッションが無効です"}`))
		}))
		defer gateway.Close()

		store := NewStore()
		store.Set(&Session{Credential: "stale-credential", User: User{ID: "u1"}})

		client := httpclient.New(gateway.URL,
			httpclient.WithCookieFunc(CookieName, store.Credential))
		if _, err := Derive(context.Background(), client, store); err == nil {
			t.Fatal("エラーが返らない")
		}
		if store.Get() != nil {
			t.Error("拒否後もStoreにセッションが残っている")
		}
	})

	t.Run("一時的な障害ではStoreが変更されないこと", func(t *testing.T) {
		t.Parallel()

		gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer gateway.Close()

		store := NewStore()
		store.Set(&Session{Credential: "live-credential", User: User{ID: "u1"}})

		client := httpclient.New(gateway.URL,
			httpclient.WithCookieFunc(CookieName, store.Credential))
		if _, err := Derive(context.Background(), client, store); err == nil {
			t.Fatal("エラーが返らない")
		}
		if got := store.Credential(); got != "live-credential" {
			t.Errorf("Storeの資格情報 = %q, want %q", got, "live-credential")
		}
	})
}
