package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のJWT署名秘密鍵。
const testSecret = "test-secret-key"

// newJWTRouter はJWTAuthを適用し、クレームをそのまま返すテスト用ルーターを生成する。
func newJWTRouter(secret string) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(secret))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetUserID(c),
			"email":   GetUserEmail(c),
			"role":    GetUserRole(c),
		})
	})
	return router
}

// TestGenerateJWTAndVerify は資格情報の発行と検証の往復を検証する。
func TestGenerateJWTAndVerify(t *testing.T) {
	t.Parallel()

	t.Run("発行したトークンで認証が通りクレームが復元されること", func(t *testing.T) {
		t.Parallel()

		token, err := GenerateJWT(testSecret, "user-1", "admin@example.com", "admin")
		if err != nil {
			t.Fatalf("GenerateJWTに失敗: %v", err)
		}

		router := newJWTRouter(testSecret)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		body := w.Body.String()
		for _, want := range []string{"user-1", "admin@example.com", "admin"} {
			if !strings.Contains(body, want) {
				t.Errorf("レスポンスに %q が含まれていない: %s", want, body)
			}
		}
	})

	t.Run("異なるsecretで署名されたトークンは拒否されること", func(t *testing.T) {
		t.Parallel()

		token, err := GenerateJWT("wrong-secret", "user-1", "admin@example.com", "admin")
		if err != nil {
			t.Fatalf("GenerateJWTに失敗: %v", err)
		}

		router := newJWTRouter(testSecret)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("Authorizationヘッダーが無い場合は401を返すこと", func(t *testing.T) {
		t.Parallel()

		router := newJWTRouter(testSecret)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("Bearer接頭辞なしのトークンは拒否されること", func(t *testing.T) {
		t.Parallel()

		token, err := GenerateJWT(testSecret, "user-1", "admin@example.com", "admin")
		if err != nil {
			t.Fatalf("GenerateJWTに失敗: %v", err)
		}

		router := newJWTRouter(testSecret)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", token)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}
