package gateway

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hopehub/internal/session"
	"github.com/nao1215/hopehub/pkg/httpclient"
	"github.com/nao1215/hopehub/pkg/middleware"
)

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Email はメールアドレス。
	Email string `json:"email" binding:"required"`
	// Password はパスワード。
	Password string `json:"password" binding:"required"`
}

// loginResult はバックエンドのログインレスポンス。
type loginResult struct {
	// Token はベアラー資格情報。クッキーにのみ格納し、ボディには載せない。
	Token string `json:"token"`
	// User はログインしたユーザー。
	User session.User `json:"user"`
}

// profileResult はバックエンドのプロフィールレスポンス。
type profileResult struct {
	// User はセッションに対応するユーザー。
	User session.User `json:"user"`
}

// handleLogin は資格情報交換を行うハンドラを返す。
// バックエンドへログインを中継し、発行されたベアラー資格情報を
// HttpOnlyクッキーに格納する。レスポンスボディにはユーザー情報だけを返す。
// ゲートウェイ自身はセッションを保持しない。セッションの唯一の写しは
// クッキーであり、呼び出し側のセッションホルダーは /auth/me で再導出される。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		var res loginResult
		if err := s.authClient.PostJSON(c.Request.Context(), "/api/v1/auth/login", req, &res); err != nil {
			s.relayAuthError(c, err)
			return
		}

		http.SetCookie(c.Writer, session.NewCookie(res.Token, s.secureCookie))
		c.JSON(http.StatusOK, gin.H{"user": res.User})
	}
}

// handleMe は現在のセッションを再導出するハンドラを返す。
// クッキーの資格情報をバックエンドに照会し、ユーザー情報と資格情報を返す。
//
// クッキーを破棄するのは、クッキーが無い場合と上流が資格情報を401で
// 拒否した場合だけである。上流の一時的な障害（5xxや接続不可）では
// 有効なセッションを壊さず、クッキーを残したまま502を返す。
func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, ok := session.CredentialFromRequest(c.Request)
		if !ok {
			s.expireSessionCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ログインしていません"})
			return
		}

		var res profileResult
		if err := s.authClient.WithBearer(credential).GetJSON(c.Request.Context(), "/api/v1/auth/profile", &res); err != nil {
			if httpclient.IsUnauthorized(err) {
				// 資格情報が期限切れまたは無効。クッキーごと破棄する
				s.expireSessionCookie(c)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "セッションが無効です"})
				return
			}
			log.Printf("[ERROR] プロフィール照会に失敗しました (request_id=%s): %v", middleware.RequestIDFrom(c), err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "バックエンドに接続できません"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": res.User, "credential": credential})
	}
}

// handleLogout はセッションクッキーを破棄するハンドラを返す。
// 上流への呼び出しは行わないベストエフォートの操作である。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.expireSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "ログアウトしました"})
	}
}

// expireSessionCookie はセッションクッキーを失効させる。
func (s *Server) expireSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, session.ExpiredCookie(s.secureCookie))
}

// relayAuthError はバックエンドの認証エラーをクライアントへ中継する。
// バックエンドが返したステータスコードとメッセージはそのまま伝え、
// 接続障害のときだけ502に丸める。
func (s *Server) relayAuthError(c *gin.Context, err error) {
	var statusErr *httpclient.StatusError
	if httpclient.AsStatusError(err, &statusErr) {
		c.JSON(statusErr.StatusCode, gin.H{"error": statusErr.Message()})
		return
	}
	log.Printf("[ERROR] ログイン中継に失敗しました (request_id=%s): %v", middleware.RequestIDFrom(c), err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "バックエンドに接続できません"})
}
