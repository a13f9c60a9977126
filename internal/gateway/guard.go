package gateway

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hopehub/internal/session"
)

// RouteGuard は管理画面のルートガードミドルウェアを返す。
//
// セッションクッキーの「有無」だけを検査する。中身の検証はしない。
// ページシェルはデータを持たないため、偽造クッキーで通過しても
// APIはプロキシ先の認証で拒否される。
//
// 振る舞いは2つ。
//   - 未ログインで保護ページへアクセスした場合、ログインページへ
//     リダイレクトする。元のパスは from クエリで引き継ぐ。
//   - ログイン済みでログインページへアクセスした場合、着地ページへ
//     リダイレクトする。
func RouteGuard(loginPath, landingPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, hasSession := session.CredentialFromRequest(c.Request)

		if c.Request.URL.Path == loginPath {
			if hasSession {
				c.Redirect(http.StatusFound, landingPath)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if !hasSession {
			c.Redirect(http.StatusFound, loginPath+"?from="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Next()
	}
}
