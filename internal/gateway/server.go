package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hopehub/pkg/httpclient"
	"github.com/nao1215/hopehub/pkg/middleware"
)

// Config はゲートウェイサーバーの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// BackendURL はバックエンドAPIのベースURL。
	BackendURL string
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string
	// SecureCookie はセッションクッキーにSecure属性を付与するか。
	// 本番環境（HTTPS）でのみtrueにする。
	SecureCookie bool
}

// Server はBFFゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// backend はバックエンドAPIのベースURL。
	backend *url.URL
	// secureCookie はセッションクッキーのSecure属性。
	secureCookie bool
	// authClient はバックエンドの認証APIを呼び出すHTTPクライアント。
	authClient *httpclient.Client
	// proxy はバックエンドへのリバースプロキシ。
	proxy *httputil.ReverseProxy
}

// NewServer は新しいゲートウェイサーバーを生成する。
func NewServer(cfg Config) (*Server, error) {
	backend, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("バックエンドURLの解析に失敗: %w", err)
	}
	if backend.Scheme == "" || backend.Host == "" {
		return nil, fmt.Errorf("バックエンドURLが不正です: %q", cfg.BackendURL)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	if cfg.FrontendURL != "" {
		router.Use(middleware.CORS([]string{cfg.FrontendURL}))
	}

	s := &Server{
		router:       router,
		port:         cfg.Port,
		backend:      backend,
		secureCookie: cfg.SecureCookie,
		authClient:   httpclient.New(cfg.BackendURL),
	}
	s.proxy = s.newReverseProxy()
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はHTTPハンドラを返す。結合テストからhttptest.Serverに載せるために使用する。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes() {
	// 資格情報交換
	auth := s.router.Group("/auth")
	{
		auth.POST("/login", s.handleLogin())
		auth.GET("/me", s.handleMe())
		auth.POST("/logout", s.handleLogout())
	}

	// バックエンドAPIへのキャッチオールプロキシ
	s.router.Any("/proxy/*path", s.handleProxy())

	// 管理画面のページシェル。ルートガードでセッションクッキーの有無を検査する
	admin := s.router.Group("/admin")
	admin.Use(RouteGuard("/admin/login", "/admin/testimonies"))
	{
		admin.GET("", s.handlePage("管理ハブ"))
		admin.GET("/login", s.handlePage("ログイン"))
		admin.GET("/testimonies", s.handlePage("証言モデレーション"))
		admin.GET("/donations", s.handlePage("寄付管理"))
		admin.GET("/dashboard", s.handlePage("ダッシュボード"))
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// handlePage は管理画面のページシェルを返すハンドラを返す。
func (s *Server) handlePage(title string) gin.HandlerFunc {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>%s - hopehub</title></head>
<body><div id="app" data-page="%s"></div></body>
</html>
`, title, title)
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}
