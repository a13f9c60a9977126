package backendmock

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nao1215/hopehub/pkg/middleware"
	"github.com/nao1215/hopehub/pkg/migration"
)

// Server はモックバックエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// store は永続化層。
	store *Store
	// jwtSecret はベアラー資格情報（JWT）の署名用秘密鍵。
	jwtSecret string
	// adminID は管理者アカウントの一意識別子。
	adminID string
	// adminEmail / adminPassword は環境変数から読み込む管理者アカウント。
	adminEmail    string
	adminPassword string
}

// NewServer は新しいモックバックエンドサーバーを生成する。
// dbPathには永続化先のSQLiteファイルパス、またはテスト用に ":memory:" を指定する。
func NewServer(port, dbPath string) (*Server, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// SQLiteは単一ライターのため接続を1本に制限する（インメモリDBでは必須）
	db.SetMaxOpenConns(1)

	if _, err := migration.Apply(db, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:        router,
		port:          port,
		db:            db,
		store:         NewStore(db),
		jwtSecret:     getEnvOr("JWT_SECRET", "dev-secret-key"),
		adminID:       uuid.New().String(),
		adminEmail:    getEnvOr("ADMIN_EMAIL", "admin@hopehub.example"),
		adminPassword: getEnvOr("ADMIN_PASSWORD", "hopehub-dev"),
	}
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

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		// 認証（ゲートウェイのログイン中継とwhoAmIが消費する）
		auth := api.Group("/auth")
		{
			auth.POST("/login", s.handleLogin())
			auth.GET("/profile", middleware.JWTAuth(s.jwtSecret), s.handleProfile())
		}

		// 公開投稿（認証不要）
		api.POST("/testimonies", s.handleSubmitTestimony())
		api.POST("/donations", s.handleInitiateDonation())

		// 管理API（ベアラー資格情報が必須）
		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(s.jwtSecret))
		{
			admin.GET("/testimonies", s.handleListTestimonies())
			admin.POST("/testimonies/:id/read", s.handleMarkTestimonyRead())
			admin.POST("/testimonies/:id/validate", s.handleValidateTestimony())
			admin.POST("/testimonies/:id/schedule", s.handleScheduleTestimony())

			admin.GET("/donations", s.handleListDonations())
			admin.POST("/donations/:id/verify", s.handleVerifyDonation())
			admin.POST("/donations/:id/reject", s.handleRejectDonation())

			admin.GET("/hub/dashboard", s.handleDashboard())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "backend-mock"})
	})
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Email はメールアドレス。
	Email string `json:"email" binding:"required"`
	// Password はパスワード。
	Password string `json:"password" binding:"required"`
}

// userResponse はユーザープロフィールのJSONレスポンス構造。
type userResponse struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Role は役割。
	Role string `json:"role"`
}

// handleLogin は資格情報を検証しベアラー資格情報を発行するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		if req.Email != s.adminEmail || req.Password != s.adminPassword {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, s.adminID, s.adminEmail, "admin")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  userResponse{ID: s.adminID, Email: s.adminEmail, Role: "admin"},
		})
	}
}

// handleProfile はベアラー資格情報に対応するプロフィールを返すハンドラを返す。
// ゲートウェイのwhoAmIがセッション再導出のたびに呼び出す。
func (s *Server) handleProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user": userResponse{
				ID:    middleware.GetUserID(c),
				Email: middleware.GetUserEmail(c),
				Role:  middleware.GetUserRole(c),
			},
		})
	}
}

// handleDashboard は管理ハブのダッシュボード集計を返すハンドラを返す。
func (s *Server) handleDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		testimonies, err := s.store.CountTestimoniesByStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "証言件数の集計に失敗しました"})
			return
		}
		donations, err := s.store.CountDonationsByStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "寄付件数の集計に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"testimonies":  testimonies,
			"donations":    donations,
			"generated_at": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
