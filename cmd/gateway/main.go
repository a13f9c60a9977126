// BFFゲートウェイサービスのエントリポイント。
// 資格情報交換（ログイン中継とクッキー格納）、バックエンドAPIへのプロキシ、
// 管理画面のルートガードを担当する。ブラウザから直接アクセスされる唯一の
// サービスであり、ベアラー資格情報をブラウザに晒さない境界線となる。
package main

import (
	"log"
	"os"

	"github.com/nao1215/hopehub/internal/gateway"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:8090"
	}

	server, err := gateway.NewServer(gateway.Config{
		Port:         port,
		BackendURL:   backendURL,
		FrontendURL:  os.Getenv("FRONTEND_URL"),
		SecureCookie: os.Getenv("APP_ENV") == "production",
	})
	if err != nil {
		log.Fatalf("ゲートウェイサーバーの初期化に失敗: %v", err)
	}

	log.Printf("ゲートウェイサービスを起動します: :%s (backend: %s)", port, backendURL)
	if err := server.Run(); err != nil {
		log.Fatalf("ゲートウェイサービスの起動に失敗: %v", err)
	}
}
