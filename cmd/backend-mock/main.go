// モックバックエンドサービスのエントリポイント。
// ゲートウェイの開発と結合テストのために、認証・証言モデレーション・
// 寄付管理のAPIをSQLiteで提供する。本番のバックエンドの代替ではない。
package main

import (
	"log"
	"os"

	"github.com/nao1215/hopehub/internal/backendmock"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "backendmock.db"
	}

	server, err := backendmock.NewServer(port, dbPath)
	if err != nil {
		log.Fatalf("モックバックエンドの初期化に失敗: %v", err)
	}
	defer server.Close()

	log.Printf("モックバックエンドサービスを起動します: :%s (db: %s)", port, dbPath)
	if err := server.Run(); err != nil {
		log.Fatalf("モックバックエンドサービスの起動に失敗: %v", err)
	}
}
