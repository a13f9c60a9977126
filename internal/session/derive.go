package session

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/hopehub/pkg/httpclient"
)

// meResponse はゲートウェイの /auth/me レスポンスのJSON構造。
type meResponse struct {
	// User はセッションに対応するユーザー。
	User User `json:"user"`
	// Credential はクッキーに格納されているベアラー資格情報。
	Credential string `json:"credential"`
}

// Derive はゲートウェイの /auth/me を呼び出してセッションを再導出し、
// Storeを更新する。Storeが埋まる唯一の経路である。
//
// clientにはセッションクッキーを提示するゲートウェイ向けクライアントを渡す。
// 資格情報が401で拒否された場合はStoreを破棄してエラーを返す。
// 上流の一時的な障害ではStoreを変更しない。
func Derive(ctx context.Context, client *httpclient.Client, store *Store) (*Session, error) {
	var res meResponse
	if err := client.GetJSON(ctx, "/auth/me", &res); err != nil {
		if httpclient.IsUnauthorized(err) {
			store.Clear()
		}
		return nil, fmt.Errorf("セッションの再導出に失敗: %w", err)
	}

	sess := &Session{
		Credential: res.Credential,
		User:       res.User,
		IssuedAt:   time.Now(),
	}
	store.Set(sess)
	return sess, nil
}
