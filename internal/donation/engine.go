package donation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nao1215/hopehub/pkg/httpclient"
)

// basePath はゲートウェイ経由の寄付管理APIのベースパス。
const basePath = "/proxy/admin/donations"

// Engine は寄付トランザクションの検証遷移を駆動するエンジン。
// 各遷移は1回のリモート呼び出しで、サーバーがエコーした状態のみを投影に反映する。
type Engine struct {
	// client はゲートウェイへのHTTPクライアント。
	client *httpclient.Client
	// mu はtransactionsへのアクセスを保護する。
	mu sync.RWMutex
	// transactions はIDをキーとするローカル投影。
	transactions map[string]Transaction
}

// NewEngine は新しい寄付検証エンジンを生成する。
func NewEngine(client *httpclient.Client) *Engine {
	return &Engine{
		client:       client,
		transactions: make(map[string]Transaction),
	}
}

// Reload はバックエンドからトランザクション一覧を取得し、ローカル投影を置き換える。
func (e *Engine) Reload(ctx context.Context) error {
	var list []Transaction
	if err := e.client.GetJSON(ctx, basePath, &list); err != nil {
		return fmt.Errorf("寄付一覧の取得に失敗: %w", err)
	}

	next := make(map[string]Transaction, len(list))
	for _, tx := range list {
		next[tx.ID] = tx
	}

	e.mu.Lock()
	e.transactions = next
	e.mu.Unlock()
	return nil
}

// Get はローカル投影からトランザクションを取得する。
func (e *Engine) Get(id string) (Transaction, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tx, ok := e.transactions[id]
	return tx, ok
}

// List はローカル投影のトランザクション一覧をID順で返す。
func (e *Engine) List(filter ...Status) []Transaction {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := make([]Transaction, 0, len(e.transactions))
	for _, tx := range e.transactions {
		if len(filter) > 0 && tx.Status != filter[0] {
			continue
		}
		list = append(list, tx)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Verify はトランザクションの入金を確認済みにする。pending状態でのみ許可される。
func (e *Engine) Verify(ctx context.Context, id string) (Transaction, error) {
	return e.transition(ctx, id, "verify")
}

// Reject はトランザクションを無効と判定する。pending状態でのみ許可される。
// 証言と異なり、寄付の否認はバックエンドにエンドポイントが存在する。
func (e *Engine) Reject(ctx context.Context, id string) (Transaction, error) {
	return e.transition(ctx, id, "reject")
}

// transition は遷移の共通処理。終端状態はリモート呼び出しなしで拒否し、
// 失敗した呼び出しでは投影を変更しない。
func (e *Engine) transition(ctx context.Context, id, action string) (Transaction, error) {
	e.mu.RLock()
	tx, ok := e.transactions[id]
	e.mu.RUnlock()

	if !ok {
		return Transaction{}, fmt.Errorf("%w: id=%s", ErrNotFound, id)
	}
	if tx.Status.Terminal() {
		return Transaction{}, &TransitionError{ID: id, From: tx.Status, Action: action}
	}

	var result Transaction
	if err := e.client.PostJSON(ctx, basePath+"/"+id+"/"+action, nil, &result); err != nil {
		return Transaction{}, fmt.Errorf("トランザクション %s の遷移 %s に失敗: %w", id, action, err)
	}

	e.mu.Lock()
	e.transactions[result.ID] = result
	e.mu.Unlock()
	return result, nil
}
