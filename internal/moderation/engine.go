package moderation

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/nao1215/hopehub/pkg/httpclient"
)

// basePath はゲートウェイ経由の証言モデレーションAPIのベースパス。
const basePath = "/proxy/admin/testimonies"

// Engine は証言のモデレーション状態遷移を駆動するエンジン。
// 遷移ごとに1回のリモート呼び出しを発行し、サーバーが実際に返した状態を
// 投影に反映する（意図した状態を先回りして反映することはない）。
// 失敗した遷移は再試行されず、投影は変更されない。
type Engine struct {
	// client はゲートウェイへのHTTPクライアント。セッション資格情報は
	// コンストラクタ注入されたクライアントが付与する。
	client *httpclient.Client
	// mu はtestimoniesへのアクセスを保護する。
	mu sync.RWMutex
	// testimonies はIDをキーとするローカル投影。
	testimonies map[string]Testimony
}

// NewEngine は新しいモデレーションエンジンを生成する。
// clientにはゲートウェイを指すhttpclient.Clientを渡す。
func NewEngine(client *httpclient.Client) *Engine {
	return &Engine{
		client:      client,
		testimonies: make(map[string]Testimony),
	}
}

// Reload はバックエンドから証言一覧を取得し、ローカル投影を丸ごと置き換える。
// ローカル限定のソフト否認（SoftRejected）もここでサーバー側の正本に戻る。
func (e *Engine) Reload(ctx context.Context) error {
	var list []Testimony
	if err := e.client.GetJSON(ctx, basePath, &list); err != nil {
		return fmt.Errorf("証言一覧の取得に失敗: %w", err)
	}

	next := make(map[string]Testimony, len(list))
	for _, tm := range list {
		next[tm.ID] = tm
	}

	e.mu.Lock()
	e.testimonies = next
	e.mu.Unlock()
	return nil
}

// FetchByStatus は指定状態の証言一覧をバックエンドから取得する。
// タブ表示用の読み取り専用クエリであり、ローカル投影は変更しない。
func (e *Engine) FetchByStatus(ctx context.Context, status Status) ([]Testimony, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("未知の状態 %q", status)}
	}

	path := basePath + "?status=" + url.QueryEscape(string(status))
	var list []Testimony
	if err := e.client.GetJSON(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("状態 %s の証言一覧の取得に失敗: %w", status, err)
	}
	return list, nil
}

// Get はローカル投影から証言を取得する。
func (e *Engine) Get(id string) (Testimony, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tm, ok := e.testimonies[id]
	return tm, ok
}

// List はローカル投影の証言一覧をID順で返す。
// filterに状態を渡すとその状態の証言のみを返す。
func (e *Engine) List(filter ...Status) []Testimony {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := make([]Testimony, 0, len(e.testimonies))
	for _, tm := range e.testimonies {
		if len(filter) > 0 && tm.Status != filter[0] {
			continue
		}
		list = append(list, tm)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// MarkRead は証言を開封し査読中に遷移させる。received状態でのみ許可される。
func (e *Engine) MarkRead(ctx context.Context, id string) (Testimony, error) {
	return e.transition(ctx, id, ActionMarkRead, func(ctx context.Context) (Testimony, error) {
		var result Testimony
		err := e.client.PostJSON(ctx, basePath+"/"+id+"/read", nil, &result)
		return result, err
	})
}

// Validate は証言を公開可能と判定する。received/in_review状態でのみ許可される。
func (e *Engine) Validate(ctx context.Context, id string) (Testimony, error) {
	return e.transition(ctx, id, ActionValidate, func(ctx context.Context) (Testimony, error) {
		var result Testimony
		err := e.client.PostJSON(ctx, basePath+"/"+id+"/validate", nil, &result)
		return result, err
	})
}

// scheduleRequest は公開日時確定リクエストのJSON構造。
type scheduleRequest struct {
	// ScheduledFor は公開予定日時（ISO-8601形式）。
	ScheduledFor time.Time `json:"scheduledFor"`
}

// Schedule は証言の公開日時を確定する。atは未来の日時でなければならず、
// 過去または現在の日時はリモート呼び出しを発行せずに拒否される。
// 同じ制約はバックエンド側でも正本として検証される。
func (e *Engine) Schedule(ctx context.Context, id string, at time.Time) (Testimony, error) {
	if !at.After(time.Now()) {
		return Testimony{}, &ValidationError{Field: "scheduledFor", Reason: "未来の日時を指定してください"}
	}

	return e.transition(ctx, id, ActionSchedule, func(ctx context.Context) (Testimony, error) {
		var result Testimony
		err := e.client.PostJSON(ctx, basePath+"/"+id+"/schedule", scheduleRequest{ScheduledFor: at}, &result)
		return result, err
	})
}

// Reject は証言をローカル投影上でのみrejectedにする。
//
// バックエンドの契約には否認の遷移エンドポイントが存在しないため、この操作は
// リモート呼び出しを伴わないソフトステートである。SoftRejectedフラグで
// 明示的に印を付け、次のReloadで必ずサーバー側の正本に置き換わる。
func (e *Engine) Reject(id string) (Testimony, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tm, ok := e.testimonies[id]
	if !ok {
		return Testimony{}, fmt.Errorf("%w: id=%s", ErrNotFound, id)
	}
	if !allowed(ActionReject, tm.Status) {
		return Testimony{}, &TransitionError{ID: id, From: tm.Status, Action: ActionReject}
	}

	tm.Status = StatusRejected
	tm.SoftRejected = true
	e.testimonies[id] = tm
	return tm, nil
}

// transition は遷移の共通処理。遷移表による事前検査、リモート呼び出し、
// サーバー応答による投影更新の順に行う。呼び出しが失敗した場合は投影を
// 一切変更せずエラーを返す。
func (e *Engine) transition(ctx context.Context, id string, action Action, call func(context.Context) (Testimony, error)) (Testimony, error) {
	e.mu.RLock()
	tm, ok := e.testimonies[id]
	e.mu.RUnlock()

	if !ok {
		return Testimony{}, fmt.Errorf("%w: id=%s", ErrNotFound, id)
	}
	if !allowed(action, tm.Status) {
		return Testimony{}, &TransitionError{ID: id, From: tm.Status, Action: action}
	}

	result, err := call(ctx)
	if err != nil {
		return Testimony{}, fmt.Errorf("証言 %s の遷移 %s に失敗: %w", id, action, err)
	}

	// サーバーがエコーした状態のみを信頼して投影を更新する
	e.mu.Lock()
	e.testimonies[result.ID] = result
	e.mu.Unlock()
	return result, nil
}
