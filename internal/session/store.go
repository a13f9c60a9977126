package session

import "sync"

// Store は現在のセッションをプロセスメモリ上に保持するホルダー。
// グローバル変数ではなく、ゲートウェイ呼び出しを行う各コンポーネントへ
// コンストラクタ経由で注入する。1セッションにつき書き込みは単一主体のみで、
// タブをまたいだ同期は行わない。
type Store struct {
	// mu はcurrentへのアクセスを保護する。
	mu sync.RWMutex
	// current は現在のセッション。未認証の場合はnil。
	current *Session
}

// NewStore は空のセッションホルダーを生成する。
func NewStore() *Store {
	return &Store{}
}

// Set は現在のセッションを置き換える。
// whoAmIの成功応答でのみ呼び出されることを想定している。
func (s *Store) Set(sess *Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

// Get は現在のセッションを返す。未認証の場合はnilを返す。
func (s *Store) Get() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Credential は現在のベアラー資格情報を返す。未認証の場合は空文字列を返す。
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Credential
}

// Clear はセッションを破棄する。ログアウトおよび資格情報拒否の際に呼び出す。
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
