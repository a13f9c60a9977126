// Package donation は寄付トランザクションの検証ワークフローを駆動する
// クライアント側エンジンを提供する。
//
// 証言のモデレーションより小さい同型の状態機械であり、pending から
// verified または rejected へ一度だけ遷移する。決済処理そのものは
// 決済プロバイダとバックエンドが所有し、この層は中継しか行わない。
package donation

import (
	"errors"
	"fmt"
	"time"
)

// Status は寄付トランザクションの状態を表す。
type Status string

const (
	// StatusPending は入金確認待ちの初期状態。
	StatusPending Status = "pending"
	// StatusVerified は入金が確認された終端状態。
	StatusVerified Status = "verified"
	// StatusRejected は無効と判定された終端状態。
	StatusRejected Status = "rejected"
)

// Terminal はそれ以上の遷移が許されない終端状態かどうかを判定する。
func (s Status) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// Transaction は寄付トランザクションのローカル投影。正本はバックエンドが所有する。
type Transaction struct {
	// ID はトランザクションの一意識別子。
	ID string `json:"id"`
	// Amount は寄付額（最小通貨単位）。
	Amount int64 `json:"amount"`
	// Currency は通貨コード（ISO 4217）。
	Currency string `json:"currency"`
	// DonorEmail は寄付者のメールアドレス。
	DonorEmail string `json:"donor_email"`
	// Status はトランザクションの現在状態。
	Status Status `json:"status"`
	// CreatedAt はトランザクションの作成日時。
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound はローカル投影に対象のトランザクションが存在しないことを表す。
var ErrNotFound = errors.New("対象のトランザクションがローカル投影に存在しません")

// TransitionError は終端状態への操作など、許可されない遷移を表すエラー。
type TransitionError struct {
	// ID は対象のトランザクションID。
	ID string
	// From は操作時点の状態。
	From Status
	// Action は拒否された操作。
	Action string
}

// Error はerrorインターフェースを実装する。
func (e *TransitionError) Error() string {
	return fmt.Sprintf("状態 %s のトランザクション %s に操作 %s は適用できません", e.From, e.ID, e.Action)
}

// IsTransitionError はエラーが遷移拒否かどうかを判定する。
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
