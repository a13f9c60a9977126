package moderation

import (
	"errors"
	"fmt"
)

// ErrNotFound はローカル投影に対象の証言が存在しないことを表す。
var ErrNotFound = errors.New("対象の証言がローカル投影に存在しません")

// TransitionError は遷移表で許可されていない操作を表すエラー。
// リモート呼び出しが発行される前に検出され、投影は変更されない。
type TransitionError struct {
	// ID は対象の証言ID。
	ID string
	// From は操作時点の状態。
	From Status
	// Action は拒否された操作。
	Action Action
}

// Error はerrorインターフェースを実装する。
func (e *TransitionError) Error() string {
	return fmt.Sprintf("状態 %s の証言 %s に操作 %s は適用できません", e.From, e.ID, e.Action)
}

// ValidationError はリモート呼び出しの前段で検出された入力不備を表すエラー。
type ValidationError struct {
	// Field は不備のあったフィールド名。
	Field string
	// Reason は不備の内容。
	Reason string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("入力が不正です: %s: %s", e.Field, e.Reason)
}

// IsTransitionError はエラーが遷移拒否かどうかを判定する。
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsValidationError はエラーが入力不備かどうかを判定する。
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
