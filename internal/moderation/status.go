// Package moderation は証言（testimony）のモデレーションワークフローを駆動する
// クライアント側エンジンを提供する。
//
// エンジンはゲートウェイの /proxy を通じて状態遷移リクエストを発行し、
// サーバーが返した状態をローカル投影に反映する。状態の正本はバックエンドが
// 所有し、エンジンが保持するのは読み取り中心の投影にすぎない。
package moderation

import "time"

// Status は証言のモデレーション状態を表す。
type Status string

const (
	// StatusReceived は投稿直後の初期状態。
	StatusReceived Status = "received"
	// StatusInReview は査読者が開封済みの状態。
	StatusInReview Status = "in_review"
	// StatusValidated は公開可能と判定された状態。
	StatusValidated Status = "validated"
	// StatusRejected は掲載不可と判定された終端状態。
	StatusRejected Status = "rejected"
	// StatusScheduled は公開日時が確定した終端状態。
	StatusScheduled Status = "scheduled"
)

// Valid は既知の状態かどうかを判定する。
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusInReview, StatusValidated, StatusRejected, StatusScheduled:
		return true
	}
	return false
}

// Terminal はそれ以上の遷移が許されない終端状態かどうかを判定する。
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusScheduled
}

// MediaType は証言のメディア種別を表す。
type MediaType string

const (
	// MediaTypeVideo は動画による証言。
	MediaTypeVideo MediaType = "video"
	// MediaTypeAudio は音声による証言。
	MediaTypeAudio MediaType = "audio"
	// MediaTypeWritten は文章による証言。
	MediaTypeWritten MediaType = "written"
)

// Action は証言に対するモデレーション操作を表す。
type Action string

const (
	// ActionMarkRead は証言を開封し査読中にする操作。
	ActionMarkRead Action = "mark_read"
	// ActionValidate は証言を公開可能と判定する操作。
	ActionValidate Action = "validate"
	// ActionSchedule は公開日時を確定する操作。
	ActionSchedule Action = "schedule"
	// ActionReject は証言を掲載不可と判定する操作。
	ActionReject Action = "reject"
)

// transitions は操作ごとの遷移可能な起点状態を宣言する遷移表。
// ここに無い組み合わせの遷移はリモート呼び出しを発行せずに拒否される。
var transitions = map[Action][]Status{
	ActionMarkRead: {StatusReceived},
	ActionValidate: {StatusReceived, StatusInReview},
	ActionSchedule: {StatusReceived, StatusInReview, StatusValidated},
	ActionReject:   {StatusReceived, StatusInReview},
}

// allowed は状態fromから操作actionが許可されているかを判定する。
func allowed(action Action, from Status) bool {
	for _, s := range transitions[action] {
		if s == from {
			return true
		}
	}
	return false
}

// Testimony は証言のローカル投影。正本はバックエンドにあり、
// この構造体は直近のサーバー応答を写したものにすぎない。
type Testimony struct {
	// ID は証言の一意識別子。
	ID string `json:"id"`
	// MediaType は証言のメディア種別。
	MediaType MediaType `json:"media_type"`
	// Status は証言の現在状態。
	Status Status `json:"status"`
	// ScheduledFor は公開予定日時。scheduled状態でのみ設定される。
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	// ReviewerID は査読を担当したユーザーのID。
	ReviewerID string `json:"reviewer_id,omitempty"`
	// SoftRejected はバックエンドに遷移エンドポイントが存在しないために
	// ローカルでのみrejectedと記録されていることを示す。再読込で必ず
	// サーバー側の正本に置き換わる。
	SoftRejected bool `json:"-"`
}
