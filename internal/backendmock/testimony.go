package backendmock

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/hopehub/pkg/middleware"
)

// 証言のモデレーション状態（ワイヤー上の値）。
const (
	statusReceived  = "received"
	statusInReview  = "in_review"
	statusValidated = "validated"
	statusRejected  = "rejected"
	statusScheduled = "scheduled"
)

// testimonyTransitions は操作ごとに遷移可能な起点状態を宣言する正本の遷移表。
// 否認（reject）の遷移は契約上存在しない。
var testimonyTransitions = map[string][]string{
	"read":     {statusReceived},
	"validate": {statusReceived, statusInReview},
	"schedule": {statusReceived, statusInReview, statusValidated},
}

// transitionAllowed は状態fromから操作actionが許可されているかを判定する。
func transitionAllowed(action, from string) bool {
	for _, s := range testimonyTransitions[action] {
		if s == from {
			return true
		}
	}
	return false
}

// testimonyResponse は証言のJSONレスポンス構造。
type testimonyResponse struct {
	// ID は証言の一意識別子。
	ID string `json:"id"`
	// MediaType はメディア種別。
	MediaType string `json:"media_type"`
	// AuthorName は投稿者の表示名。
	AuthorName string `json:"author_name,omitempty"`
	// Status はモデレーション状態。
	Status string `json:"status"`
	// ScheduledFor は公開予定日時（RFC3339形式）。
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	// ReviewerID は査読担当者のID。
	ReviewerID string `json:"reviewer_id,omitempty"`
	// CreatedAt は作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
}

// toTestimonyResponse はDB行をJSONレスポンスに変換する。
func toTestimonyResponse(t TestimonyRow) testimonyResponse {
	return testimonyResponse{
		ID:           t.ID,
		MediaType:    t.MediaType,
		AuthorName:   t.AuthorName,
		Status:       t.Status,
		ScheduledFor: t.ScheduledFor,
		ReviewerID:   t.ReviewerID,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
}

// submitTestimonyRequest は公開投稿リクエストのJSON構造。
type submitTestimonyRequest struct {
	// MediaType はメディア種別。
	MediaType string `json:"media_type" binding:"required,oneof=video audio written"`
	// AuthorName は投稿者の表示名。
	AuthorName string `json:"author_name"`
}

// handleSubmitTestimony は公開サイトからの証言投稿を受け付けるハンドラを返す。
// 投稿された証言は必ずreceived状態から始まる。
func (s *Server) handleSubmitTestimony() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitTestimonyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		now := time.Now().UTC()
		row := TestimonyRow{
			ID:         uuid.New().String(),
			MediaType:  req.MediaType,
			AuthorName: req.AuthorName,
			Status:     statusReceived,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := s.store.CreateTestimony(c.Request.Context(), row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "証言の登録に失敗しました"})
			log.Printf("証言登録エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toTestimonyResponse(row))
	}
}

// handleListTestimonies は証言一覧を返すハンドラを返す。
// クエリパラメータstatusで状態の絞り込みができる。
func (s *Server) handleListTestimonies() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.store.ListTestimonies(c.Request.Context(), c.Query("status"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "証言一覧の取得に失敗しました"})
			log.Printf("証言一覧取得エラー: %v", err)
			return
		}

		responses := make([]testimonyResponse, 0, len(list))
		for _, t := range list {
			responses = append(responses, toTestimonyResponse(t))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleMarkTestimonyRead は証言を開封するハンドラを返す。received → in_review。
func (s *Server) handleMarkTestimonyRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.applyTestimonyTransition(c, "read", statusInReview, nil)
	}
}

// handleValidateTestimony は証言を公開可能と判定するハンドラを返す。→ validated。
func (s *Server) handleValidateTestimony() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.applyTestimonyTransition(c, "validate", statusValidated, nil)
	}
}

// scheduleTestimonyRequest は公開日時確定リクエストのJSON構造。
type scheduleTestimonyRequest struct {
	// ScheduledFor は公開予定日時（ISO-8601形式）。
	ScheduledFor time.Time `json:"scheduledFor" binding:"required"`
}

// handleScheduleTestimony は証言の公開日時を確定するハンドラを返す。→ scheduled。
// 公開予定日時が未来でない場合は422を返す。この検査が正本であり、
// クライアント側の事前検査とは独立に常に行われる。
func (s *Server) handleScheduleTestimony() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scheduleTestimonyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		if !req.ScheduledFor.After(time.Now()) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "公開予定日時は未来の日時を指定してください"})
			return
		}

		at := req.ScheduledFor.UTC()
		s.applyTestimonyTransition(c, "schedule", statusScheduled, &at)
	}
}

// applyTestimonyTransition は証言の状態遷移の共通処理。
// 遷移表の検査、状態更新、監査イベントの追記を行い、更新後の証言を返す。
func (s *Server) applyTestimonyTransition(c *gin.Context, action, toStatus string, scheduledFor *time.Time) {
	id := c.Param("id")

	row, err := s.store.GetTestimony(c.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "証言が見つかりません"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "証言の取得に失敗しました"})
		log.Printf("証言取得エラー: %v", err)
		return
	}

	if !transitionAllowed(action, row.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("状態 %s からは遷移できません", row.Status),
		})
		return
	}

	actorID := middleware.GetUserID(c)
	if err := s.store.UpdateTestimonyStatus(c.Request.Context(), id, toStatus, scheduledFor, actorID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "証言の状態更新に失敗しました"})
		log.Printf("証言状態更新エラー: %v", err)
		return
	}

	if err := s.store.AppendModerationEvent(c.Request.Context(), EventRow{
		ID:          uuid.New().String(),
		TestimonyID: id,
		Action:      action,
		FromStatus:  row.Status,
		ToStatus:    toStatus,
		ActorID:     actorID,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		// 監査ログの失敗は遷移自体を巻き戻さない
		log.Printf("監査イベント追記エラー: %v", err)
	}

	row.Status = toStatus
	row.ScheduledFor = scheduledFor
	row.ReviewerID = actorID
	c.JSON(http.StatusOK, toTestimonyResponse(row))
}
