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
)

// 寄付トランザクションの検証状態（ワイヤー上の値）。
const (
	donationPending  = "pending"
	donationVerified = "verified"
	donationRejected = "rejected"
)

// donationResponse は寄付トランザクションのJSONレスポンス構造。
type donationResponse struct {
	// ID はトランザクションの一意識別子。
	ID string `json:"id"`
	// Amount は寄付額（最小通貨単位）。
	Amount int64 `json:"amount"`
	// Currency は通貨コード（ISO 4217）。
	Currency string `json:"currency"`
	// DonorEmail は寄付者のメールアドレス。
	DonorEmail string `json:"donor_email"`
	// Status は検証状態。
	Status string `json:"status"`
	// CreatedAt は作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
}

// toDonationResponse はDB行をJSONレスポンスに変換する。
func toDonationResponse(d DonationRow) donationResponse {
	return donationResponse{
		ID:         d.ID,
		Amount:     d.Amount,
		Currency:   d.Currency,
		DonorEmail: d.DonorEmail,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
	}
}

// initiateDonationRequest は寄付開始リクエストのJSON構造。
// 決済プロバイダとのやり取りは対象外であり、このモックは開始契約のみを受け付ける。
type initiateDonationRequest struct {
	// Amount は寄付額（最小通貨単位）。
	Amount int64 `json:"amount" binding:"required,gt=0"`
	// Currency は通貨コード。
	Currency string `json:"currency" binding:"required"`
	// DonorEmail は寄付者のメールアドレス。
	DonorEmail string `json:"donor_email" binding:"required,email"`
}

// handleInitiateDonation は寄付開始を受け付けるハンドラを返す。
// 作成されたトランザクションは必ずpending状態から始まる。
func (s *Server) handleInitiateDonation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req initiateDonationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		row := DonationRow{
			ID:         uuid.New().String(),
			Amount:     req.Amount,
			Currency:   req.Currency,
			DonorEmail: req.DonorEmail,
			Status:     donationPending,
			CreatedAt:  time.Now().UTC(),
		}

		if err := s.store.CreateDonation(c.Request.Context(), row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "寄付の登録に失敗しました"})
			log.Printf("寄付登録エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toDonationResponse(row))
	}
}

// handleListDonations は寄付一覧を返すハンドラを返す。
func (s *Server) handleListDonations() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := s.store.ListDonations(c.Request.Context(), c.Query("status"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "寄付一覧の取得に失敗しました"})
			log.Printf("寄付一覧取得エラー: %v", err)
			return
		}

		responses := make([]donationResponse, 0, len(list))
		for _, d := range list {
			responses = append(responses, toDonationResponse(d))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleVerifyDonation は寄付を入金確認済みにするハンドラを返す。
func (s *Server) handleVerifyDonation() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.applyDonationTransition(c, donationVerified)
	}
}

// handleRejectDonation は寄付を無効と判定するハンドラを返す。
func (s *Server) handleRejectDonation() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.applyDonationTransition(c, donationRejected)
	}
}

// applyDonationTransition は寄付の状態遷移の共通処理。
// pending以外（終端状態）からの遷移は409で拒否する。
func (s *Server) applyDonationTransition(c *gin.Context, toStatus string) {
	id := c.Param("id")

	row, err := s.store.GetDonation(c.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "トランザクションが見つかりません"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "トランザクションの取得に失敗しました"})
		log.Printf("寄付取得エラー: %v", err)
		return
	}

	if row.Status != donationPending {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("状態 %s からは遷移できません", row.Status),
		})
		return
	}

	if err := s.store.UpdateDonationStatus(c.Request.Context(), id, toStatus); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "トランザクションの状態更新に失敗しました"})
		log.Printf("寄付状態更新エラー: %v", err)
		return
	}

	row.Status = toStatus
	c.JSON(http.StatusOK, toDonationResponse(row))
}
