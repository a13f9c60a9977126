package backendmock

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeFormat は永続化する日時のフォーマット。
const timeFormat = time.RFC3339

// Store はモックバックエンドのSQLite永続化層。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewStore は新しい永続化層を生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// TestimonyRow は証言のDB行。
type TestimonyRow struct {
	// ID は証言の一意識別子。
	ID string
	// MediaType はメディア種別。
	MediaType string
	// AuthorName は投稿者の表示名。
	AuthorName string
	// Status はモデレーション状態。
	Status string
	// ScheduledFor は公開予定日時。未設定の場合はnil。
	ScheduledFor *time.Time
	// ReviewerID は査読担当者のID。未査読の場合は空文字列。
	ReviewerID string
	// CreatedAt は作成日時。
	CreatedAt time.Time
	// UpdatedAt は更新日時。
	UpdatedAt time.Time
}

// DonationRow は寄付トランザクションのDB行。
type DonationRow struct {
	// ID はトランザクションの一意識別子。
	ID string
	// Amount は寄付額（最小通貨単位）。
	Amount int64
	// Currency は通貨コード。
	Currency string
	// DonorEmail は寄付者のメールアドレス。
	DonorEmail string
	// Status は検証状態。
	Status string
	// CreatedAt は作成日時。
	CreatedAt time.Time
}

// EventRow はモデレーション監査イベントのDB行。
type EventRow struct {
	// ID はイベントの一意識別子。
	ID string
	// TestimonyID は対象の証言ID。
	TestimonyID string
	// Action は実行された操作。
	Action string
	// FromStatus は遷移前の状態。
	FromStatus string
	// ToStatus は遷移後の状態。
	ToStatus string
	// ActorID は操作を行ったユーザーのID。
	ActorID string
	// CreatedAt は記録日時。
	CreatedAt time.Time
}

// CreateTestimony は証言を新規作成する。
func (s *Store) CreateTestimony(ctx context.Context, row TestimonyRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO testimonies (id, media_type, author_name, status, reviewer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.MediaType, row.AuthorName, row.Status, row.ReviewerID,
		row.CreatedAt.UTC().Format(timeFormat), row.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("証言の作成に失敗: %w", err)
	}
	return nil
}

// GetTestimony は証言をIDで取得する。存在しない場合はsql.ErrNoRowsを返す。
func (s *Store) GetTestimony(ctx context.Context, id string) (TestimonyRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, media_type, author_name, status, scheduled_for, reviewer_id, created_at, updated_at
		FROM testimonies WHERE id = ?`, id)
	return scanTestimony(row)
}

// ListTestimonies は証言一覧を作成日時順で返す。statusが空でなければ絞り込む。
func (s *Store) ListTestimonies(ctx context.Context, status string) ([]TestimonyRow, error) {
	query := `
		SELECT id, media_type, author_name, status, scheduled_for, reviewer_id, created_at, updated_at
		FROM testimonies`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("証言一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []TestimonyRow
	for rows.Next() {
		t, err := scanTestimony(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// UpdateTestimonyStatus は証言の状態・公開予定日時・査読者を更新する。
func (s *Store) UpdateTestimonyStatus(ctx context.Context, id, status string, scheduledFor *time.Time, reviewerID string) error {
	var scheduled any
	if scheduledFor != nil {
		scheduled = scheduledFor.UTC().Format(timeFormat)
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE testimonies
		SET status = ?, scheduled_for = ?, reviewer_id = ?, updated_at = ?
		WHERE id = ?`,
		status, scheduled, reviewerID, time.Now().UTC().Format(timeFormat), id,
	)
	if err != nil {
		return fmt.Errorf("証言の状態更新に失敗: %w", err)
	}
	return nil
}

// CountTestimoniesByStatus は状態ごとの証言件数を返す。
func (s *Store) CountTestimoniesByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM testimonies GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("証言件数の集計に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CreateDonation は寄付トランザクションを新規作成する。
func (s *Store) CreateDonation(ctx context.Context, row DonationRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donations (id, amount, currency, donor_email, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		row.ID, row.Amount, row.Currency, row.DonorEmail, row.Status,
		row.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("寄付の作成に失敗: %w", err)
	}
	return nil
}

// GetDonation は寄付トランザクションをIDで取得する。
func (s *Store) GetDonation(ctx context.Context, id string) (DonationRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, amount, currency, donor_email, status, created_at
		FROM donations WHERE id = ?`, id)
	return scanDonation(row)
}

// ListDonations は寄付一覧を作成日時順で返す。statusが空でなければ絞り込む。
func (s *Store) ListDonations(ctx context.Context, status string) ([]DonationRow, error) {
	query := "SELECT id, amount, currency, donor_email, status, created_at FROM donations"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("寄付一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []DonationRow
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// UpdateDonationStatus は寄付トランザクションの状態を更新する。
func (s *Store) UpdateDonationStatus(ctx context.Context, id, status string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE donations SET status = ? WHERE id = ?", status, id); err != nil {
		return fmt.Errorf("寄付の状態更新に失敗: %w", err)
	}
	return nil
}

// CountDonationsByStatus は状態ごとの寄付件数を返す。
func (s *Store) CountDonationsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM donations GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("寄付件数の集計に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// AppendModerationEvent はモデレーション操作を監査ログに追記する。
func (s *Store) AppendModerationEvent(ctx context.Context, row EventRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moderation_events (id, testimony_id, action, from_status, to_status, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.TestimonyID, row.Action, row.FromStatus, row.ToStatus, row.ActorID,
		row.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("監査イベントの追記に失敗: %w", err)
	}
	return nil
}

// ListModerationEvents は指定した証言の監査イベントを記録順で返す。
func (s *Store) ListModerationEvents(ctx context.Context, testimonyID string) ([]EventRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, testimony_id, action, from_status, to_status, actor_id, created_at
		FROM moderation_events WHERE testimony_id = ? ORDER BY created_at, id`, testimonyID)
	if err != nil {
		return nil, fmt.Errorf("監査イベントの取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []EventRow
	for rows.Next() {
		var e EventRow
		var createdAt string
		if err := rows.Scan(&e.ID, &e.TestimonyID, &e.Action, &e.FromStatus, &e.ToStatus, &e.ActorID, &createdAt); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("記録日時の解析に失敗: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// scanner はsql.Rowとsql.Rowsの共通インターフェース。
type scanner interface {
	Scan(dest ...any) error
}

// scanTestimony は1行を証言に変換する。日時列の解析失敗はScan失敗と
// 同様にエラーとして返し、ゼロ値のまま握り潰さない。
func scanTestimony(row scanner) (TestimonyRow, error) {
	var t TestimonyRow
	var scheduled sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.MediaType, &t.AuthorName, &t.Status, &scheduled, &t.ReviewerID, &createdAt, &updatedAt); err != nil {
		return TestimonyRow{}, err
	}
	if scheduled.Valid {
		at, err := time.Parse(timeFormat, scheduled.String)
		if err != nil {
			return TestimonyRow{}, fmt.Errorf("公開予定日時の解析に失敗: %w", err)
		}
		t.ScheduledFor = &at
	}
	var err error
	if t.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return TestimonyRow{}, fmt.Errorf("作成日時の解析に失敗: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return TestimonyRow{}, fmt.Errorf("更新日時の解析に失敗: %w", err)
	}
	return t, nil
}

// scanDonation は1行を寄付トランザクションに変換する。
func scanDonation(row scanner) (DonationRow, error) {
	var d DonationRow
	var createdAt string
	if err := row.Scan(&d.ID, &d.Amount, &d.Currency, &d.DonorEmail, &d.Status, &createdAt); err != nil {
		return DonationRow{}, err
	}
	var err error
	if d.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return DonationRow{}, fmt.Errorf("作成日時の解析に失敗: %w", err)
	}
	return d, nil
}
