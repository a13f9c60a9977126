package backendmock

import (
	"context"
	"database/sql"
	"testing"

	"github.com/nao1215/hopehub/pkg/migration"
)

// newTestStore はインメモリSQLite上の永続化層を生成する。
func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("データベース接続に失敗: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := migration.Apply(db, migrationsFS, "migrations"); err != nil {
		t.Fatalf("スキーマ初期化に失敗: %v", err)
	}
	return NewStore(db), db
}

// TestScanRejectsCorruptTimestamps は日時列の解析失敗がエラーとして
// 返ることを検証する。ゼロ値のままレスポンスに流れてはならない。
func TestScanRejectsCorruptTimestamps(t *testing.T) {
	t.Parallel()

	t.Run("証言のcreated_atが壊れている場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		store, db := newTestStore(t)
		_, err := db.Exec(`
			INSERT INTO testimonies (id, media_type, author_name, status, reviewer_id, created_at, updated_at)
			VALUES ('t1', 'video', '', 'received', '', 'not-a-timestamp', 'not-a-timestamp')`)
		if err != nil {
			t.Fatalf("破損行の挿入に失敗: %v", err)
		}

		if _, err := store.GetTestimony(context.Background(), "t1"); err == nil {
			t.Error("破損した作成日時がエラーにならない")
		}
	})

	t.Run("証言のscheduled_forが壊れている場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		store, db := newTestStore(t)
		_, err := db.Exec(`
			INSERT INTO testimonies (id, media_type, author_name, status, scheduled_for, reviewer_id, created_at, updated_at)
			VALUES ('t1', 'video', '', 'scheduled', 'broken', '', '2026-08-28T00:00:00Z', '2026-08-28T00:00:00Z')`)
		if err != nil {
			t.Fatalf("破損行の挿入に失敗: %v", err)
		}

		if _, err := store.GetTestimony(context.Background(), "t1"); err == nil {
			t.Error("破損した公開予定日時がエラーにならない")
		}
	})

	t.Run("寄付のcreated_atが壊れている場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		store, db := newTestStore(t)
		_, err := db.Exec(`
			INSERT INTO donations (id, amount, currency, donor_email, status, created_at)
			VALUES ('d1', 1000, 'EUR', 'donor@example.com', 'pending', 'not-a-timestamp')`)
		if err != nil {
			t.Fatalf("破損行の挿入に失敗: %v", err)
		}

		if _, err := store.GetDonation(context.Background(), "d1"); err == nil {
			t.Error("破損した作成日時がエラーにならない")
		}
	})

	t.Run("監査イベントのcreated_atが壊れている場合はエラーになること", func(t *testing.T) {
		t.Parallel()

		store, db := newTestStore(t)
		_, err := db.Exec(`
			INSERT INTO moderation_events (id, testimony_id, action, from_status, to_status, actor_id, created_at)
			VALUES ('e1', 't1', 'read', 'received', 'in_review', 'u1', 'not-a-timestamp')`)
		if err != nil {
			t.Fatalf("破損行の挿入に失敗: %v", err)
		}

		if _, err := store.ListModerationEvents(context.Background(), "t1"); err == nil {
			t.Error("破損した記録日時がエラーにならない")
		}
	})
}
