package store_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"projecthub.app/server/internal/model"
	"projecthub.app/server/internal/store"
)

// fakeDB satisfies store.DBTX with canned rows, one per QueryRow call.
type fakeDB struct {
	rows  []pgx.Row
	calls []string
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, sql)
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

// activityRow scans a fixed record into the destinations, or fails.
type activityRow struct {
	rec *model.ActivityRecord
	err error
}

func (r activityRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.rec.ID
	*(dest[1].(*int64)) = r.rec.ProjectID
	*(dest[2].(*string)) = r.rec.ExternalEventID
	*(dest[3].(*model.EventKind)) = r.rec.EventKind
	*(dest[4].(**string)) = r.rec.Action
	*(dest[5].(*string)) = r.rec.ActorUsername
	*(dest[6].(*string)) = r.rec.ActorAvatarURL
	*(dest[7].(*string)) = r.rec.Summary
	*(dest[8].(*string)) = r.rec.TargetURL
	*(dest[9].(*time.Time)) = r.rec.OccurredAt
	*(dest[10].(*time.Time)) = r.rec.CreatedAt
	return nil
}

var _ = Describe("ActivityStore", func() {
	var (
		ctx context.Context
		db  *fakeDB
	)

	record := &model.ActivityRecord{
		ID:              101,
		ProjectID:       42,
		ExternalEventID: "delivery-1",
		EventKind:       model.EventKindPush,
		Summary:         "2 commits pushed to main",
		OccurredAt:      time.Now().UTC(),
	}

	BeforeEach(func() {
		ctx = context.Background()
		db = &fakeDB{}
	})

	Describe("CreateOrGet", func() {
		It("reports a stored row as created", func() {
			db.rows = []pgx.Row{activityRow{rec: record}}

			saved, created, err := store.NewStores(db).Activity().CreateOrGet(ctx, record)

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(saved.ID).To(Equal(int64(101)))
			Expect(db.calls).To(HaveLen(1))
		})

		It("falls back to the winning row when the insert is absorbed", func() {
			db.rows = []pgx.Row{
				activityRow{err: pgx.ErrNoRows},
				activityRow{rec: record},
			}

			saved, created, err := store.NewStores(db).Activity().CreateOrGet(ctx, record)

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(saved.ExternalEventID).To(Equal("delivery-1"))
			Expect(db.calls).To(HaveLen(2))
			Expect(strings.ToUpper(db.calls[1])).To(ContainSubstring("SELECT"))
		})

		It("treats a racing unique violation as a duplicate delivery", func() {
			db.rows = []pgx.Row{
				activityRow{err: &pgconn.PgError{Code: "23505"}},
				activityRow{rec: record},
			}

			saved, created, err := store.NewStores(db).Activity().CreateOrGet(ctx, record)

			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(saved.ID).To(Equal(int64(101)))
		})

		It("propagates other database errors", func() {
			db.rows = []pgx.Row{activityRow{err: &pgconn.PgError{Code: "53300"}}}

			_, _, err := store.NewStores(db).Activity().CreateOrGet(ctx, record)

			Expect(err).To(HaveOccurred())
			Expect(db.calls).To(HaveLen(1))
		})
	})

	Describe("IsUniqueViolation", func() {
		It("matches SQLSTATE 23505 even when wrapped", func() {
			wrapped := errors.Join(errors.New("insert failed"), &pgconn.PgError{Code: "23505"})
			Expect(store.IsUniqueViolation(wrapped)).To(BeTrue())
		})

		It("rejects everything else", func() {
			Expect(store.IsUniqueViolation(errors.New("boom"))).To(BeFalse())
			Expect(store.IsUniqueViolation(&pgconn.PgError{Code: "53300"})).To(BeFalse())
		})
	})
})
