package books_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/graduation-masterpiece/demo-repository/internal/data/repos/books"
	"github.com/graduation-masterpiece/demo-repository/internal/data/repos/testutil"
	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
)

func TestBookRecordRepoCreateIfAbsent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := books.NewBookRecordRepo(db, testutil.Logger(t))

	first := &types.BookRecord{ISBN: "978-1", Title: "Example"}
	created, err := repo.CreateIfAbsent(ctx, nil, first)
	if err != nil || !created {
		t.Fatalf("CreateIfAbsent first: created=%v err=%v", created, err)
	}
	if first.ID == uuid.Nil || first.CardStatus != types.CardStatusPending {
		t.Fatalf("expected id and pending status, got %+v", first)
	}

	dup := &types.BookRecord{ISBN: "978-1", Title: "Other"}
	created, err = repo.CreateIfAbsent(ctx, nil, dup)
	if err != nil || created {
		t.Fatalf("CreateIfAbsent dup: created=%v err=%v", created, err)
	}

	got, err := repo.GetByISBN(ctx, nil, "978-1")
	if err != nil || got == nil || got.ID != first.ID || got.Title != "Example" {
		t.Fatalf("GetByISBN: got=%+v err=%v", got, err)
	}
}

func TestBookRecordRepoConcurrentCreateSingleWinner(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := books.NewBookRecordRepo(db, testutil.Logger(t))

	const writers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := repo.CreateIfAbsent(ctx, nil, &types.BookRecord{ISBN: "978-race", Title: "Race"})
			if err != nil {
				t.Errorf("CreateIfAbsent: %v", err)
				return
			}
			if created {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	var n int64
	if err := db.Model(&types.BookRecord{}).Where("isbn = ?", "978-race").Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("rows=%d err=%v", n, err)
	}
}

func TestBookRecordRepoClaimForGeneration(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := books.NewBookRecordRepo(db, testutil.Logger(t))

	failed := testutil.SeedBook(t, ctx, db, "978-failed", types.CardStatusFailed)
	fresh := testutil.SeedBook(t, ctx, db, "978-fresh", types.CardStatusPending)
	ready := testutil.SeedBook(t, ctx, db, "978-ready", types.CardStatusReady)
	staleBefore := time.Now().Add(-10 * time.Minute)

	ok, err := repo.ClaimForGeneration(ctx, nil, failed.ID, staleBefore)
	if err != nil || !ok {
		t.Fatalf("claim failed record: ok=%v err=%v", ok, err)
	}
	ok, err = repo.ClaimForGeneration(ctx, nil, failed.ID, staleBefore)
	if err != nil || ok {
		t.Fatalf("second claim should lose: ok=%v err=%v", ok, err)
	}
	if ok, _ := repo.ClaimForGeneration(ctx, nil, fresh.ID, staleBefore); ok {
		t.Fatalf("fresh pending record must not be claimable")
	}
	if ok, _ := repo.ClaimForGeneration(ctx, nil, ready.ID, staleBefore); ok {
		t.Fatalf("ready record must not be claimable")
	}

	if err := db.Model(&types.BookRecord{}).Where("id = ?", fresh.ID).
		UpdateColumn("updated_at", time.Now().UTC().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("age record: %v", err)
	}
	if ok, err := repo.ClaimForGeneration(ctx, nil, fresh.ID, staleBefore); err != nil || !ok {
		t.Fatalf("stale pending record should be claimable: ok=%v err=%v", ok, err)
	}
}

func TestBookRecordRepoMarkFailedAndReady(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := books.NewBookRecordRepo(db, testutil.Logger(t))
	b := testutil.SeedBook(t, ctx, db, "978-mark", types.CardStatusPending)

	if err := repo.MarkFailed(ctx, nil, b.ID, "illustrate", "image api returned 500"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, _ := repo.GetByID(ctx, nil, b.ID)
	if got.CardStatus != types.CardStatusFailed || got.FailedStage != "illustrate" {
		t.Fatalf("after MarkFailed: %+v", got)
	}
	if err := repo.MarkReady(ctx, nil, b.ID); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}
	got, _ = repo.GetByID(ctx, nil, b.ID)
	if got.CardStatus != types.CardStatusReady || got.FailedStage != "" || got.FailureReason != "" {
		t.Fatalf("after MarkReady: %+v", got)
	}

	if err := repo.MarkFailed(ctx, nil, b.ID, "persist", "late duplicate"); err != nil {
		t.Fatalf("MarkFailed on ready: %v", err)
	}
	got, _ = repo.GetByID(ctx, nil, b.ID)
	if got.CardStatus != types.CardStatusReady {
		t.Fatalf("ready record was demoted: %+v", got)
	}
}

func TestBookRecordRepoListReadyViews(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := books.NewBookRecordRepo(db, testutil.Logger(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a, _ := testutil.SeedReadyBook(t, ctx, db, "978-a", 5, base)
	b, _ := testutil.SeedReadyBook(t, ctx, db, "978-b", 9, base.Add(time.Hour))
	c, _ := testutil.SeedReadyBook(t, ctx, db, "978-c", 1, base.Add(2*time.Hour))
	testutil.SeedBook(t, ctx, db, "978-pending", types.CardStatusPending)

	cases := []struct {
		sort string
		want []uuid.UUID
	}{
		{sort: types.SortDefault, want: []uuid.UUID{a.ID, b.ID, c.ID}},
		{sort: types.SortLatest, want: []uuid.UUID{c.ID, b.ID, a.ID}},
		{sort: types.SortLikes, want: []uuid.UUID{b.ID, a.ID, c.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.sort, func(t *testing.T) {
			views, err := repo.ListReadyViews(ctx, nil, tc.sort, 0, 10)
			if err != nil || len(views) != len(tc.want) {
				t.Fatalf("ListReadyViews: err=%v len=%d", err, len(views))
			}
			for i, v := range views {
				if v.ID != tc.want[i] {
					t.Fatalf("position %d: got %s want %s", i, v.ID, tc.want[i])
				}
			}
		})
	}

	page, err := repo.ListReadyViews(ctx, nil, types.SortDefault, 2, 2)
	if err != nil || len(page) != 1 || page[0].ID != c.ID {
		t.Fatalf("second page: err=%v len=%d", err, len(page))
	}
	if len(page[0].Summary) != 2 || page[0].ImageURL == "" {
		t.Fatalf("view missing card fields: %+v", page[0])
	}

	n, err := repo.CountReady(ctx, nil)
	if err != nil || n != 3 {
		t.Fatalf("CountReady: n=%d err=%v", n, err)
	}
}

func TestBookRecordRepoGetViewWithoutCard(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := books.NewBookRecordRepo(db, testutil.Logger(t))
	b := testutil.SeedBook(t, ctx, db, "978-nocard", types.CardStatusFailed)

	v, err := repo.GetView(ctx, nil, b.ID)
	if err != nil || v == nil {
		t.Fatalf("GetView: v=%v err=%v", v, err)
	}
	if v.ImageURL != "" || len(v.Summary) != 0 || v.Likes != 0 || v.CardStatus != types.CardStatusFailed {
		t.Fatalf("unexpected view %+v", v)
	}
	missing, err := repo.GetView(ctx, nil, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("missing view: v=%v err=%v", missing, err)
	}
}
