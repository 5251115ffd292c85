// Package contract holds behaviour suites every RecordRepository implementation must pass.
package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
)

type RecordFactory func(t *testing.T) (repository.RecordRepository, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, records repository.RecordRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func pts(v int) *int { return &v }

// SampleRecord returns a complete four-player record.
func SampleRecord(date string) model.GameRecord {
	return model.GameRecord{
		Date:     date,
		Time:     "19:30",
		GameType: model.FourPlayerFull,
		Seats: []model.Seat{
			{PlayerName: "Aoi", FinalPoints: pts(42000)},
			{PlayerName: "Ren", FinalPoints: pts(31000)},
			{PlayerName: "Yui", FinalPoints: pts(18000)},
			{PlayerName: "Sora", FinalPoints: pts(9000)},
		},
		Notes: "test game",
	}
}

func assertSameRecord(t *testing.T, want, got model.GameRecord) {
	t.Helper()
	if got.Date != want.Date || got.Time != want.Time || got.GameType != want.GameType || got.Notes != want.Notes {
		t.Fatalf("record header mismatch: want %+v, got %+v", want, got)
	}
	wantSeats := occupied(want.Seats)
	gotSeats := occupied(got.Seats)
	if len(gotSeats) != len(wantSeats) {
		t.Fatalf("seat count mismatch: want %d, got %d", len(wantSeats), len(gotSeats))
	}
	for i := range wantSeats {
		w, g := wantSeats[i], gotSeats[i]
		if w.Name() != g.Name() {
			t.Fatalf("seat %d name: want %q, got %q", i, w.Name(), g.Name())
		}
		if (w.FinalPoints == nil) != (g.FinalPoints == nil) {
			t.Fatalf("seat %d points presence differs", i)
		}
		if w.FinalPoints != nil && *w.FinalPoints != *g.FinalPoints {
			t.Fatalf("seat %d points: want %d, got %d", i, *w.FinalPoints, *g.FinalPoints)
		}
	}
}

func occupied(seats []model.Seat) []model.Seat {
	out := make([]model.Seat, 0, len(seats))
	for _, s := range seats {
		if s.Occupied() {
			out = append(out, s)
		}
	}
	return out
}

func RunRecordRepositoryContract(t *testing.T, makeRepo RecordFactory) {
	t.Helper()

	t.Run("append_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		in := SampleRecord("2025-04-01")
		created, err := repo.Append(ctx, "season1", in)
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if created.Row <= 0 {
			t.Fatalf("expected positive row key, got %d", created.Row)
		}
		if created.CreatedAt.IsZero() {
			t.Fatalf("expected created_at to be stamped")
		}
		got, err := repo.Get(ctx, "season1", created.Row)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Row != created.Row || got.Season != "season1" {
			t.Fatalf("key mismatch: %+v", got)
		}
		assertSameRecord(t, in, got)
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Get(context.Background(), "season1", 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_keeps_insertion_order_per_season", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		dates := []string{"2025-04-03", "2025-04-01", "2025-04-02"}
		for _, d := range dates {
			if _, err := repo.Append(ctx, "season1", SampleRecord(d)); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		if _, err := repo.Append(ctx, "season2", SampleRecord("2025-09-01")); err != nil {
			t.Fatalf("append other season: %v", err)
		}
		list, err := repo.List(ctx, "season1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != len(dates) {
			t.Fatalf("expected %d records, got %d", len(dates), len(list))
		}
		for i, d := range dates {
			if list[i].Date != d {
				t.Fatalf("position %d: want %s, got %s", i, d, list[i].Date)
			}
		}
	})

	t.Run("list_unknown_season_empty", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		list, err := repo.List(context.Background(), "never-played")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty list, got %d", len(list))
		}
	})

	t.Run("malformed_and_empty_seats_survive", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		in := model.GameRecord{
			Date:     "2025-05-05",
			Time:     "21:00",
			GameType: model.ThreePlayerEast,
			Seats: []model.Seat{
				{PlayerName: "Aoi", FinalPoints: pts(50000)},
				{PlayerName: "Ren"},
				{PlayerName: "Yui", FinalPoints: pts(-5000)},
			},
		}
		created, err := repo.Append(ctx, "season1", in)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		got, err := repo.Get(ctx, "season1", created.Row)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertSameRecord(t, in, got)
	})

	t.Run("update_replaces_fields", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Append(ctx, "season1", SampleRecord("2025-04-01"))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		changed := SampleRecord("2025-04-02")
		changed.GameType = model.FourPlayerEast
		changed.Seats[0].FinalPoints = pts(45000)
		changed.Seats[3].FinalPoints = pts(6000)
		changed.Notes = "fixed"
		updated, err := repo.Update(ctx, "season1", created.Row, changed)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Row != created.Row {
			t.Fatalf("update moved the record: %d -> %d", created.Row, updated.Row)
		}
		got, err := repo.Get(ctx, "season1", created.Row)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertSameRecord(t, changed, got)
	})

	t.Run("update_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Update(context.Background(), "season1", 424242, SampleRecord("2025-04-01"))
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		first, err := repo.Append(ctx, "season1", SampleRecord("2025-04-01"))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if _, err := repo.Append(ctx, "season1", SampleRecord("2025-04-02")); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := repo.Delete(ctx, "season1", first.Row); err != nil {
			t.Fatalf("delete: %v", err)
		}
		list, err := repo.List(ctx, "season1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 || list[0].Date != "2025-04-02" {
			t.Fatalf("unexpected records after delete: %+v", list)
		}
		if err := repo.Delete(ctx, "season1", 999999); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, records, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			for _, d := range []string{"2025-04-01", "2025-04-02"} {
				if _, err := records.Append(ctx, "season1", SampleRecord(d)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		list, err := records.List(ctx, "season1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 committed records, got %d", len(list))
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, records, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := records.Append(ctx, "season1", SampleRecord("2025-04-01")); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		list, err := records.List(ctx, "season1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected rollback to leave no records, got %d", len(list))
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

// SeatCorrupter overwrites the stored points of one seat with a non-numeric
// value, bypassing the repository, the way a hand edit would.
type SeatCorrupter func(t *testing.T, repo repository.RecordRepository, season string, row int64, seat int)

// RunCorruptSeatContract checks that unreadable points degrade to a malformed
// seat instead of failing the whole read.
func RunCorruptSeatContract(t *testing.T, makeRepo RecordFactory, corrupt SeatCorrupter) {
	t.Helper()

	t.Run("corrupt_points_become_malformed_seat", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		created, err := repo.Append(ctx, "season1", SampleRecord("2025-04-01"))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if _, err := repo.Append(ctx, "season1", SampleRecord("2025-04-02")); err != nil {
			t.Fatalf("append: %v", err)
		}
		corrupt(t, repo, "season1", created.Row, 1)

		list, err := repo.List(ctx, "season1")
		if err != nil {
			t.Fatalf("list must survive corrupt points: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 records, got %d", len(list))
		}
		seats := list[0].Seats
		if len(seats) < 2 || seats[1].Name() != "Ren" || seats[1].FinalPoints != nil {
			t.Fatalf("expected Ren's seat to be malformed, got %+v", seats)
		}
		if seats[0].FinalPoints == nil || *seats[0].FinalPoints != 42000 {
			t.Fatalf("neighbouring seat lost its points: %+v", seats[0])
		}

		got, err := repo.Get(ctx, "season1", created.Row)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Seats[1].FinalPoints != nil {
			t.Fatalf("get: expected malformed seat, got %d", *got.Seats[1].FinalPoints)
		}
	})
}
