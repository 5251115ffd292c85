package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecordService(repo *fakeRecordRepo) service.RecordService {
	return service.NewRecordService(repo, repo, catalog(), discard())
}

func TestRecordService_CreateRecord_Validation(t *testing.T) {
	cases := []struct {
		name  string
		in    service.RecordInput
		field string
	}{
		{
			name:  "bad date",
			in:    service.RecordInput{Date: "2025/04/01", Time: "19:00", GameType: "四麻半荘", Seats: []service.SeatInput{seat("A", 25000)}},
			field: "date",
		},
		{
			name:  "bad time",
			in:    service.RecordInput{Date: "2025-04-01", Time: "7pm", GameType: "四麻半荘", Seats: []service.SeatInput{seat("A", 25000)}},
			field: "time",
		},
		{
			name:  "unknown game type",
			in:    input("riichi-city", seat("A", 25000)),
			field: "game_type",
		},
		{
			name:  "no seats",
			in:    input("四麻半荘"),
			field: "seats",
		},
		{
			name:  "five seats",
			in:    input("四麻半荘", seat("A", 1), seat("B", 1), seat("C", 1), seat("D", 1), seat("E", 1)),
			field: "seats",
		},
		{
			name:  "only empty seats",
			in:    input("四麻半荘", service.SeatInput{PlayerName: "  "}),
			field: "seats",
		},
		{
			name:  "points out of range",
			in:    input("四麻半荘", seat("A", 250000)),
			field: "seats[0].final_points",
		},
		{
			name:  "named seat without points",
			in:    input("四麻半荘", seat("A", 30000), service.SeatInput{PlayerName: "B"}),
			field: "seats[1].final_points",
		},
		{
			name:  "duplicate player",
			in:    input("四麻半荘", seat("A", 30000), seat(" A ", 20000)),
			field: "seats[1].player_name",
		},
		{
			name:  "four players in sanma",
			in:    input("三麻東風", seat("A", 40000), seat("B", 35000), seat("C", 30000), seat("D", 0)),
			field: "seats",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRecordRepo()
			_, err := newRecordService(repo).CreateRecord(context.Background(), "", tc.in)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			fes := service.FieldErrors(err)
			assert.True(t, hasField(fes, tc.field), "expected field %q in %+v", tc.field, fes)
			assert.Empty(t, repo.seasons, "nothing is written on validation failure")
		})
	}
}

func TestRecordService_CreateRecord_NormalizesAndStamps(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newRecordService(repo)

	in := input("three_player_full", seat(" Aoi ", 50000), service.SeatInput{PlayerName: "", FinalPoints: pts(0)}, seat("Ren", 30000), seat("Yui", 25000))
	in.Notes = "  late game "
	out, err := svc.CreateRecord(context.Background(), "", in)
	require.NoError(t, err)

	assert.Equal(t, "season2", out.Season, "empty season resolves to the current one")
	assert.Equal(t, int64(1), out.Row)
	assert.Equal(t, model.ThreePlayerFull, out.GameType)
	assert.Equal(t, "Aoi", out.Seats[0].PlayerName)
	assert.False(t, out.Seats[1].Occupied())
	assert.Nil(t, out.Seats[1].FinalPoints)
	assert.Equal(t, "late game", out.Notes)
	assert.False(t, out.CreatedAt.IsZero())
}

func TestRecordService_UnknownSeason(t *testing.T) {
	svc := newRecordService(newFakeRecordRepo())
	_, err := svc.CreateRecord(context.Background(), "season9", input("四麻半荘", seat("A", 25000)))
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.True(t, hasField(service.FieldErrors(err), "season"))
}

func TestRecordService_GetUpdateDelete(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newRecordService(repo)
	ctx := context.Background()

	created, err := svc.CreateRecord(ctx, "season1", input("四麻半荘", seat("A", 40000), seat("B", 30000), seat("C", 20000), seat("D", 10000)))
	require.NoError(t, err)

	_, err = svc.GetRecord(ctx, "season1", 0)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = svc.GetRecord(ctx, "season1", 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	updated, err := svc.UpdateRecord(ctx, "season1", created.Row, input("四麻東風", seat("A", 35000), seat("B", 35000), seat("C", 20000), seat("D", 10000)))
	require.NoError(t, err)
	assert.Equal(t, model.FourPlayerEast, updated.GameType)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	_, err = svc.UpdateRecord(ctx, "season1", 42, input("四麻東風", seat("A", 1)))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, svc.DeleteRecord(ctx, "season1", created.Row))
	assert.ErrorIs(t, svc.DeleteRecord(ctx, "season1", created.Row), repository.ErrNotFound)
}

func TestRecordService_ListRecords_Pages(t *testing.T) {
	repo := newFakeRecordRepo()
	svc := newRecordService(repo)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.CreateRecord(ctx, "season1", input("四麻半荘", seat("A", 25000+i)))
		require.NoError(t, err)
	}
	res, err := svc.ListRecords(ctx, "season1", repository.Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(3), res.Items[0].Row)
}

func TestRecordService_ImportRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("all or nothing on validation", func(t *testing.T) {
		repo := newFakeRecordRepo()
		_, err := newRecordService(repo).ImportRecords(ctx, "season1", []service.RecordInput{
			input("四麻半荘", seat("A", 25000)),
			input("unknown", seat("A", 25000)),
		})
		require.ErrorIs(t, err, service.ErrInvalidInput)
		assert.True(t, hasField(service.FieldErrors(err), "records[1].game_type"))
		assert.Empty(t, repo.seasons["season1"])
	})

	t.Run("store failure rolls back", func(t *testing.T) {
		repo := newFakeRecordRepo()
		repo.failOn = 2
		_, err := newRecordService(repo).ImportRecords(ctx, "season1", []service.RecordInput{
			input("四麻半荘", seat("A", 25000)),
			input("四麻半荘", seat("B", 25000)),
		})
		require.Error(t, err)
		assert.False(t, errors.Is(err, service.ErrInvalidInput))
		assert.Empty(t, repo.seasons["season1"])
	})

	t.Run("appends in order", func(t *testing.T) {
		repo := newFakeRecordRepo()
		out, err := newRecordService(repo).ImportRecords(ctx, "season1", []service.RecordInput{
			input("四麻半荘", seat("A", 25000)),
			input("三麻半荘", seat("B", 35000)),
		})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, int64(2), out[1].Row)
		assert.Equal(t, out[0].CreatedAt, out[1].CreatedAt)
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := newRecordService(newFakeRecordRepo()).ImportRecords(ctx, "", nil)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, service.FieldErrors(errors.New("boom")))
	assert.Nil(t, service.FieldErrors(nil))
}

func TestInputFromRecord_RoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRecordRepo()
	svc := newRecordService(repo)

	created, err := svc.CreateRecord(ctx, "season1", input("三麻半荘", seat("A", 50000), seat("", 0), seat("B", 30000), seat("C", 25000)))
	require.NoError(t, err)

	in := service.InputFromRecord(created)
	require.Len(t, in.Seats, 3)
	assert.Equal(t, "三麻半荘", in.GameType)

	copied, err := svc.CreateRecord(ctx, "season2", in)
	require.NoError(t, err)
	assert.Equal(t, created.Date, copied.Date)
	assert.Equal(t, "B", copied.Seats[1].PlayerName)
}

func TestValidateRecords(t *testing.T) {
	err := service.ValidateRecords([]service.RecordInput{
		input("四麻半荘", seat("A", 25000)),
		input("四麻半荘", seat("A", 25000), service.SeatInput{PlayerName: "B"}),
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.True(t, hasField(service.FieldErrors(err), "records[1].seats[1].final_points"))

	assert.NoError(t, service.ValidateRecords([]service.RecordInput{input("三麻半荘", seat("A", 35000))}))
	assert.ErrorIs(t, service.ValidateRecords(nil), service.ErrInvalidInput)
}
