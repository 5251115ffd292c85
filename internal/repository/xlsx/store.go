// Package xlsx keeps game records in a local workbook laid out like the club's
// score sheet: one sheet per season, one game per row under a fixed header.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Header is the first row of every season sheet.
var Header = []string{
	"対局日", "対局時刻", "対局タイプ",
	"プレイヤー1名", "プレイヤー1点数",
	"プレイヤー2名", "プレイヤー2点数",
	"プレイヤー3名", "プレイヤー3点数",
	"プレイヤー4名", "プレイヤー4点数",
	"メモ", "登録日時",
}

const (
	colDate      = 0
	colTime      = 1
	colGameType  = 2
	colFirstSeat = 3
	colNotes     = colFirstSeat + 2*model.MaxSeats
	colCreatedAt = colNotes + 1

	createdAtLayout = "2006-01-02 15:04:05"
)

// Store is a RecordRepository, TxManager and Pinger over a single workbook.
// Every mutation is saved to disk before it returns, except inside WithinTx
// where the workbook is saved once on success.
type Store struct {
	mu     sync.RWMutex
	path   string
	file   *excelize.File
	logger zerolog.Logger
}

// Open loads the workbook at path, creating an empty one when it does not exist.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	f, err := load(path)
	if err != nil {
		return nil, err
	}
	s := &Store{
		path:   path,
		file:   f,
		logger: logger.With().Str("component", "xlsx_store").Str("path", path).Logger(),
	}
	s.logger.Info().Strs("sheets", f.GetSheetList()).Msg("workbook opened")
	return s, nil
}

func load(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create workbook dir: %w", err)
	}
	f = excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("create workbook %s: %w", path, err)
	}
	return f, nil
}

// Close releases the workbook.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

func (s *Store) rlock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// persist saves the workbook unless a transaction will do it later.
func (s *Store) persist(ctx context.Context) error {
	if s.inTx(ctx) {
		return nil
	}
	if err := s.file.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WithinTx holds the write lock for the whole unit of work. On failure the
// in-memory workbook is discarded and reloaded from disk.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		if rerr := s.reload(); rerr != nil {
			s.logger.Error().Err(rerr).Msg("rollback reload failed")
			return errors.Join(err, rerr)
		}
		return err
	}
	if err := s.file.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (s *Store) reload() error {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("reload workbook: %w", err)
	}
	_ = s.file.Close()
	s.file = f
	return nil
}

// Ping checks that the workbook is still readable on disk.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("workbook unavailable: %w", err)
	}
	return nil
}

func (s *Store) hasSheet(season string) bool {
	idx, err := s.file.GetSheetIndex(season)
	return err == nil && idx >= 0
}

// rows returns the sheet rows including the header, or nil for a missing sheet.
func (s *Store) rows(season string) ([][]string, error) {
	if !s.hasSheet(season) {
		return nil, nil
	}
	rows, err := s.file.GetRows(season)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", season, err)
	}
	return rows, nil
}

func (s *Store) List(ctx context.Context, season string) ([]model.GameRecord, error) {
	defer s.rlock(ctx)()
	rows, err := s.rows(season)
	if err != nil {
		return nil, err
	}
	out := make([]model.GameRecord, 0, max(len(rows)-1, 0))
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		out = append(out, s.decode(season, int64(i), rows[i]))
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, season string, row int64) (model.GameRecord, error) {
	defer s.rlock(ctx)()
	rows, err := s.rows(season)
	if err != nil {
		return model.GameRecord{}, err
	}
	if row < 1 || row >= int64(len(rows)) || blank(rows[row]) {
		return model.GameRecord{}, repository.ErrNotFound
	}
	return s.decode(season, row, rows[row]), nil
}

func (s *Store) Append(ctx context.Context, season string, rec model.GameRecord) (model.GameRecord, error) {
	defer s.lock(ctx)()
	if err := s.ensureSheet(season); err != nil {
		return model.GameRecord{}, err
	}
	rows, err := s.rows(season)
	if err != nil {
		return model.GameRecord{}, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	row := int64(max(len(rows), 1))
	if err := s.writeRow(season, row, rec); err != nil {
		return model.GameRecord{}, err
	}
	if err := s.persist(ctx); err != nil {
		return model.GameRecord{}, err
	}
	return s.normalized(season, row, rec), nil
}

func (s *Store) Update(ctx context.Context, season string, row int64, rec model.GameRecord) (model.GameRecord, error) {
	defer s.lock(ctx)()
	rows, err := s.rows(season)
	if err != nil {
		return model.GameRecord{}, err
	}
	if row < 1 || row >= int64(len(rows)) || blank(rows[row]) {
		return model.GameRecord{}, repository.ErrNotFound
	}
	existing := s.decode(season, row, rows[row])
	rec.CreatedAt = existing.CreatedAt
	if err := s.writeRow(season, row, rec); err != nil {
		return model.GameRecord{}, err
	}
	if err := s.persist(ctx); err != nil {
		return model.GameRecord{}, err
	}
	return s.normalized(season, row, rec), nil
}

// Delete removes the row; every later record moves up by one.
func (s *Store) Delete(ctx context.Context, season string, row int64) error {
	defer s.lock(ctx)()
	rows, err := s.rows(season)
	if err != nil {
		return err
	}
	if row < 1 || row >= int64(len(rows)) || blank(rows[row]) {
		return repository.ErrNotFound
	}
	if err := s.file.RemoveRow(season, int(row)+1); err != nil {
		return fmt.Errorf("remove row %d from %q: %w", row, season, err)
	}
	return s.persist(ctx)
}

// ensureSheet creates the season sheet when missing and writes the header
// whenever row 1 is empty, e.g. on a sheet added by hand.
func (s *Store) ensureSheet(season string) error {
	if !s.hasSheet(season) {
		if _, err := s.file.NewSheet(season); err != nil {
			return fmt.Errorf("create sheet %q: %w", season, err)
		}
		s.logger.Info().Str("season", season).Msg("season sheet created")
	}
	rows, err := s.rows(season)
	if err != nil {
		return err
	}
	if len(rows) > 0 && !blank(rows[0]) {
		return nil
	}
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := s.file.SetSheetRow(season, "A1", &header); err != nil {
		return fmt.Errorf("write header to %q: %w", season, err)
	}
	return nil
}

// writeRow stores rec at data row (sheet row + 1). Unused seat columns are cleared.
func (s *Store) writeRow(season string, row int64, rec model.GameRecord) error {
	cells := make([]interface{}, len(Header))
	cells[colDate] = rec.Date
	cells[colTime] = rec.Time
	cells[colGameType] = string(rec.GameType)
	for i := 0; i < model.MaxSeats; i++ {
		name, points := colFirstSeat+2*i, colFirstSeat+2*i+1
		cells[name], cells[points] = "", ""
		if i >= len(rec.Seats) {
			continue
		}
		cells[name] = rec.Seats[i].Name()
		if p := rec.Seats[i].FinalPoints; p != nil {
			cells[points] = *p
		}
	}
	cells[colNotes] = rec.Notes
	cells[colCreatedAt] = rec.CreatedAt.UTC().Format(createdAtLayout)

	axis, err := excelize.CoordinatesToCellName(1, int(row)+1)
	if err != nil {
		return err
	}
	if err := s.file.SetSheetRow(season, axis, &cells); err != nil {
		return fmt.Errorf("write row %d to %q: %w", row, season, err)
	}
	return nil
}

// normalized is what a subsequent Get would decode for rec.
func (s *Store) normalized(season string, row int64, rec model.GameRecord) model.GameRecord {
	rec.Row = row
	rec.Season = season
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Second)
	seats := make([]model.Seat, model.MaxSeats)
	for i := 0; i < model.MaxSeats && i < len(rec.Seats); i++ {
		if name := rec.Seats[i].Name(); name != "" {
			seats[i] = model.Seat{PlayerName: name, FinalPoints: rec.Seats[i].FinalPoints}
		}
	}
	rec.Seats = seats
	return rec
}

// decode never fails: unreadable point cells become malformed seats and an
// unreadable timestamp becomes the zero time.
func (s *Store) decode(season string, row int64, cells []string) model.GameRecord {
	rec := model.GameRecord{
		Row:      row,
		Season:   season,
		Date:     cell(cells, colDate),
		Time:     cell(cells, colTime),
		GameType: model.GameType(cell(cells, colGameType)),
		Notes:    cell(cells, colNotes),
		Seats:    make([]model.Seat, 0, model.MaxSeats),
	}
	if gt, ok := model.ParseGameType(string(rec.GameType)); ok {
		rec.GameType = gt
	}
	for i := 0; i < model.MaxSeats; i++ {
		name := cell(cells, colFirstSeat+2*i)
		seat := model.Seat{PlayerName: name}
		if name != "" {
			seat.FinalPoints = parsePoints(cell(cells, colFirstSeat+2*i+1))
		}
		rec.Seats = append(rec.Seats, seat)
	}
	if ts := cell(cells, colCreatedAt); ts != "" {
		if t, err := time.ParseInLocation(createdAtLayout, ts, time.UTC); err == nil {
			rec.CreatedAt = t
		} else {
			s.logger.Debug().Str("season", season).Int64("row", row).Str("value", ts).Msg("unreadable created_at")
		}
	}
	return rec
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parsePoints accepts integers written by hand, including thousands separators
// and whole floats such as "25000.0".
func parsePoints(v string) *int {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return nil
	}
	n := int(f)
	return &n
}

var (
	_ repository.RecordRepository = (*Store)(nil)
	_ repository.TxManager        = (*Store)(nil)
	_ repository.Pinger           = (*Store)(nil)
)
