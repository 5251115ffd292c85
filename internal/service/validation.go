package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/mahjong-score-service/internal/model"
)

const (
	MinFinalPoints = -100000
	MaxFinalPoints = 200000
)

// RecordInput is a game record as submitted by a client.
type RecordInput struct {
	Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string      `json:"time" validate:"required,datetime=15:04"`
	GameType string      `json:"game_type" validate:"required"`
	Seats    []SeatInput `json:"seats" validate:"min=1,max=4,dive"`
	Notes    string      `json:"notes" validate:"max=500"`
}

type SeatInput struct {
	PlayerName  string `json:"player_name" validate:"max=50"`
	FinalPoints *int   `json:"final_points" validate:"omitempty,min=-100000,max=200000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so FieldError matches the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// toRecord validates in and returns the normalized record. Field errors are
// collected rather than returned on the first failure.
func toRecord(in RecordInput) (model.GameRecord, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	for i := range in.Seats {
		in.Seats[i].PlayerName = strings.TrimSpace(in.Seats[i].PlayerName)
	}

	var ferrs []FieldError
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return model.GameRecord{}, err
		}
		for _, fe := range verrs {
			ferrs = append(ferrs, FieldError{Field: fieldPath(fe), Message: describe(fe)})
		}
	}

	gameType, known := model.ParseGameType(in.GameType)
	if in.GameType != "" && !known {
		ferrs = append(ferrs, FieldError{Field: "game_type", Message: "must be one of " + gameTypeList()})
	}

	seats := make([]model.Seat, 0, len(in.Seats))
	seen := make(map[string]bool, len(in.Seats))
	occupied := 0
	for i, s := range in.Seats {
		if s.PlayerName == "" {
			// points typed next to an empty name are dropped
			seats = append(seats, model.Seat{})
			continue
		}
		occupied++
		field := fmt.Sprintf("seats[%d]", i)
		if s.FinalPoints == nil {
			ferrs = append(ferrs, FieldError{Field: field + ".final_points", Message: "required for an occupied seat"})
		}
		if seen[s.PlayerName] {
			ferrs = append(ferrs, FieldError{Field: field + ".player_name", Message: "player appears twice in one game"})
		}
		seen[s.PlayerName] = true
		seats = append(seats, model.Seat{PlayerName: s.PlayerName, FinalPoints: s.FinalPoints})
	}
	if len(in.Seats) > 0 && occupied == 0 {
		ferrs = append(ferrs, FieldError{Field: "seats", Message: "at least one seat must name a player"})
	}
	if known && occupied > gameType.SeatCount() {
		ferrs = append(ferrs, FieldError{Field: "seats", Message: fmt.Sprintf("%s seats at most %d players", gameType, gameType.SeatCount())})
	}

	if err := NewInvalidInputError(ferrs); err != nil {
		return model.GameRecord{}, err
	}
	return model.GameRecord{
		Date:     in.Date,
		Time:     in.Time,
		GameType: gameType,
		Seats:    seats,
		Notes:    strings.TrimSpace(in.Notes),
	}, nil
}

// ValidateRecords applies the import checks without writing anything.
// Field paths are prefixed with records[i].
func ValidateRecords(in []RecordInput) error {
	_, err := toRecords(in)
	return err
}

func toRecords(in []RecordInput) ([]model.GameRecord, error) {
	if len(in) == 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "records", Message: "must not be empty"}})
	}
	recs := make([]model.GameRecord, 0, len(in))
	var ferrs []FieldError
	for i, item := range in {
		rec, err := toRecord(item)
		if err != nil {
			fes := FieldErrors(err)
			if fes == nil {
				return nil, err
			}
			for _, fe := range fes {
				ferrs = append(ferrs, FieldError{Field: fmt.Sprintf("records[%d].%s", i, fe.Field), Message: fe.Message})
			}
			continue
		}
		recs = append(recs, rec)
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return nil, err
	}
	return recs, nil
}

// fieldPath turns "RecordInput.seats[1].final_points" into "seats[1].final_points".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "datetime":
		return "must match " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " entries"
		}
		return "must be >= " + fe.Param()
	case "max":
		switch fe.Kind() {
		case reflect.Slice:
			return "must have at most " + fe.Param() + " entries"
		case reflect.String:
			return "length must be <= " + fe.Param()
		}
		return "must be <= " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func gameTypeList() string {
	names := make([]string, 0, len(model.GameTypes))
	for _, gt := range model.GameTypes {
		names = append(names, string(gt))
	}
	return strings.Join(names, ", ")
}

// InputFromRecord turns a stored record back into request form, e.g. to copy
// records between stores. Empty seats are omitted.
func InputFromRecord(rec model.GameRecord) RecordInput {
	in := RecordInput{
		Date:     rec.Date,
		Time:     rec.Time,
		GameType: string(rec.GameType),
		Notes:    rec.Notes,
	}
	for _, s := range rec.Seats {
		if !s.Occupied() {
			continue
		}
		in.Seats = append(in.Seats, SeatInput{PlayerName: s.PlayerName, FinalPoints: s.FinalPoints})
	}
	return in
}
