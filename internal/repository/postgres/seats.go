package postgres

import (
	"encoding/json"
	"strings"

	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/shopspring/decimal"
)

type storedSeat struct {
	PlayerName  json.RawMessage `json:"player_name"`
	FinalPoints json.RawMessage `json:"final_points"`
}

// decodeSeats reads the seats column one element at a time. Rows edited by hand
// may carry points that are not whole numbers; such a seat keeps its name and
// loses its points, which the aggregator skips as malformed.
func decodeSeats(raw []byte) []model.Seat {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []model.Seat{}
	}
	out := make([]model.Seat, 0, len(elems))
	for _, e := range elems {
		var st storedSeat
		if err := json.Unmarshal(e, &st); err != nil {
			out = append(out, model.Seat{})
			continue
		}
		var name string
		_ = json.Unmarshal(st.PlayerName, &name)
		out = append(out, model.Seat{PlayerName: name, FinalPoints: decodePoints(st.FinalPoints)})
	}
	return out
}

// decodePoints accepts numbers and numeric strings ("30,000" included) with no fractional part.
func decodePoints(raw json.RawMessage) *int {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
		text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	}
	d, err := decimal.NewFromString(text)
	if err != nil || !d.IsInteger() {
		return nil
	}
	v := int(d.IntPart())
	return &v
}
