package service

import (
	"slices"
	"strings"

	"github.com/maxviazov/mahjong-score-service/internal/model"
)

// SeasonCatalog resolves the season a request addresses.
type SeasonCatalog struct {
	seasons []model.Season
	current string
}

// NewSeasonCatalog expects the list produced by config, with exactly one entry flagged current.
// When none is flagged the first season is used.
func NewSeasonCatalog(seasons []model.Season) *SeasonCatalog {
	c := &SeasonCatalog{seasons: slices.Clone(seasons)}
	for _, s := range seasons {
		if s.Current {
			c.current = s.Key
			break
		}
	}
	if c.current == "" && len(seasons) > 0 {
		c.current = seasons[0].Key
		c.seasons[0].Current = true
	}
	return c
}

func (c *SeasonCatalog) List() []model.Season { return slices.Clone(c.seasons) }

func (c *SeasonCatalog) Current() string { return c.current }

// Resolve maps an empty key to the current season and rejects unknown keys.
func (c *SeasonCatalog) Resolve(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = c.current
	}
	if !slices.ContainsFunc(c.seasons, func(s model.Season) bool { return s.Key == key }) {
		return "", NewInvalidInputError([]FieldError{{Field: "season", Message: "unknown season " + key}})
	}
	return key, nil
}
