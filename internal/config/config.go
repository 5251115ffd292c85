package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/mahjong-score-service/internal/logger"
	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/scoring"
)

const (
	BackendPostgres = "postgres"
	BackendXLSX     = "xlsx"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	HTTP     HTTPConfig          `mapstructure:"http"`
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Storage  StorageConfig       `mapstructure:"storage"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Seasons  SeasonsConfig       `mapstructure:"seasons"`
	Scoring  ScoringConfig       `mapstructure:"scoring"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
}

// HTTPConfig timeouts are in seconds.
type HTTPConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ReadTimeout     int      `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    int      `mapstructure:"write_timeout" validate:"gte=0"`
	RequestTimeout  int      `mapstructure:"request_timeout" validate:"gt=0"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type StorageConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=postgres xlsx"`
	XLSXPath string `mapstructure:"xlsx_path"`
}

// PostgresConfig durations are in seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"db"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

// SeasonsConfig lists the record partitions; keys double as spreadsheet sheet names.
type SeasonsConfig struct {
	Current string         `mapstructure:"current" validate:"required"`
	List    []model.Season `mapstructure:"list" validate:"dive"`
}

// ScoringConfig is the deployment-time ruleset. Starting points are keyed by game type label or code.
type ScoringConfig struct {
	StartingPoints        map[string]int `mapstructure:"starting_points"`
	DefaultStartingPoints int            `mapstructure:"default_starting_points"`
	FourPlayerUma         []int          `mapstructure:"four_player_uma"`
	ThreePlayerUma        []int          `mapstructure:"three_player_uma"`
	ParticipationBonus    int            `mapstructure:"participation_bonus"`
	PointDivisor          int            `mapstructure:"point_divisor"`
}

// Ruleset converts the section into a scoring ruleset. Unknown game types are rejected
// here so a typo cannot silently fall back to the default stack.
func (s ScoringConfig) Ruleset() (scoring.Ruleset, error) {
	r := scoring.Ruleset{
		StartingPoints:        make(map[model.GameType]int, len(s.StartingPoints)),
		DefaultStartingPoints: s.DefaultStartingPoints,
		FourPlayerUma:         s.FourPlayerUma,
		ThreePlayerUma:        s.ThreePlayerUma,
		ParticipationBonus:    s.ParticipationBonus,
		PointDivisor:          s.PointDivisor,
	}
	for k, v := range s.StartingPoints {
		gt, ok := model.ParseGameType(k)
		if !ok {
			return scoring.Ruleset{}, fmt.Errorf("scoring.starting_points: unknown game type %q", k)
		}
		r.StartingPoints[gt] = v
	}
	return r, nil
}

// Engine builds the scoring engine for this section.
func (s ScoringConfig) Engine() (*scoring.Engine, error) {
	r, err := s.Ruleset()
	if err != nil {
		return nil, err
	}
	return scoring.New(r)
}

// SeasonList returns the configured seasons with the current one flagged.
func (c *Config) SeasonList() []model.Season {
	out := slices.Clone(c.Seasons.List)
	for i := range out {
		out[i].Current = out[i].Key == c.Seasons.Current
	}
	return out
}

// Validate checks struct tags plus the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c.withoutLogger()); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}

	var errs []error
	if c.Storage.Backend == BackendPostgres {
		if c.Postgres.User == "" {
			errs = append(errs, errors.New("postgres.user is required (APP_POSTGRES_USER)"))
		}
		if c.Postgres.Password == "" {
			errs = append(errs, errors.New("postgres.password is required (APP_POSTGRES_PASSWORD)"))
		}
		if c.Postgres.DBName == "" {
			errs = append(errs, errors.New("postgres.db is required (APP_POSTGRES_DB)"))
		}
	}
	if c.Storage.Backend == BackendXLSX && c.Storage.XLSXPath == "" {
		errs = append(errs, errors.New("storage.xlsx_path is required for the xlsx backend"))
	}
	if !slices.ContainsFunc(c.Seasons.List, func(s model.Season) bool { return s.Key == c.Seasons.Current }) {
		errs = append(errs, fmt.Errorf("seasons.current %q is not in seasons.list", c.Seasons.Current))
	}
	if _, err := c.Scoring.Engine(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withoutLogger leaves logger validation to logger.New, which applies defaults first.
func (c *Config) withoutLogger() Config {
	cp := *c
	cp.Logger = logger.LoggerConfig{}
	return cp
}
