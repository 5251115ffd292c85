package config

import (
	"fmt"
	"strings"

	"github.com/maxviazov/mahjong-score-service/internal/scoring"
	"github.com/spf13/viper"
)

// Load reads the yaml file at path and applies APP_* environment overrides.
// Database secrets are expected from the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	setDefaults(v)

	// secrets are not present in the file, so AutomaticEnv alone never sees them during Unmarshal
	for key, alias := range map[string]string{
		"postgres.user":     "POSTGRES_USER",
		"postgres.password": "POSTGRES_PASSWORD",
		"postgres.db":       "POSTGRES_DB",
	} {
		envKey := "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, alias); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mahjong-score-service")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.port", 8080)

	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("http.read_timeout", 10)
	v.SetDefault("http.write_timeout", 30)
	v.SetDefault("http.request_timeout", 15)
	v.SetDefault("http.shutdown_timeout", 10)

	v.SetDefault("storage.backend", BackendPostgres)
	v.SetDefault("storage.xlsx_path", "data/scores.xlsx")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conn_lifetime", 3600)
	v.SetDefault("postgres.max_conn_idle_time", 600)
	v.SetDefault("postgres.health_check_period", 30)

	v.SetDefault("seasons.current", "season1")
	v.SetDefault("seasons.list", []map[string]any{{"key": "season1", "name": "Season 1"}})

	r := scoring.DefaultRuleset()
	sp := make(map[string]any, len(r.StartingPoints))
	for gt, pts := range r.StartingPoints {
		sp[string(gt)] = pts
	}
	v.SetDefault("scoring.starting_points", sp)
	v.SetDefault("scoring.default_starting_points", r.DefaultStartingPoints)
	v.SetDefault("scoring.four_player_uma", r.FourPlayerUma)
	v.SetDefault("scoring.three_player_uma", r.ThreePlayerUma)
	v.SetDefault("scoring.participation_bonus", r.ParticipationBonus)
	v.SetDefault("scoring.point_divisor", r.PointDivisor)
}
