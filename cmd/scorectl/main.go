package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/maxviazov/mahjong-score-service/internal/app"
	"github.com/maxviazov/mahjong-score-service/internal/config"
	"github.com/maxviazov/mahjong-score-service/internal/logger"
	"github.com/maxviazov/mahjong-score-service/internal/model"
	"github.com/maxviazov/mahjong-score-service/internal/repository"
	"github.com/maxviazov/mahjong-score-service/internal/service"
	"github.com/maxviazov/mahjong-score-service/migrations"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "scorectl",
		Usage: "maintenance commands for the mahjong score service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "configs/config.yaml",
				EnvVars: []string{"APP_CONFIG"},
				Usage:   "path to the yaml config",
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			importCommand(),
			rankingCommand(),
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type env struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.Logger.ServiceName = "scorectl"
	l, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: l}, nil
}

func migrateCommand() *cli.Command {
	run := func(fn func(db *sql.DB) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			if e.cfg.Storage.Backend != config.BackendPostgres {
				return fmt.Errorf("migrations apply to the postgres backend, config selects %q", e.cfg.Storage.Backend)
			}
			db, err := sql.Open("pgx", repository.DSN(e.cfg.Postgres))
			if err != nil {
				return err
			}
			defer db.Close()

			goose.SetBaseFS(migrations.FS)
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}
			return fn(db)
		}
	}
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: run(func(db *sql.DB) error { return goose.Up(db, migrations.Dir) }),
			},
			{
				Name:   "down",
				Usage:  "roll back the last migration",
				Action: run(func(db *sql.DB) error { return goose.Down(db, migrations.Dir) }),
			},
			{
				Name:   "status",
				Usage:  "print migration status",
				Action: run(func(db *sql.DB) error { return goose.Status(db, migrations.Dir) }),
			},
		},
	}
}

// importCommand copies one season of a workbook into the configured store.
func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import-xlsx",
		Usage: "copy one season sheet of a workbook into the configured store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "workbook to read"},
			&cli.StringFlag{Name: "season", Usage: "sheet to copy, defaults to the current season"},
			&cli.BoolFlag{Name: "dry-run", Usage: "validate only"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			ctx := c.Context

			src, err := app.OpenWorkbook(c.String("file"), e.logger)
			if err != nil {
				return err
			}
			defer src.Close()

			seasons := service.NewSeasonCatalog(e.cfg.SeasonList())
			season, err := seasons.Resolve(c.String("season"))
			if err != nil {
				return describe(err)
			}
			recs, err := src.Records.List(ctx, season)
			if err != nil {
				return err
			}
			batch := make([]service.RecordInput, 0, len(recs))
			for _, r := range recs {
				batch = append(batch, service.InputFromRecord(r))
			}
			if c.Bool("dry-run") {
				return dryRun(c.App.Writer, season, batch)
			}

			dst, err := app.OpenStore(ctx, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer dst.Close()

			out, err := service.NewRecordService(dst.Records, dst.Tx, seasons, e.logger).ImportRecords(ctx, season, batch)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(c.App.Writer, "imported %d records into %s (%s)\n", len(out), season, dst.Backend)
			return nil
		},
	}
}

// dryRun runs the import validation and reports without touching any store.
func dryRun(w io.Writer, season string, batch []service.RecordInput) error {
	if err := service.ValidateRecords(batch); err != nil {
		return describe(err)
	}
	fmt.Fprintf(w, "%d records from %s are valid, nothing written\n", len(batch), season)
	return nil
}

func rankingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ranking",
		Usage: "print the leaderboard of a season",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "season", Usage: "season key, defaults to the current season"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			engine, err := e.cfg.Scoring.Engine()
			if err != nil {
				return err
			}
			store, err := app.OpenStore(c.Context, e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := service.NewStatsService(store.Records, engine, service.NewSeasonCatalog(e.cfg.SeasonList()), nil, e.logger)
			rows, err := svc.GetRanking(c.Context, c.String("season"))
			if err != nil {
				return describe(err)
			}
			return printRanking(c.App.Writer, rows)
		},
	}
}

func printRanking(w io.Writer, rows []model.RankingEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tGAMES\tAVG SCORE\tAVG RANK\tWIN RATE")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\t%.1f%%\n", i+1, r.Name, r.TotalGames, r.AvgScore, r.AvgRank, r.WinRate)
	}
	return tw.Flush()
}

// describe flattens field errors into the message so they reach the terminal.
func describe(err error) error {
	fes := service.FieldErrors(err)
	if len(fes) == 0 {
		return err
	}
	msgs := make([]error, 0, len(fes))
	for _, fe := range fes {
		msgs = append(msgs, fmt.Errorf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Errorf("%w:\n%w", err, errors.Join(msgs...))
}
