// Command etl runs the cricket commentary pipeline.
//
// Usage:
//
//	scoracle-etl init
//	scoracle-etl import --match-id 1473445 --scorecard sc.html \
//	    --first-team "Mumbai Indians" --first mi.html \
//	    --second-team "Chennai Super Kings" --second csk.html
//	scoracle-etl silver --workers 4
//	scoracle-etl gold --mode replace --match 1473445
//	scoracle-etl run
//	scoracle-etl run --dry-run --match-id 1 --first-team A --first a.html --second-team B --second b.html
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/scoracle-cricket/internal/batch"
	"github.com/albapepper/scoracle-cricket/internal/bronze"
	"github.com/albapepper/scoracle-cricket/internal/config"
	"github.com/albapepper/scoracle-cricket/internal/db"
	"github.com/albapepper/scoracle-cricket/internal/gold"
	"github.com/albapepper/scoracle-cricket/internal/maintenance"
	"github.com/albapepper/scoracle-cricket/internal/model"
	"github.com/albapepper/scoracle-cricket/internal/publisher"
	"github.com/albapepper/scoracle-cricket/internal/silver"
	"github.com/albapepper/scoracle-cricket/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "scoracle-etl",
		Short:        "Cricket commentary ETL (bronze -> silver -> gold)",
		SilenceUsage: true,
	}

	root.AddCommand(initCmd())
	root.AddCommand(importCmd())
	root.AddCommand(silverCmd())
	root.AddCommand(goldCmd())
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// Pipeline wiring
// --------------------------------------------------------------------------

// pipelineStore is everything the stages read and write.
type pipelineStore interface {
	bronze.Store
	silver.Store
	gold.Store
}

type pipeline struct {
	cfg   *config.Config
	store pipelineStore
	// pool is nil on a dry run.
	pool *db.Pool
	pub  *publisher.RedisStream
}

// withPipeline connects the store and runs fn. A dry run keeps every stage
// in memory and never touches Postgres or Redis.
func withPipeline(dryRun bool, fn func(ctx context.Context, p *pipeline) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if dryRun {
		logger.Info("Dry run: using in-memory store")
		return fn(ctx, &pipeline{cfg: cfg, store: store.NewMemory()})
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	p := &pipeline{cfg: cfg, store: store.NewPostgres(pool.Pool), pool: pool}
	if cfg.RedisURL != "" {
		pub, err := publisher.NewRedisStream(ctx, cfg.RedisURL)
		if err != nil {
			// Publishing is best effort; gold still runs.
			logger.Warn("Gold event publishing disabled", "error", err)
		} else {
			defer pub.Close()
			p.pub = pub
		}
	}
	return fn(ctx, p)
}

func (p *pipeline) silver(ctx context.Context, ids []int64, workers int) error {
	res, err := silver.TransformMetadata(ctx, p.store, logger)
	report(res)
	if err != nil {
		return err
	}
	res, err = silver.TransformEvents(ctx, p.store, silver.EventsOptions{MatchIDs: ids, Workers: workers}, logger)
	report(res)
	return err
}

func (p *pipeline) gold(ctx context.Context, ids []int64, workers int, mode string) error {
	opts := gold.Options{
		MatchIDs: ids,
		Workers:  workers,
		Mode:     model.ParseGoldWriteMode(mode),
	}
	if p.pub != nil {
		opts.Publisher = p.pub
	}
	res, err := gold.TransformToGold(ctx, p.store, opts, logger)
	report(res)
	if err != nil {
		return err
	}
	if p.pool != nil && res.Count("matches")+res.Count("purged") > 0 {
		if err := maintenance.RefreshMaterializedViews(ctx, p.pool.Pool, logger); err != nil {
			return err
		}
		if err := maintenance.NotifyGoldRefreshed(ctx, p.pool.Pool, res.Count("matches")); err != nil {
			logger.Warn("Gold refresh notification failed", "error", err)
		}
	}
	return nil
}

func report(res *batch.Result) {
	if res == nil {
		return
	}
	logger.Info("Stage finished", "summary", res.Summary())
	for _, s := range res.Skipped() {
		logger.Warn("Skipped", "stage", res.Stage, "match_id", s.MatchID, "reason", s.Reason)
	}
	for _, e := range res.Errors() {
		logger.Error("Stage error", "stage", res.Stage, "error", e)
	}
}

// --------------------------------------------------------------------------
// Shared flags
// --------------------------------------------------------------------------

type stageFlags struct {
	matchIDs []int64
	workers  int
	mode     string
}

func (f *stageFlags) register(cmd *cobra.Command, withMode bool) {
	cmd.Flags().Int64SliceVar(&f.matchIDs, "match", nil, "Limit to these match IDs (repeatable)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Matches processed concurrently (default ETL_WORKERS)")
	if withMode {
		cmd.Flags().StringVar(&f.mode, "mode", "", "Gold write mode: replace or insert-missing (default GOLD_WRITE_MODE)")
	}
}

func (f *stageFlags) resolve(cfg *config.Config) (workers int, mode string) {
	workers, mode = f.workers, f.mode
	if workers <= 0 {
		workers = cfg.Workers
	}
	if mode == "" {
		mode = cfg.GoldWriteMode
	}
	return workers, mode
}

type importFlags struct {
	matchID    int64
	scorecard  string
	firstTeam  string
	firstPage  string
	secondTeam string
	secondPage string
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.matchID, "match-id", 0, "Match ID of the saved pages")
	cmd.Flags().StringVar(&f.scorecard, "scorecard", "", "Saved scorecard HTML (match details table)")
	cmd.Flags().StringVar(&f.firstTeam, "first-team", "", "Side batting first")
	cmd.Flags().StringVar(&f.firstPage, "first", "", "Saved first-innings commentary HTML")
	cmd.Flags().StringVar(&f.secondTeam, "second-team", "", "Side batting second")
	cmd.Flags().StringVar(&f.secondPage, "second", "", "Saved second-innings commentary HTML")
}

func (f *importFlags) set() bool { return f.matchID != 0 }

func (f *importFlags) match() (bronze.Match, error) {
	if f.matchID <= 0 {
		return bronze.Match{}, errors.New("--match-id is required")
	}
	if f.firstTeam == "" || f.secondTeam == "" {
		return bronze.Match{}, errors.New("--first-team and --second-team are required")
	}
	return bronze.Match{
		MatchID:   f.matchID,
		Scorecard: f.scorecard,
		First:     bronze.InningsPage{Team: f.firstTeam, Path: f.firstPage},
		Second:    bronze.InningsPage{Team: f.secondTeam, Path: f.secondPage},
	}, nil
}

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the bronze, silver and gold tables and the leader views",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(false, func(ctx context.Context, p *pipeline) error {
				return p.pool.Migrate(ctx, logger)
			})
		},
	}
}

func importCmd() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Land saved commentary and scorecard pages in bronze",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := f.match()
			if err != nil {
				return err
			}
			return withPipeline(false, func(ctx context.Context, p *pipeline) error {
				_, err := bronze.Import(ctx, p.store, m, logger)
				return err
			})
		},
	}
	f.register(cmd)
	return cmd
}

func silverCmd() *cobra.Command {
	var f stageFlags
	cmd := &cobra.Command{
		Use:   "silver",
		Short: "Transform bronze metadata and deliveries into silver",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(false, func(ctx context.Context, p *pipeline) error {
				workers, _ := f.resolve(p.cfg)
				start := time.Now()
				err := p.silver(ctx, f.matchIDs, workers)
				logger.Info("Silver finished", "duration", time.Since(start).Round(time.Millisecond))
				return err
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

func goldCmd() *cobra.Command {
	var f stageFlags
	cmd := &cobra.Command{
		Use:   "gold",
		Short: "Aggregate silver deliveries into the gold tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(false, func(ctx context.Context, p *pipeline) error {
				workers, mode := f.resolve(p.cfg)
				start := time.Now()
				err := p.gold(ctx, f.matchIDs, workers, mode)
				logger.Info("Gold finished", "duration", time.Since(start).Round(time.Millisecond))
				return err
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func runCmd() *cobra.Command {
	var (
		f      stageFlags
		imp    importFlags
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run silver then gold, optionally importing saved pages first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun && !imp.set() {
				return errors.New("--dry-run needs saved pages to import (--match-id, --first, --second)")
			}
			return withPipeline(dryRun, func(ctx context.Context, p *pipeline) error {
				start := time.Now()
				workers, mode := f.resolve(p.cfg)

				if imp.set() {
					m, err := imp.match()
					if err != nil {
						return err
					}
					if _, err := bronze.Import(ctx, p.store, m, logger); err != nil {
						return err
					}
				}
				if err := p.silver(ctx, f.matchIDs, workers); err != nil {
					return err
				}
				if err := p.gold(ctx, f.matchIDs, workers, mode); err != nil {
					return err
				}
				if dryRun {
					printDryRun(ctx, p.store)
				}
				logger.Info("Pipeline finished", "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	f.register(cmd, true)
	imp.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run every stage in memory and print the results")
	return cmd
}

func printDryRun(ctx context.Context, st pipelineStore) {
	mem, ok := st.(*store.Memory)
	if !ok {
		return
	}
	ids, _ := mem.MatchIDs(ctx)
	for _, id := range ids {
		s, found, _ := mem.MatchSummary(ctx, id)
		if !found {
			continue
		}
		fmt.Printf("match %d: %s %d/%d (%.1f) vs %s %d/%d (%.1f) -> %s %s\n",
			s.MatchID,
			s.FirstInningsTeam, s.FirstInningsRuns, s.FirstInningsWickets, s.FirstInningsOvers,
			s.SecondInningsTeam, s.SecondInningsRuns, s.SecondInningsWickets, s.SecondInningsOvers,
			s.Winner, s.Margin)
		batting, _ := mem.Batting(ctx, id)
		for _, b := range batting {
			fmt.Printf("  bat  %-24s %-22s %3d (%d) SR %.2f\n", b.PlayerName, b.Team, b.RunsScored, b.BallsFaced, b.StrikeRate)
		}
		bowling, _ := mem.Bowling(ctx, id)
		for _, b := range bowling {
			fmt.Printf("  bowl %-24s %-22s %.1f-%d-%d-%d Econ %.2f\n", b.PlayerName, b.Team, b.OversBowled, b.Maidens, b.RunsConceded, b.WicketsTaken, b.EconomyRate)
		}
	}
}
