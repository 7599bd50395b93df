package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vehicle_finance/internal/adapters/opener"
	"vehicle_finance/internal/config"
	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/repository/contracts"
	"vehicle_finance/internal/repository/runs"
	"vehicle_finance/internal/services/mapper"
)

type options struct {
	profile    string
	source     string
	dsn        string
	xlsx       string
	out        string
	ts         bool
	useS3      bool
	s3Prefix   string
	load       bool
	record     bool
	cronSpec   string
	photosRoot string
	runs       int64
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.profile, "profile", "generic", "built-in profile name or path to a YAML/JSON profile")
	flag.StringVar(&o.source, "source", "sql", "row source: sql or xlsx")
	flag.StringVar(&o.dsn, "dsn", "", "postgres DSN (defaults to PG_DSN / PG_* settings)")
	flag.StringVar(&o.xlsx, "xlsx", "", "workbook path for -source xlsx")
	flag.StringVar(&o.out, "out", "mobile_data.json", "JSON output path")
	flag.BoolVar(&o.ts, "ts", true, "also write a TypeScript module next to the JSON file")
	flag.BoolVar(&o.useS3, "s3", false, "connect to S3 for s3:// photo paths")
	flag.StringVar(&o.s3Prefix, "s3-prefix", "", "upload artifacts under this prefix (implies -s3)")
	flag.BoolVar(&o.load, "load", false, "insert contracts into Mongo when the collection is empty")
	flag.BoolVar(&o.record, "record", false, "record each run in the Mongo mapper_runs collection")
	flag.StringVar(&o.cronSpec, "cron", "", "run on this cron schedule instead of once")
	flag.StringVar(&o.photosRoot, "photos-root", "", "directory relative photo paths resolve against")
	flag.Int64Var(&o.runs, "runs", 0, "print the last N recorded runs of -profile and exit")
	flag.Parse()
	if o.s3Prefix != "" {
		o.useS3 = true
	}
	return o
}

func main() {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = lg.Sync() }()
	defer cfg.Close(context.Background())

	if opts.runs > 0 {
		if err := showRuns(ctx, cfg, opts, os.Stdout); err != nil {
			lg.Fatal("[MAPPER][RUNS]", zap.Error(err))
		}
		return
	}

	job, newSource, err := setup(ctx, cfg, opts, lg)
	if err != nil {
		lg.Fatal("[MAPPER][BOOT]", zap.Error(err))
	}

	runOnce := func() error {
		src, closeSrc, err := newSource()
		if err != nil {
			return err
		}
		defer closeSrc()
		job.Mapper.Source = src

		rep, err := job.Run(ctx)
		if err != nil {
			return err
		}
		lg.Info("[MAPPER][REPORT]",
			zap.String("profile", rep.Profile),
			zap.Int("processed", rep.Processed),
			zap.Int("skipped", rep.Skipped),
			zap.Strings("files", rep.Files),
			zap.Int("loaded", rep.Loaded))
		return nil
	}

	if opts.cronSpec == "" {
		if err := runOnce(); err != nil {
			lg.Fatal("[MAPPER] export failed", zap.Error(err))
		}
		return
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(opts.cronSpec, func() {
		if err := runOnce(); err != nil {
			lg.Error("[MAPPER][CRON] export failed", zap.Error(err))
		}
	}); err != nil {
		lg.Fatal("[MAPPER][CRON] bad schedule", zap.String("spec", opts.cronSpec), zap.Error(err))
	}
	c.Start()
	lg.Info("[MAPPER][CRON] scheduled", zap.String("spec", opts.cronSpec))

	<-ctx.Done()
	lg.Info("[MAPPER][CRON] stopping")
	<-c.Stop().Done()
}

type sourceFactory func() (mapper.Source, func(), error)

func setup(ctx context.Context, cfg *config.Config, o options, lg *zap.Logger) (*mapper.Job, sourceFactory, error) {
	setupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	profile, err := mapper.LoadProfile(o.profile)
	if err != nil {
		return nil, nil, err
	}

	var newSource sourceFactory
	switch o.source {
	case "sql":
		if o.dsn != "" {
			cfg.PostgresInfo.DSN = o.dsn
		}
		if err := cfg.ConnectPostgres(setupCtx); err != nil {
			return nil, nil, err
		}
		src := mapper.NewSQLSource(cfg.Postgres.DB, lg)
		newSource = func() (mapper.Source, func(), error) { return src, func() {}, nil }
	case "xlsx":
		if o.xlsx == "" {
			return nil, nil, fmt.Errorf("-xlsx is required with -source xlsx")
		}
		newSource = func() (mapper.Source, func(), error) {
			src, err := mapper.OpenXLSX(o.xlsx, lg)
			if err != nil {
				return nil, nil, err
			}
			return src, func() { _ = src.Close() }, nil
		}
	default:
		return nil, nil, fmt.Errorf("unknown source %q", o.source)
	}

	photos := opener.NewCompoundOpener(
		opener.NewHTTPOpener(&http.Client{Timeout: 30 * time.Second}, lg),
		nil,
		opener.NewFileOpener(o.photosRoot, lg),
	)

	job := &mapper.Job{
		Mapper:  mapper.New(profile, nil, mapper.NewPhotoLoader(photos), lg),
		OutPath: o.out,
		TS:      o.ts,
		Log:     lg,
	}

	if o.useS3 {
		if err := cfg.ConnectS3(setupCtx); err != nil {
			return nil, nil, err
		}
		photos.S3 = opener.NewS3Opener(cfg.S3.Client, lg)
		if o.s3Prefix != "" {
			job.Uploader = cfg.S3.Client
			job.Bucket = cfg.S3.Bucket
			job.Prefix = o.s3Prefix
		}
	}

	if o.load || o.record {
		if err := cfg.ConnectMongo(setupCtx); err != nil {
			return nil, nil, err
		}
	}
	if o.load {
		repo := contracts.NewMongoRepository(cfg.Mongo, cfg.ListLimit)
		if err := repo.EnsureIndexes(setupCtx); err != nil {
			return nil, nil, err
		}
		job.Store = repo
	}
	if o.record {
		job.Runs = runs.NewMongoRepository(cfg.Mongo)
	}

	lg.Info("[MAPPER][BOOT] ready",
		zap.String("profile", profile.Name),
		zap.String("source", o.source),
		zap.Bool("s3", o.useS3),
		zap.Bool("load", o.load),
		zap.Bool("record", o.record))
	return job, newSource, nil
}
