package mapper

import (
	"context"
	"errors"
	"io"
	"path"
	"time"

	"go.uber.org/zap"

	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
)

// Job is one export: map, write the artifacts, then optionally publish
// them and load the contracts store.
type Job struct {
	Mapper  *Mapper
	OutPath string
	TS      bool

	Uploader Uploader
	Bucket   string
	Prefix   string

	Store ports.ContractWriter
	Runs  ports.RunRecorder
	Log   *zap.Logger
}

type JobReport struct {
	*Result
	Files    []string
	Uploaded []string
	Loaded   int
}

// Run executes the export and, when Runs is set, records its outcome.
// A failed record is logged and does not fail the run.
func (j *Job) Run(ctx context.Context) (*JobReport, error) {
	if j.Mapper == nil || j.OutPath == "" {
		return nil, errors.New("job: mapper and output path are required")
	}
	started := time.Now()
	if j.Mapper.Now != nil {
		started = j.Mapper.Now()
	}

	rep, err := j.run(ctx, started)
	if j.Runs != nil {
		if rerr := j.Runs.Record(ctx, runRecord(j.Mapper, rep, err, started)); rerr != nil {
			logger.OrNop(j.Log).Warn("[MAPPER][RUN] record failed", zap.Error(rerr))
		}
	}
	return rep, err
}

func runRecord(m *Mapper, rep *JobReport, err error, started time.Time) models.MapperRun {
	run := models.MapperRun{Status: models.RunStatusDone, StartedAt: started.UTC(), FinishedAt: time.Now().UTC()}
	if m.Profile != nil {
		run.Profile = m.Profile.Name
	}
	if rep != nil {
		run.Processed = rep.Processed
		run.Skipped = rep.Skipped
		run.Warnings = rep.Warnings
		run.Files = rep.Files
		run.Uploaded = rep.Uploaded
		run.Loaded = rep.Loaded
	}
	if err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
	}
	return run
}

func (j *Job) run(ctx context.Context, now time.Time) (*JobReport, error) {
	log := logger.OrNop(j.Log)

	res, err := j.Mapper.Run(ctx)
	if err != nil {
		return nil, err
	}
	rep := &JobReport{Result: res}

	if err := WriteFile(j.OutPath, func(w io.Writer) error { return WriteJSON(w, res.Contracts) }); err != nil {
		return rep, err
	}
	rep.Files = append(rep.Files, j.OutPath)
	log.Info("[MAPPER][OUT] json written", zap.String("path", j.OutPath), zap.Int("contracts", len(res.Contracts)))

	if j.TS {
		ts := TSPath(j.OutPath)
		if err := WriteFile(ts, func(w io.Writer) error { return WriteTS(w, res, now) }); err != nil {
			return rep, err
		}
		rep.Files = append(rep.Files, ts)
		log.Info("[MAPPER][OUT] ts written", zap.String("path", ts))
	}

	if j.Uploader != nil {
		prefix := path.Join(j.Prefix, now.UTC().Format("20060102-150405"))
		keys, err := Publish(ctx, j.Uploader, j.Bucket, prefix, rep.Files...)
		rep.Uploaded = keys
		if err != nil {
			return rep, err
		}
		log.Info("[MAPPER][OUT] uploaded", zap.String("bucket", j.Bucket), zap.Strings("keys", keys))
	}

	if j.Store != nil {
		n, err := Load(ctx, j.Store, res.Contracts)
		if err != nil {
			return rep, err
		}
		rep.Loaded = n
		if n == 0 {
			log.Info("[MAPPER][LOAD] store already populated, skipped")
		} else {
			log.Info("[MAPPER][LOAD] contracts inserted", zap.Int("count", n))
		}
	}
	return rep, nil
}
