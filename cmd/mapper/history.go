package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"vehicle_finance/internal/config"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/repository/runs"
	"vehicle_finance/internal/services/mapper"
)

type runLister interface {
	List(ctx context.Context, profile string, limit int64) ([]models.MapperRun, error)
}

// showRuns prints the latest recorded runs of the selected profile.
func showRuns(ctx context.Context, cfg *config.Config, o options, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	profile, err := mapper.LoadProfile(o.profile)
	if err != nil {
		return err
	}
	if err := cfg.ConnectMongo(ctx); err != nil {
		return err
	}
	return printRuns(ctx, runs.NewMongoRepository(cfg.Mongo), profile.Name, o.runs, w)
}

func printRuns(ctx context.Context, l runLister, profile string, limit int64, w io.Writer) error {
	items, err := l.List(ctx, profile, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintf(w, "no runs recorded for profile %q\n", profile)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tPROCESSED\tSKIPPED\tLOADED\tDETAIL")
	for _, r := range items {
		detail := r.Error
		if detail == "" {
			detail = strings.Join(r.Files, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.StartedAt.UTC().Format(time.RFC3339), r.Status, r.Processed, r.Skipped, r.Loaded, detail)
	}
	return tw.Flush()
}
