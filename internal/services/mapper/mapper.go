// Package mapper reshapes relational vehicle-finance data into contract
// documents. A Profile describes where rows come from and how columns map
// onto contract fields; one pipeline serves every profile.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/metrics"
	"vehicle_finance/internal/models"
)

var relatedEntities = []string{EntityCustomer, EntityGuarantor, EntityVehicle}

type Result struct {
	Profile   string
	Processed int
	Skipped   int
	Warnings  []string
	Contracts []models.MobileContract
}

type Mapper struct {
	Profile *Profile
	Source  Source
	Photos  *PhotoLoader
	Log     *zap.Logger
	Now     func() time.Time
}

func New(p *Profile, src Source, photos *PhotoLoader, log *zap.Logger) *Mapper {
	return &Mapper{Profile: p, Source: src, Photos: photos, Log: logger.OrNop(log), Now: time.Now}
}

// Run maps every contract row. Source failures abort the run; record
// failures are skipped and reported in Result.Warnings.
func (m *Mapper) Run(ctx context.Context) (*Result, error) {
	if m.Profile == nil || m.Source == nil {
		return nil, errors.New("mapper: profile and source are required")
	}
	p := m.Profile
	log := logger.OrNop(m.Log).With(zap.String("profile", p.Name))
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	t0 := time.Now()

	res := &Result{Profile: p.Name, Contracts: []models.MobileContract{}}
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		res.Warnings = append(res.Warnings, msg)
		log.Warn("[MAPPER][WARN] " + msg)
	}
	skip := func(key string, err error) {
		res.Skipped++
		metrics.MapperRecords.WithLabelValues(p.Name, "skipped").Inc()
		msg := fmt.Sprintf("%s: skipped: %v", key, err)
		res.Warnings = append(res.Warnings, msg)
		log.Warn("[MAPPER][SKIP]", zap.String("key", key), zap.Error(err))
	}

	log.Info("[MAPPER][START]")
	contractRows, err := m.Source.Fetch(ctx, p.Contracts)
	if err != nil {
		return nil, fmt.Errorf("fetch contracts: %w", err)
	}
	log.Info("[MAPPER] contracts fetched", zap.Int("rows", len(contractRows)))

	related, err := m.fetchRelated(ctx, contractRows)
	if err != nil {
		return nil, err
	}
	installments, err := m.fetchInstallments(ctx, contractRows, warn)
	if err != nil {
		return nil, err
	}

	b := &builder{p: p, photos: m.Photos, now: now, warn: warn}
	seen := make(map[string]bool, len(contractRows))

	for _, cr := range contractRows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := record{rows: map[string]Row{EntityContract: cr}}
		key := rec.key(p)

		missing := ""
		for _, entity := range relatedEntities {
			t, ok := p.Related[entity]
			if !ok {
				continue
			}
			row, ok := related[entity][cr.String(t.Ref)]
			if !ok && t.Required {
				missing = entity
				break
			}
			rec.rows[entity] = row
		}
		if missing != "" {
			skip(key, fmt.Errorf("%s %q not found", missing, cr.String(p.Related[missing].Ref)))
			continue
		}
		rec.installments = installments[key]

		mc, err := b.build(ctx, rec)
		if err != nil {
			skip(key, err)
			continue
		}
		if err := mc.Validate(); err != nil {
			skip(key, err)
			continue
		}
		if seen[mc.ContractNumber] {
			skip(key, fmt.Errorf("duplicate contract_number %q", mc.ContractNumber))
			continue
		}
		seen[mc.ContractNumber] = true

		res.Contracts = append(res.Contracts, mc)
		res.Processed++
		metrics.MapperRecords.WithLabelValues(p.Name, "processed").Inc()
	}

	log.Info("[MAPPER][DONE]",
		zap.Int("processed", res.Processed),
		zap.Int("skipped", res.Skipped),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("duration", time.Since(t0)))
	return res, nil
}

// fetchRelated loads each related table for the refs the contracts carry,
// indexed by entity then key.
func (m *Mapper) fetchRelated(ctx context.Context, contracts []Row) (map[string]map[string]Row, error) {
	out := make(map[string]map[string]Row, len(m.Profile.Related))
	for entity, t := range m.Profile.Related {
		refs := distinct(contracts, t.Ref)
		rows, err := m.Source.FetchByKeys(ctx, t, refs)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", entity, err)
		}
		idx := make(map[string]Row, len(rows))
		for _, r := range rows {
			k := r.String(t.Key)
			if _, dup := idx[k]; !dup {
				idx[k] = r
			}
		}
		out[entity] = idx
	}
	return out, nil
}

// fetchInstallments groups installment rows by contract key. Per-record
// tables are queried one contract at a time and a failed query leaves that
// contract with an empty schedule.
func (m *Mapper) fetchInstallments(ctx context.Context, contracts []Row, warn func(string, ...any)) (map[string][]Row, error) {
	t := m.Profile.Installments
	out := map[string][]Row{}
	if !t.defined() {
		return out, nil
	}
	keys := distinct(contracts, m.Profile.Contracts.Key)

	if t.PerRecord {
		for _, k := range keys {
			rows, err := m.Source.FetchByKeys(ctx, t, []string{k})
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				warn("%s: installments: %v", k, err)
				continue
			}
			out[k] = rows
		}
		return out, nil
	}

	rows, err := m.Source.FetchByKeys(ctx, t, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch installments: %w", err)
	}
	for _, r := range rows {
		k := r.String(t.Key)
		out[k] = append(out[k], r)
	}
	return out, nil
}

func distinct(rows []Row, col string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		v := r.String(col)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
