package seed

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/repository/contracts"
	"vehicle_finance/internal/repository/credentials"
)

func plainHash(p string) (string, error) { return "hashed:" + p, nil }

func TestGenerateIsWellFormed(t *testing.T) {
	g := NewGenerator(42)
	g.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	items := g.Generate()
	require.Len(t, items, DefaultCount)

	seen := map[string]bool{}
	for i, c := range items {
		require.NoError(t, c.Validate(), c.ContractNumber)
		assert.False(t, seen[c.ID])
		seen[c.ID] = true

		assert.Equal(t, customerNames[i], c.Customer.Name)
		assert.Equal(t, relations[i%len(relations)], c.Guarantor.Relation)
		assert.Equal(t, g.BaseDate.AddDate(0, 0, 30*i).Format(models.DateLayout), c.ContractDate)
		assert.Len(t, c.PaymentSchedule, c.Loan.TenureMonths)

		paid := 0
		for _, p := range c.PaymentSchedule {
			if p.Status == models.PaymentStatusPaid {
				paid++
				assert.Equal(t, p.DueDate, *p.PaidDate)
			}
		}
		assert.InDelta(t, c.Loan.EMIAmount*float64(paid), c.Loan.AmountPaid, 0.005)
		assert.InDelta(t, c.Loan.TotalAmount, c.Loan.OutstandingAmount+c.Loan.AmountPaid, 1e-6)

		if c.Status == models.ContractStatusCompleted {
			assert.Equal(t, c.Loan.TenureMonths, paid)
		}
		if c.Status == models.ContractStatusOverdue {
			assert.Equal(t, models.PaymentStatusOverdue, c.PaymentSchedule[paid].Status)
		}
	}
	assert.Equal(t, "VF20230001", items[0].ContractNumber)
	assert.Equal(t, "VF20230010", items[9].ContractNumber)
}

func TestGeneratePhotosCarryInitials(t *testing.T) {
	c := NewGenerator(7).Generate()[0]

	svg := func(uri string) string {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/svg+xml;base64,"))
		require.NoError(t, err)
		return string(raw)
	}
	assert.Contains(t, svg(c.Customer.Photo), ">RK</text>")
	assert.Contains(t, svg(c.Guarantor.Photo), ">RK</text>")
}

func TestScheduleMarksOverdue(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Schedule(start, 12, 2, 100, true)

	require.Len(t, s, 12)
	assert.Equal(t, "2023-01-31", s[0].DueDate)
	assert.Equal(t, models.PaymentStatusPaid, s[1].Status)
	assert.Equal(t, models.PaymentStatusOverdue, s[2].Status)
	assert.Nil(t, s[2].PaidDate)
	assert.Equal(t, models.PaymentStatusPending, s[3].Status)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := contracts.NewMemoryRepository(0)
	users := credentials.NewMemoryRepository()
	s := NewSeeder(store, users, NewGenerator(1), plainHash, zaptest.NewLogger(t))

	first, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, DefaultCount, first.ContractsCreated)
	require.NotNil(t, first.DefaultCredentials)
	assert.Equal(t, "admin", first.DefaultCredentials.Username)

	u, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hashed:admin123", u.HashedPassword)

	second, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Zero(t, second.ContractsCreated)
	assert.Equal(t, "Data already exists (10 contracts)", second.Message)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultCount, n)
}

func TestSeedKeepsExistingUser(t *testing.T) {
	ctx := context.Background()
	users := credentials.NewMemoryRepository()
	require.NoError(t, users.Create(ctx, models.Credential{Username: "admin", HashedPassword: "custom"}))

	s := NewSeeder(contracts.NewMemoryRepository(0), users, NewGenerator(1), plainHash, nil)
	_, err := s.Seed(ctx)
	require.NoError(t, err)

	u, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "custom", u.HashedPassword)
}

type failingCounter struct{ contracts.MemoryRepository }

func (*failingCounter) Count(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestSeedReportsUpstreamFailure(t *testing.T) {
	s := NewSeeder(&failingCounter{}, credentials.NewMemoryRepository(), NewGenerator(1), plainHash, nil)
	_, err := s.Seed(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
}

func TestSeedConcurrentCallsCreateOnce(t *testing.T) {
	ctx := context.Background()
	store := contracts.NewMemoryRepository(0)
	s := NewSeeder(store, credentials.NewMemoryRepository(), NewGenerator(1), plainHash, nil)

	const callers = 8
	results := make([]*Result, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Seed(ctx)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Created {
			created++
		} else {
			assert.Zero(t, results[i].ContractsCreated)
		}
	}
	assert.Equal(t, 1, created)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultCount, n)
}

// preSeeded reports an empty store, then fails the insert because another
// writer got there first.
type preSeeded struct {
	*contracts.MemoryRepository
	counts int
}

func (p *preSeeded) Count(ctx context.Context) (int64, error) {
	p.counts++
	if p.counts == 1 {
		return 0, nil
	}
	return p.MemoryRepository.Count(ctx)
}

func TestSeedInsertConflictIsNoOp(t *testing.T) {
	ctx := context.Background()
	inner := contracts.NewMemoryRepository(0)
	require.NoError(t, inner.InsertMany(ctx, NewGenerator(1).Generate()))

	s := NewSeeder(&preSeeded{MemoryRepository: inner}, credentials.NewMemoryRepository(), NewGenerator(1), plainHash, zaptest.NewLogger(t))
	res, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Zero(t, res.ContractsCreated)
	assert.Equal(t, "Data already exists (10 contracts)", res.Message)
}
