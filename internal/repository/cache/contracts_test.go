package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
)

type countingReader struct {
	calls int
	item  *models.Contract
}

func (r *countingReader) Find(context.Context, ports.ContractFilter) ([]models.Contract, error) {
	return nil, nil
}

func (r *countingReader) FindByID(_ context.Context, id string) (*models.Contract, error) {
	r.calls++
	if r.item == nil || r.item.ID != id {
		return nil, apperr.NotFound("Contract not found")
	}
	c := *r.item
	return &c, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestFindByIDReadsThrough(t *testing.T) {
	mr, rdb := setup(t)
	inner := &countingReader{item: &models.Contract{ID: "c1", ContractNumber: "VF20230001"}}
	c := NewContracts(inner, rdb, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	got, err := c.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "VF20230001", got.ContractNumber)
	assert.True(t, mr.Exists("contract:c1"))

	got, err = c.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "VF20230001", got.ContractNumber)
	assert.Equal(t, 1, inner.calls)

	mr.FastForward(2 * time.Minute)
	_, err = c.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestFindByIDDoesNotCacheMisses(t *testing.T) {
	mr, rdb := setup(t)
	c := NewContracts(&countingReader{}, rdb, time.Minute, nil)

	_, err := c.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, mr.Exists("contract:nope"))
}

func TestFindByIDSurvivesRedisOutage(t *testing.T) {
	mr, rdb := setup(t)
	inner := &countingReader{item: &models.Contract{ID: "c1"}}
	c := NewContracts(inner, rdb, time.Minute, zaptest.NewLogger(t))
	mr.Close()

	got, err := c.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
}
