package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vehicle_finance/internal/models"
)

func TestFindByIDCommandSequence(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	item := &models.Contract{ID: "c1", ContractNumber: "VF20230001"}
	data, err := json.Marshal(item)
	require.NoError(t, err)

	mock.ExpectGet("contract:c1").RedisNil()
	mock.ExpectSet("contract:c1", data, 5*time.Minute).SetVal("OK")

	c := NewContracts(&countingReader{item: item}, rdb, 5*time.Minute, zaptest.NewLogger(t))
	got, err := c.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "VF20230001", got.ContractNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDDropsCorruptEntry(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	item := &models.Contract{ID: "c1"}
	data, err := json.Marshal(item)
	require.NoError(t, err)

	mock.ExpectGet("contract:c1").SetVal("{not json")
	mock.ExpectDel("contract:c1").SetVal(1)
	mock.ExpectSet("contract:c1", data, DefaultTTL).SetVal("OK")

	inner := &countingReader{item: item}
	c := NewContracts(inner, rdb, 0, zaptest.NewLogger(t))
	_, err = c.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
