package runs

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"vehicle_finance/internal/models"
)

func TestPrepareDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	run := prepare(models.MapperRun{Profile: "generic"}, now)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, models.RunStatusDone, run.Status)
	assert.Equal(t, now, run.StartedAt)
	assert.Equal(t, now, run.FinishedAt)

	failed := prepare(models.MapperRun{ID: "r1", Status: models.RunStatusFailed}, now)
	assert.Equal(t, "r1", failed.ID)
	assert.Equal(t, models.RunStatusFailed, failed.Status)
}

func TestPrepareCapsWarnings(t *testing.T) {
	warnings := make([]string, MaxWarnings+5)
	for i := range warnings {
		warnings[i] = "w" + strconv.Itoa(i)
	}
	run := prepare(models.MapperRun{Warnings: warnings}, time.Now())

	assert.Len(t, run.Warnings, MaxWarnings+1)
	assert.Equal(t, "...", run.Warnings[MaxWarnings])
	assert.Equal(t, "w5", warnings[5])
}

func TestDisconnected(t *testing.T) {
	r := NewMongoRepository(nil)
	assert.ErrorIs(t, r.Record(context.Background(), models.MapperRun{}), mongo.ErrClientDisconnected)
	_, err := r.List(context.Background(), "", 10)
	assert.ErrorIs(t, err, mongo.ErrClientDisconnected)
}
