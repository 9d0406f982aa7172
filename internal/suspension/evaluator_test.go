package suspension

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/amats-service/internal/domain"
)

var start = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestEvaluateImmediatelyAfterCreation(t *testing.T) {
	for _, minutes := range []int{1, 2, 90, 1440, 525600} {
		rec := domain.SuspensionRecord{SuspendedBy: "root@sys", DurationMinutes: minutes, StartedAt: start}

		got := Evaluate(rec, start)
		assert.False(t, got.Expired)
		assert.Equal(t, minutes, got.RemainingMinutes)
		assert.Equal(t, 0, got.RemainingSeconds)
	}
}

func TestEvaluateAtEndIsExpired(t *testing.T) {
	for _, minutes := range []int{1, 90, 10080} {
		rec := domain.SuspensionRecord{DurationMinutes: minutes, StartedAt: start}

		got := Evaluate(rec, start.Add(time.Duration(minutes)*time.Minute))
		assert.True(t, got.Expired)
		assert.Zero(t, got.RemainingMinutes)
		assert.Zero(t, got.RemainingSeconds)
	}
}

func TestEvaluateNinetyMinutesOneSecondIn(t *testing.T) {
	minutes, err := Encode(90, UnitMinutes)
	assert.NoError(t, err)
	rec := domain.SuspensionRecord{SuspendedBy: "root@sys", DurationMinutes: minutes, StartedAt: start}

	got := Evaluate(rec, start.Add(time.Second))
	assert.False(t, got.Expired)
	assert.Equal(t, 89, got.RemainingMinutes)
	assert.Equal(t, 59, got.RemainingSeconds)
}

func TestEvaluateTwoHoursAfterExpiry(t *testing.T) {
	minutes, err := Encode(2, UnitHours)
	assert.NoError(t, err)
	rec := domain.SuspensionRecord{DurationMinutes: minutes, StartedAt: start}

	assert.True(t, Evaluate(rec, start.Add(121*time.Minute)).Expired)
}

func TestEvaluateFloorsPartialSeconds(t *testing.T) {
	rec := domain.SuspensionRecord{DurationMinutes: 1, StartedAt: start}

	got := Evaluate(rec, start.Add(1500*time.Millisecond))
	assert.Equal(t, 0, got.RemainingMinutes)
	assert.Equal(t, 58, got.RemainingSeconds)
}
