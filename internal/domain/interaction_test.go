package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInteraction(t *testing.T) {
	now := time.Date(2020, 4, 6, 9, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })

	in := NewInteraction(ViewMap, CategoryVisitor, 23).WithRange(day1, day3)

	_, err := uuid.Parse(in.ID)
	require.NoError(t, err)
	assert.Equal(t, now, in.OccurredAt)

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"view":"map"`)
	assert.Contains(t, string(b), `"start":"2020-02-01"`)
	assert.Contains(t, string(b), `"end":"2020-02-03"`)
	assert.Contains(t, string(b), `"rows":23`)
	assert.NotContains(t, string(b), `"areas"`)
}

func TestNewInteraction_UniqueIDs(t *testing.T) {
	a := NewInteraction(ViewSeries, CategoryAll, 0)
	b := NewInteraction(ViewSeries, CategoryAll, 0)
	assert.NotEqual(t, a.ID, b.ID)
}
