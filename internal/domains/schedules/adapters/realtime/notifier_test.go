package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	platformrealtime "github.com/ignasiusberneo/clinic-admin/internal/platform/realtime"
)

type sent struct {
	areaID int64
	event  platformrealtime.Event
}

type fakeBroadcaster struct {
	events []sent
}

func (f *fakeBroadcaster) Broadcast(areaID int64, event platformrealtime.Event) {
	f.events = append(f.events, sent{areaID: areaID, event: event})
}

func TestNotifier_PublishesOneEventPerSchedule(t *testing.T) {
	b := &fakeBroadcaster{}
	n := NewNotifier(b, nil)
	start := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)

	n.QuotaChanged(context.Background(),
		domain.Schedule{ID: 1, ProductID: 5, BusinessAreaID: 10, StartTime: start, EndTime: start.Add(time.Hour), MaxQuota: 3, RemainingQuota: 1},
		domain.Schedule{ID: 2, ProductID: 5, BusinessAreaID: 11, StartTime: start, EndTime: start.Add(time.Hour), MaxQuota: 2, RemainingQuota: 2},
	)

	require.Len(t, b.events, 2)
	assert.EqualValues(t, 10, b.events[0].areaID)
	assert.EqualValues(t, 11, b.events[1].areaID)
	assert.Equal(t, EventQuotaChanged, b.events[0].event.Type)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(b.events[0].event.Payload, &payload))
	assert.EqualValues(t, 1, payload["schedule_id"])
	assert.EqualValues(t, 1, payload["remaining_quota"])
}

func TestNotifier_NilIsNoop(t *testing.T) {
	var n *Notifier
	n.QuotaChanged(context.Background(), domain.Schedule{ID: 1})
}
