package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	platformrealtime "github.com/ignasiusberneo/clinic-admin/internal/platform/realtime"
)

// EventQuotaChanged is the websocket event type for quota updates.
const EventQuotaChanged = "schedule.quota_changed"

var _ ports.QuotaNotifier = (*Notifier)(nil)

// Broadcaster delivers an event to the subscribers of one business area.
type Broadcaster interface {
	Broadcast(areaID int64, event platformrealtime.Event)
}

// Notifier publishes quota changes to websocket subscribers.
type Notifier struct {
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewNotifier wires a broadcaster, usually the realtime hub.
func NewNotifier(b Broadcaster, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{broadcaster: b, logger: logger}
}

type quotaPayload struct {
	ScheduleID     int64     `json:"schedule_id"`
	ProductID      int64     `json:"product_id"`
	BusinessAreaID int64     `json:"business_area_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	MaxQuota       int64     `json:"max_quota"`
	RemainingQuota int64     `json:"remaining_quota"`
}

func (n *Notifier) QuotaChanged(ctx context.Context, schedules ...domain.Schedule) {
	if n == nil || n.broadcaster == nil {
		return
	}
	for _, s := range schedules {
		payload, err := json.Marshal(quotaPayload{
			ScheduleID:     s.ID,
			ProductID:      s.ProductID,
			BusinessAreaID: s.BusinessAreaID,
			StartTime:      s.StartTime,
			EndTime:        s.EndTime,
			MaxQuota:       s.MaxQuota,
			RemainingQuota: s.RemainingQuota,
		})
		if err != nil {
			n.logger.WarnContext(ctx, "failed to encode quota event", slog.Int64("scheduleId", s.ID), slog.String("error", err.Error()))
			continue
		}
		n.broadcaster.Broadcast(s.BusinessAreaID, platformrealtime.Event{Type: EventQuotaChanged, Payload: payload})
	}
}
