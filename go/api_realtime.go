package clinicserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignasiusberneo/clinic-admin/internal/platform/realtime"
)

// RealtimeAPI upgrades connections that follow schedule quota changes of one area.
type RealtimeAPI struct {
	hub *realtime.Hub
}

func NewRealtimeAPI(hub *realtime.Hub) RealtimeAPI {
	return RealtimeAPI{hub: hub}
}

// Get /api/ws?business_area_id=
func (api *RealtimeAPI) Subscribe(c *gin.Context) {
	if api.hub == nil {
		respondMessage(c, http.StatusServiceUnavailable, "Layanan realtime tidak tersedia")
		return
	}
	areaID, ok := parseIDQuery(c, "business_area_id")
	if !ok {
		return
	}
	if areaID == 0 {
		respondBadRequest(c, errors.New("business_area_id is required"))
		return
	}
	// The upgrader answers handshake failures itself and a stopped hub closes
	// the hijacked connection, so there is nothing left to write.
	_ = api.hub.Serve(c.Writer, c.Request, areaID)
}
