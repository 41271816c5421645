package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
)

type normalizedCreateOrderInput struct {
	BusinessAreaID int64 `json:"businessAreaId"`
	ServiceID      int64 `json:"serviceId"`
	ScheduleID     int64 `json:"scheduleId"`
	Quantity       int64 `json:"quantity"`
}

// FingerprintCreateOrder builds a deterministic hash of the create-order payload (excluding the idempotency key).
func FingerprintCreateOrder(input ports.CreateOrderInput) (string, error) {
	payload, err := json.Marshal(normalizedCreateOrderInput{
		BusinessAreaID: input.BusinessAreaID,
		ServiceID:      input.ServiceID,
		ScheduleID:     input.ScheduleID,
		Quantity:       input.Quantity,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
