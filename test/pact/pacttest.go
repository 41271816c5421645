//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "clinic-admin-api"
	ConsumerName = "cashier-portal"

	StateAdminAccount = "an admin account exists"
	StateAdminSession = "an admin session exists"
	StateBookableSlot = "a bookable therapy slot exists"
)

const (
	AdminUsername = "admin"
	AdminPassword = "pact-rahasia"

	// ConsumerToken is replaced with a live session token by the provider.
	ConsumerToken = "pact-session-token"

	BusinessAreaID int64 = 1
	ServiceID      int64 = 1
	ScheduleID     int64 = 1
	MissingOrderID       = "ORD-0-00000"

	SlotDate = "2030-01-15"
)

// OrderIDPattern matches identifiers handed out by the order engine.
const OrderIDPattern = `^ORD-\d+-\d{5}$`

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file written by the cashier portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is the booking the consumer places against the seeded slot.
func ExampleOrderRequest() map[string]any {
	return map[string]any{
		"business_area_id": BusinessAreaID,
		"service_id":       ServiceID,
		"schedule_id":      ScheduleID,
		"quantity":         1,
	}
}

func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
