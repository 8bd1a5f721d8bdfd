package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iliyamo/lab-booking/internal/model"
)

func TestHandleMessageAppendsAuditLine(t *testing.T) {
	dir := t.TempDir()
	c := NewAuditConsumer("", dir)

	b := model.Booking{ID: "b1", UserID: "u1", TestRef: "cbc", SelectedLocation: "Hyderabad", Status: model.StatusAccepted}
	actor := model.Identity{ID: "s1", Role: model.RoleSubAdmin, Location: "Hyderabad"}
	ev := NewBookingEvent(EventBookingStatusChanged, b, model.StatusPending, actor)
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := c.HandleMessage(body); err != nil {
			t.Fatalf("HandleMessage: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "booking.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, want := range []string{"booking.status_changed", "booking_id=b1", "status=pending->accepted", "actor=s1(sub-admin)"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
	c := NewAuditConsumer("", t.TempDir())
	if err := c.HandleMessage([]byte("{")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := c.HandleMessage([]byte(`{"type":"booking.created"}`)); err == nil {
		t.Fatal("expected error for event without booking id")
	}
}

func TestFormatAuditLineCreated(t *testing.T) {
	ev := NewBookingEvent(EventBookingCreated, model.Booking{ID: "b2", Status: model.StatusPending}, "", model.Identity{ID: "u1", Role: model.RoleUser})
	line := FormatAuditLine(ev)
	if !strings.Contains(line, "status=pending |") || ev.EventID == "" {
		t.Fatalf("unexpected line %q", line)
	}
}
