package events

import (
	"strings"
	"testing"
	"time"
)

func TestNewBillingEventCarriesPayload(t *testing.T) {
	ev := NewBillingEvent(TypeSubscriptionActivated, map[string]interface{}{
		"user_id": "u-1",
		"plan":    "scholar",
	})

	if ev.EventType() != TypeSubscriptionActivated {
		t.Fatalf("expected type %s, got %s", TypeSubscriptionActivated, ev.EventType())
	}
	if ev.Payload()["plan"] != "scholar" {
		t.Errorf("payload lost: %v", ev.Payload())
	}
	if time.Since(ev.Timestamp()) > time.Minute {
		t.Errorf("timestamp not set: %v", ev.Timestamp())
	}
}

func TestSubjectPrefixRoundTrip(t *testing.T) {
	// The publisher addresses "events.<TYPE>"; consumers recover the type
	// code by trimming that prefix. Guard against codes that would collide
	// with the stream prefix itself.
	for _, code := range []string{
		TypeSubscriptionActivated,
		TypeSubscriptionExtended,
		TypePaymentFailed,
		TypeSubscriptionCancelled,
		TypeSubscriptionDowngrade,
	} {
		subject := "events." + code
		if got := strings.TrimPrefix(subject, "events."); got != code {
			t.Errorf("round trip failed for %s: got %s", code, got)
		}
		if strings.Contains(code, ".") {
			t.Errorf("event code %s must not contain a subject separator", code)
		}
	}
}
