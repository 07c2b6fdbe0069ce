package amqp

import (
	"testing"
	"time"
)

func TestExpenseEventMessage_RoundTrip(t *testing.T) {
	msg := NewExpenseEventMessage(42, ActionGenerated)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := ExpenseEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ExpenseEventMessageFromJSON: %v", err)
	}
	if decoded.ID != 42 || decoded.Action != ActionGenerated {
		t.Errorf("decoded = %+v, want id 42 action %q", decoded, ActionGenerated)
	}
	if time.Since(decoded.Timestamp) > time.Minute {
		t.Errorf("Timestamp = %v, want recent", decoded.Timestamp)
	}
}

func TestExpenseEventMessageFromJSON_Malformed(t *testing.T) {
	if _, err := ExpenseEventMessageFromJSON([]byte("not json")); err == nil {
		t.Error("malformed payload should not decode")
	}
}
