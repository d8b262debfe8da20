package kafka

import (
	"encoding/json"
	"testing"
)

func TestEncodeBatch(t *testing.T) {
	events := []Event{
		{Key: "1", Value: map[string]string{"index": "1", "structured": "#AND()"}},
		{Key: "2", Value: map[string]string{"index": "2"}},
	}
	msgs, err := EncodeBatch(events)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if string(msgs[0].Key) != "1" || string(msgs[1].Key) != "2" {
		t.Errorf("keys out of order: %q %q", msgs[0].Key, msgs[1].Key)
	}
	var got map[string]string
	if err := json.Unmarshal(msgs[0].Value, &got); err != nil {
		t.Fatal(err)
	}
	if got["structured"] != "#AND()" {
		t.Errorf("value = %v", got)
	}
}

func TestEncodeBatchRejectsUnmarshalable(t *testing.T) {
	_, err := EncodeBatch([]Event{{Key: "x", Value: make(chan int)}})
	if err == nil {
		t.Fatal("expected marshal error")
	}
}
