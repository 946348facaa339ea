package loki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_PushEventJSON(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw := []byte(`{"eventId":"gala","eventType":"code_verified","source":"verification","createdAt":"2026-03-01T10:00:00Z"}`)
	if err := NewClient(srv.URL+"/").PushEventJSON(context.Background(), raw); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	if len(got.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(got.Streams))
	}
	labels := got.Streams[0].Stream
	want := map[string]string{"job": "rsvp", "event_id": "gala", "event_type": "code_verified", "source": "verification"}
	for k, v := range want {
		if labels[k] != v {
			t.Errorf("label %s = %q, want %q", k, labels[k], v)
		}
	}
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).UnixNano()
	if got.Streams[0].Values[0][0] != formatNs(ts) {
		t.Errorf("timestamp = %q, want %q", got.Streams[0].Values[0][0], formatNs(ts))
	}
	if got.Streams[0].Values[0][1] != string(raw) {
		t.Errorf("line = %q", got.Streams[0].Values[0][1])
	}
}

func TestClient_PushEvent_SanitizesLabels(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).PushEvent(context.Background(), time.Now(), "line", map[string]string{"event_id": "gala 2026/x", "empty": "  "})
	if err != nil {
		t.Fatalf("PushEvent: %v", err)
	}
	labels := got.Streams[0].Stream
	if labels["event_id"] != "gala_2026_x" {
		t.Errorf("event_id = %q, want sanitized", labels["event_id"])
	}
	if _, ok := labels["empty"]; ok {
		t.Error("blank label should be dropped")
	}
}

func TestClient_PushEvent_Errors(t *testing.T) {
	if err := NewClient("").PushEvent(context.Background(), time.Now(), "x", nil); err == nil {
		t.Error("expected error for empty base URL")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()
	if err := NewClient(srv.URL).PushEvent(context.Background(), time.Now(), "x", nil); err == nil {
		t.Error("expected error on non-2xx")
	}
}

func formatNs(ns int64) string {
	b, _ := json.Marshal(ns)
	return string(b)
}
