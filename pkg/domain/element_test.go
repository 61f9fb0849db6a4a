package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestParseProducerKey(t *testing.T) {
	tests := []struct {
		in      string
		want    ProducerKey
		wantErr bool
	}{
		{"ShipOrder-40", ProducerKey{Command: "ShipOrder", Tick: 40}, false},
		{"Ship-Order-40", ProducerKey{Command: "Ship-Order", Tick: 40}, false},
		{"ShipOrder", ProducerKey{}, true},
		{"ShipOrder-", ProducerKey{}, true},
		{"-40", ProducerKey{}, true},
		{"ShipOrder-x", ProducerKey{}, true},
	}

	for _, tt := range tests {
		got, err := ParseProducerKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProducerKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidProducerKey) {
			t.Errorf("ParseProducerKey(%q) error = %v, want ErrInvalidProducerKey", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseProducerKey(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestProducerKey_RoundTrip(t *testing.T) {
	key := ProducerKey{Command: "Ship-Order", Tick: 7}
	parsed, err := ParseProducerKey(key.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != key {
		t.Errorf("got %+v, want %+v", parsed, key)
	}
}

func TestElement_MarshalCarriesType(t *testing.T) {
	tl := Timeline{
		Event{Name: "E", Tick: 1, ProducedBy: &ProducerKey{Command: "C", Tick: 0}},
		StateView{Name: "S", Tick: 2, SourcedFrom: []string{"E"}},
		Actor{Name: "A", Tick: 3, ReadsView: "S", SendsCommand: "C"},
		Command{Name: "C", Tick: 4},
	}

	data, err := json.Marshal(tl)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(raw) != len(ElementTypes) {
		t.Fatalf("expected %d entries, got %d", len(ElementTypes), len(raw))
	}
	for i, typ := range ElementTypes {
		if raw[i]["type"] != string(typ) {
			t.Errorf("entry %d: type = %v, want %s", i, raw[i]["type"], typ)
		}
		if tl[i].ElementType() != typ {
			t.Errorf("entry %d: ElementType() = %s, want %s", i, tl[i].ElementType(), typ)
		}
	}
	if raw[0]["producedBy"] != "C-0" {
		t.Errorf("producedBy = %v, want C-0", raw[0]["producedBy"])
	}
}

func TestTimeline_Filters(t *testing.T) {
	tl := Timeline{
		Event{Name: "E1", Tick: 1},
		Actor{Name: "A", Tick: 2},
		Event{Name: "E2", Tick: 3},
	}
	if got := len(tl.Events()); got != 2 {
		t.Errorf("Events() len = %d, want 2", got)
	}
	if got := len(tl.Actors()); got != 1 {
		t.Errorf("Actors() len = %d, want 1", got)
	}
}

func TestBuildHooks_Merge(t *testing.T) {
	var calls []string
	a := BuildHooks{OnBuild: func(_ context.Context, _ *BuildEvent) { calls = append(calls, "a") }}
	b := BuildHooks{
		OnBuild: func(_ context.Context, _ *BuildEvent) { calls = append(calls, "b") },
		OnLoad:  func(_ context.Context, _ *BuildEvent) { calls = append(calls, "load") },
	}

	merged := a.Merge(b)
	merged.OnBuild(context.Background(), &BuildEvent{})
	merged.OnLoad(context.Background(), &BuildEvent{})
	if merged.OnError != nil {
		t.Error("expected nil OnError")
	}

	want := []string{"a", "b", "load"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls = %v, want %v", calls, want)
		}
	}
}

func TestProducerKey_UnmarshalJSON(t *testing.T) {
	var fromString, fromObject ProducerKey
	if err := json.Unmarshal([]byte(`"Ship-Order-7"`), &fromString); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"command":"Ship-Order","tick":7}`), &fromObject); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ProducerKey{Command: "Ship-Order", Tick: 7}
	if fromString != want || fromObject != want {
		t.Errorf("got %+v and %+v, want %+v", fromString, fromObject, want)
	}

	var bad ProducerKey
	if err := json.Unmarshal([]byte(`"nodash"`), &bad); !errors.Is(err, ErrInvalidProducerKey) {
		t.Errorf("expected ErrInvalidProducerKey, got %v", err)
	}
}
