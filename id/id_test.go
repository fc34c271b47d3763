package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/tranche/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"EventID", id.NewEventID, "evt_"},
		{"BatchID", id.NewBatchID, "batch_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixEvent)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixEvent {
		t.Errorf("prefix: got %q", i.Prefix())
	}

	// IDs are unique
	j := id.New(id.PrefixEvent)
	if i.String() == j.String() {
		t.Error("expected distinct IDs")
	}
}

func TestParse(t *testing.T) {
	original := id.NewBatchID()

	parsed, err := id.Parse(original.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round trip: got %q, want %q", parsed.String(), original.String())
	}

	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
	if _, err := id.Parse("not a typeid!"); err == nil {
		t.Error("expected error for invalid string")
	}
}

func TestParseWithPrefix(t *testing.T) {
	evt := id.NewEventID()

	if _, err := id.ParseWithPrefix(evt.String(), id.PrefixEvent); err != nil {
		t.Errorf("matching prefix: %v", err)
	}
	if _, err := id.ParseWithPrefix(evt.String(), id.PrefixBatch); err == nil {
		t.Error("expected error for mismatched prefix")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID

	if !i.IsNil() {
		t.Error("zero value should be nil")
	}
	if i.String() != "" {
		t.Errorf("nil String: got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("nil Prefix: got %q", i.Prefix())
	}
}

func TestTextRoundTrip(t *testing.T) {
	original := id.NewEventID()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back id.ID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != original.String() {
		t.Errorf("round trip: got %q, want %q", back.String(), original.String())
	}
}

func TestScan(t *testing.T) {
	original := id.NewBatchID()

	var scanned id.ID
	if err := scanned.Scan(original.String()); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if scanned.String() != original.String() {
		t.Errorf("scan: got %q", scanned.String())
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !fromNil.IsNil() {
		t.Error("scan nil should produce Nil ID")
	}

	if err := scanned.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
