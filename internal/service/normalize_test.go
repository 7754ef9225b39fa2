package service

import (
	"encoding/json"
	"testing"
)

func TestNormalizeScalars(t *testing.T) {
	decode := func(raw string) any {
		v, err := decodeScalar(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		return v
	}

	if s, err := toString(decode(`"  hi "`)); err != nil || *s != "hi" {
		t.Fatalf("expected trimmed string, got %v (%v)", s, err)
	}
	if s, err := toString(decode(`"   "`)); err != nil || s != nil {
		t.Fatalf("expected blank string to become nil")
	}
	if s, err := toString(decode(`9876543210`)); err != nil || *s != "9876543210" {
		t.Fatalf("expected number kept verbatim, got %v (%v)", s, err)
	}
	if _, err := toString(decode(`true`)); err == nil {
		t.Fatalf("expected bool to be rejected")
	}

	if f, err := toFloat(decode(`"4.5"`)); err != nil || *f != 4.5 {
		t.Fatalf("expected numeric string coercion, got %v (%v)", f, err)
	}
	if _, err := toFloat(decode(`"NaN"`)); err == nil {
		t.Fatalf("expected NaN to be rejected")
	}
	if f, err := toFloat(decode(`null`)); err != nil || f != nil {
		t.Fatalf("expected null to stay nil")
	}

	if n, err := toInt(decode(`"12"`)); err != nil || *n != 12 {
		t.Fatalf("expected integer coercion, got %v (%v)", n, err)
	}
	if n, err := toInt(decode(`3.0`)); err != nil || *n != 3 {
		t.Fatalf("expected integral float to be accepted, got %v (%v)", n, err)
	}
	if _, err := toInt(decode(`2.5`)); err == nil {
		t.Fatalf("expected fractional value to be rejected")
	}
}
