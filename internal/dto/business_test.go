package dto

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeBusinessPayload(t *testing.T) {
	payload, err := DecodeBusinessPayload([]byte(`{"id":"7","status":"active","website":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payload.ID.Set || payload.ID.Value != 7 {
		t.Fatalf("expected id 7, got %+v", payload.ID)
	}
	if !payload.Has(FieldStatus) || !payload.Has(FieldWebsite) || payload.Has(FieldName) {
		t.Fatalf("unexpected keys: %v", payload.Keys())
	}
	if string(payload.Values[FieldWebsite]) != "null" {
		t.Fatalf("expected explicit null to be preserved, got %s", payload.Values[FieldWebsite])
	}
	if keys := payload.Keys(); len(keys) != 2 || keys[0] != FieldStatus || keys[1] != FieldWebsite {
		t.Fatalf("expected keys in form order, got %v", keys)
	}
}

func TestDecodeBusinessPayload_UnknownKeys(t *testing.T) {
	_, err := DecodeBusinessPayload([]byte(`{"id":1,"zeta":1,"alpha":2}`))
	var unknown *UnknownFieldsError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownFieldsError, got %v", err)
	}
	if len(unknown.Fields) != 2 || unknown.Fields[0] != "alpha" {
		t.Fatalf("expected sorted unknown fields, got %v", unknown.Fields)
	}
}

func TestDecodeBusinessPayload_Invalid(t *testing.T) {
	if _, err := DecodeBusinessPayload([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for array body")
	}
	if _, err := DecodeBusinessPayload([]byte(`null`)); err == nil {
		t.Fatalf("expected error for null body")
	}
	if _, err := DecodeBusinessPayload([]byte(`{"id":"abc"}`)); err == nil {
		t.Fatalf("expected error for non numeric id")
	}
}

func TestBusinessPayloadFromStrings(t *testing.T) {
	payload := BusinessPayloadFromStrings(map[string]string{"name": "Shop", "csrf": "x"})
	if !payload.Has(FieldName) || len(payload.Values) != 1 {
		t.Fatalf("unexpected payload: %v", payload.Keys())
	}
	var name string
	if err := json.Unmarshal(payload.Values[FieldName], &name); err != nil || name != "Shop" {
		t.Fatalf("expected encoded name, got %s (%v)", payload.Values[FieldName], err)
	}

	payload.Set(FieldStatus, "pending")
	if !payload.Has(FieldStatus) {
		t.Fatalf("expected status to be set")
	}
}

func TestFlexInt64(t *testing.T) {
	var req IDRequest
	if err := json.Unmarshal([]byte(`{"id":12}`), &req); err != nil || req.ID.Value != 12 || !req.ID.Set {
		t.Fatalf("unexpected decode: %+v %v", req, err)
	}
	req = IDRequest{}
	if err := json.Unmarshal([]byte(`{"id":" 5 "}`), &req); err != nil || req.ID.Value != 5 {
		t.Fatalf("unexpected decode: %+v %v", req, err)
	}
	req = IDRequest{}
	if err := json.Unmarshal([]byte(`{"id":""}`), &req); err != nil || req.ID.Set {
		t.Fatalf("expected empty string to be unset: %+v %v", req, err)
	}
	if err := json.Unmarshal([]byte(`{"id":1.5}`), &req); err == nil {
		t.Fatalf("expected fractional id to fail")
	}
	out, _ := json.Marshal(IDRequest{ID: ID(3)})
	if string(out) != `{"id":3}` {
		t.Fatalf("unexpected marshal: %s", out)
	}
}

func TestFlexString(t *testing.T) {
	var req VerifyOTPRequest
	if err := json.Unmarshal([]byte(`{"otp":1234}`), &req); err != nil || req.OTP != "1234" {
		t.Fatalf("unexpected decode: %+v %v", req, err)
	}
	req = VerifyOTPRequest{}
	if err := json.Unmarshal([]byte(`{"otp":"0042"}`), &req); err != nil || req.OTP != "0042" {
		t.Fatalf("unexpected decode: %+v %v", req, err)
	}
	req = VerifyOTPRequest{}
	if err := json.Unmarshal([]byte(`{"otp":null}`), &req); err != nil || req.OTP != "" {
		t.Fatalf("expected null to be empty: %+v %v", req, err)
	}
	if err := json.Unmarshal([]byte(`{"otp":{}}`), &req); err == nil {
		t.Fatalf("expected object otp to fail")
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(21, 2, 10)
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", p.TotalPages)
	}
	if NewPagination(0, 1, 10).TotalPages != 0 {
		t.Fatalf("expected zero pages for empty result")
	}
	if (BusinessFilter{Page: 3, Limit: 12}).Offset() != 24 {
		t.Fatalf("unexpected offset")
	}
}
