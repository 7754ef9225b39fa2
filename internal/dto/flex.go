package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt64 accepts a JSON number or a numeric string.
type FlexInt64 struct {
	Value int64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexInt64{}
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return fmt.Errorf("expected integer, got %v", v)
		}
		f.Value, f.Set = int64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			*f = FlexInt64{}
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("expected integer, got %q", v)
		}
		f.Value, f.Set = n, true
	default:
		return fmt.Errorf("expected integer")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexInt64) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// FlexString accepts a JSON string or number and keeps its literal text.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number")
	}
	*f = FlexString(n.String())
	return nil
}

// ID wraps an integer identifier into a FlexInt64.
func ID(v int64) FlexInt64 {
	return FlexInt64{Value: v, Set: true}
}

// IDRequest is the body shape of id-keyed mutations.
type IDRequest struct {
	ID FlexInt64 `json:"id"`
}
