package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	errNotString  = errors.New("must be a string")
	errNotNumber  = errors.New("must be a number")
	errNotInteger = errors.New("must be an integer")
)

// decodeScalar decodes a raw JSON value keeping numbers as json.Number.
func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// toString trims string input. Empty strings and null become nil.
func toString(v any) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	case json.Number:
		s := t.String()
		return &s, nil
	default:
		return nil, errNotString
	}
}

// toFloat coerces numbers and numeric strings.
func toFloat(v any) (*float64, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		f, err = t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return nil, errNotNumber
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotNumber
	}
	return &f, nil
}

// toInt coerces integral numbers and numeric strings.
func toInt(v any) (*int64, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, errNotInteger
	}
	if f == nil {
		return nil, nil
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > 1<<53 {
		return nil, errNotInteger
	}
	n := int64(*f)
	return &n, nil
}
