// Package models defines the data structures for the voice call relay.
package models

import (
	"encoding/json"
	"errors"
	"strconv"
)

// Common errors
var (
	ErrInvalidBody  = errors.New("invalid JSON body")
	ErrMissingLead  = errors.New("lead is required")
	ErrMissingPhone = errors.New("lead.phone is required")
)

// truthy mirrors how the upstream event source treats optional fields:
// null, "", 0 and false count as absent.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return true
	}
}

// orNull returns v when truthy, nil otherwise.
func orNull(v any) any {
	if truthy(v) {
		return v
	}
	return nil
}

// numberString renders a JSON number without altering its digits.
func numberString(v any) (string, bool) {
	switch val := v.(type) {
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	default:
		return "", false
	}
}
