package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Lead is a prospective customer record supplied by the caller. Apart from
// phone and lead_id every field passes through opaquely.
type Lead map[string]any

// Phone returns the lead's phone number and whether one is present.
// Strings must be non-empty; numbers are accepted and rendered verbatim.
func (l Lead) Phone() (string, bool) {
	v, ok := l["phone"]
	if !ok || !truthy(v) {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return numberString(v)
}

// LeadID returns lead_id when set, nil otherwise.
func (l Lead) LeadID() any {
	return orNull(l["lead_id"])
}

// Validate checks the invariants required to start a call.
func (l Lead) Validate() error {
	if l == nil {
		return ErrMissingLead
	}
	if _, ok := l.Phone(); !ok {
		return ErrMissingPhone
	}
	return nil
}

// DecodeCallStart reads a /call/start body and returns its validated lead.
func DecodeCallStart(r io.Reader) (Lead, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrInvalidBody)
	}

	raw, ok := payload["lead"].(map[string]any)
	if !ok {
		return nil, ErrMissingLead
	}

	lead := Lead(raw)
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}
