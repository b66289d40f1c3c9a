package consent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/consentvault/internal/common"
)

// MarshalLedger serialises records as a JSON array. Dates are RFC 3339
// strings; an absent expiration date is omitted. A nil ledger encodes as [].
func MarshalLedger(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return b, nil
}

// UnmarshalLedger parses a snapshot written by MarshalLedger (or by the
// JavaScript client, whose Date values are ISO-8601 strings too). Unknown
// fields are rejected, as are records without an id or with an unknown
// status; every failure wraps common.ErrParse.
func UnmarshalLedger(b []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after ledger", common.ErrParse)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: ledger is not an array", common.ErrParse)
	}

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", common.ErrParse, i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", common.ErrParse, r.ID)
		}
		seen[r.ID] = struct{}{}
		if !r.Status.Valid() {
			return nil, fmt.Errorf("%w: record %s has unknown status %q", common.ErrParse, r.ID, r.Status)
		}
		records[i] = r.normalized()
	}
	return records, nil
}
