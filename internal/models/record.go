package models

import (
	"encoding/json"
	"fmt"
	"io"
)

// Record is one entity instance fetched from the remote API, keyed by field name.
type Record map[string]Value

// Get returns the value stored under field, or Absent when the field is missing.
func (r Record) Get(field string) Value {
	if r == nil {
		return Absent()
	}
	return r[field]
}

// ID returns the text form of the record's identity field.
func (r Record) ID() string {
	return r.Get("id").String()
}

// DecodeRecords reads a JSON array of objects into records.
func DecodeRecords(rd io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(rd).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
