package model

import (
	"encoding/json"
	"strconv"
)

// ResultSet is the listing returned by every level of the XNAT hierarchy
type ResultSet struct {
	TotalRecords int
	Result       []Record
}

// Record is a single entry of a ResultSet. XNAT does not use a fixed schema across levels,
// so fields are kept as decoded JSON values.
type Record map[string]any

// String returns the first non-empty value among keys, formatted as a string.
func (r Record) String(keys ...string) string {
	for _, key := range keys {
		switch v := r[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}
