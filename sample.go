// Package fitrecord extracts Record (global message 20) samples from FIT
// activity files: each sample maps field names to engineering-unit values,
// with invalid or unreported fields omitted entirely.
package fitrecord

// Sample is one normalized Record message. Integer-typed fields are int64,
// scaled and floating fields are float64. A key is present only when the
// device reported the field with a valid, non-sentinel value; "timestamp"
// (Unix epoch seconds) is always present.
type Sample map[string]any

// Timestamp returns the sample time in Unix epoch seconds.
func (s Sample) Timestamp() int64 {
	ts, _ := s["timestamp"].(int64)
	return ts
}

// Has reports whether the named field was valid in this sample.
func (s Sample) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Float returns the named field widened to float64.
func (s Sample) Float(name string) (float64, bool) {
	switch v := s[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Int returns the named field as int64; false for float-valued fields.
func (s Sample) Int(name string) (int64, bool) {
	v, ok := s[name].(int64)
	return v, ok
}
