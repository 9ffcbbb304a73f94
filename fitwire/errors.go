package fitwire

import "fmt"

// IntegrityError reports a buffer that failed the structural/checksum
// pre-check. Decode must not be attempted on such a buffer.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "fit integrity check failed: " + e.Reason
}

// DecodeError reports a structural failure while walking the record framing.
// Any partially decoded result must be discarded.
type DecodeError struct {
	Offset int // byte offset of the record being decoded when the failure hit
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fit decode failed at byte %d: %s", e.Offset, e.Reason)
}
