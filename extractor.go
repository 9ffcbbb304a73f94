package fitrecord

import (
	"math"

	"github.com/lucasjlepore/fitrecord/fitwire"
)

const (
	// RecordMesgNum is the global message number of the Record message.
	RecordMesgNum = 20

	// fitEpochOffset converts seconds since the FIT epoch (1989-12-31 UTC)
	// to Unix epoch seconds.
	fitEpochOffset = 631065600
)

// Extractor is a fitwire.Listener that keeps Record messages and normalizes
// each into a Sample. Samples without a valid timestamp are dropped.
type Extractor struct {
	samples []Sample
}

// OnMessage implements fitwire.Listener.
func (e *Extractor) OnMessage(msg fitwire.Message) {
	if msg.MesgNum != RecordMesgNum {
		return
	}

	sample := make(Sample, 8)
	for _, fd := range recordFields {
		v, ok := msg.Field(fd.num)
		if !ok || v.Invalid {
			continue
		}
		switch fd.kind {
		case kindTimestamp:
			sample[fd.name] = int64(v.Uint) + fitEpochOffset
		case kindUint, kindSint:
			if v.Kind == fitwire.Floating && !isFinite(v.Float) {
				continue
			}
			sample[fd.name] = intValue(v)
		case kindScaled:
			f := v.AsFloat()/fd.scale - fd.offset
			if !isFinite(f) {
				continue
			}
			sample[fd.name] = f
		case kindFloat:
			if !isFinite(v.Float) {
				continue
			}
			sample[fd.name] = v.Float
		}
	}

	if _, ok := sample["timestamp"]; !ok {
		return
	}
	e.samples = append(e.samples, sample)
}

// Samples returns the accumulated samples in file order.
func (e *Extractor) Samples() []Sample {
	return e.samples
}

// intValue extends the wire value to int64 consistently with the source
// type's signedness.
func intValue(v fitwire.Value) int64 {
	switch v.Kind {
	case fitwire.Signed:
		return v.Int
	case fitwire.Floating:
		return int64(v.Float)
	default:
		return int64(v.Uint)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
