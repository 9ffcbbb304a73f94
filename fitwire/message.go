// Package fitwire decodes the FIT record-framing protocol: a file header,
// a sequence of definition and data records, and a trailing CRC. It delivers
// decoded data records to a listener in file order and leaves all
// message-level interpretation to the caller.
package fitwire

// ValueKind selects which arm of the Value union is populated.
type ValueKind uint8

const (
	Unsigned ValueKind = iota
	Signed
	Floating
)

// Value is one decoded field element together with its wire base type.
// Invalid is set when the raw bits match the base type's reserved sentinel.
type Value struct {
	Base    BaseType
	Kind    ValueKind
	Uint    uint64
	Int     int64
	Float   float64
	Invalid bool
}

// AsFloat widens the value to float64 regardless of kind.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case Signed:
		return float64(v.Int)
	case Floating:
		return v.Float
	default:
		return float64(v.Uint)
	}
}

// Message is one decoded data record: the global message number and a map
// from field number to decoded value. Multi-element fields surface their
// first element; string fields are not surfaced.
type Message struct {
	MesgNum uint16
	Fields  map[uint8]Value
}

// Field looks up a field by number.
func (m Message) Field(num uint8) (Value, bool) {
	v, ok := m.Fields[num]
	return v, ok
}

// FieldDef is one field slot of a definition record.
type FieldDef struct {
	Num  uint8
	Size uint8
	Base BaseType
}

// Definition is the decoded layout a definition record establishes for a
// local message type. A later definition for the same local type replaces it.
type Definition struct {
	LocalMesgNum uint8
	MesgNum      uint16
	BigEndian    bool
	Fields       []FieldDef
}

// Listener receives each decoded data record, exactly once, in file order.
type Listener interface {
	OnMessage(msg Message)
}

// DefinitionListener is optionally implemented by a Listener that also wants
// to observe definition records as they are established.
type DefinitionListener interface {
	OnDefinition(def Definition)
}
