package fitwire

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/tormoder/fit/dyncrc16"
)

type messageCollector struct {
	messages []Message
	defs     []Definition
}

func (c *messageCollector) OnMessage(msg Message) {
	c.messages = append(c.messages, msg)
}

func (c *messageCollector) OnDefinition(def Definition) {
	c.defs = append(c.defs, def)
}

func buildFile(t *testing.T, records ...[]byte) []byte {
	t.Helper()

	var payload []byte
	for _, r := range records {
		payload = append(payload, r...)
	}

	hdr := make([]byte, headerSizeCRC)
	hdr[0] = headerSizeCRC
	hdr[1] = 0x20
	binary.LittleEndian.PutUint16(hdr[2:4], 2140)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	copy(hdr[8:12], ".FIT")
	binary.LittleEndian.PutUint16(hdr[12:14], dyncrc16.Checksum(hdr[:12]))

	buf := append(hdr, payload...)
	var tail [2]byte
	binary.LittleEndian.PutUint16(tail[:], dyncrc16.Checksum(buf))
	return append(buf, tail[:]...)
}

func defRecordArch(local, arch uint8, mesgNum uint16, fields ...FieldDef) []byte {
	out := []byte{mesgDefinitionMask | local, 0, arch}
	if arch == 1 {
		out = append(out, byte(mesgNum>>8), byte(mesgNum))
	} else {
		out = append(out, byte(mesgNum), byte(mesgNum>>8))
	}
	out = append(out, byte(len(fields)))
	for _, f := range fields {
		out = append(out, f.Num, f.Size, byte(f.Base))
	}
	return out
}

func defRecord(local uint8, mesgNum uint16, fields ...FieldDef) []byte {
	return defRecordArch(local, 0, mesgNum, fields...)
}

func dataRecord(local uint8, payload ...byte) []byte {
	return append([]byte{local}, payload...)
}

func u32le(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func u16le(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

func TestDecodeDeliversMessagesInFileOrder(t *testing.T) {
	def := defRecord(0, 20,
		FieldDef{Num: TimestampFieldNum, Size: 4, Base: BaseUint32},
		FieldDef{Num: 3, Size: 1, Base: BaseUint8},
	)
	data1 := dataRecord(0, append(u32le(1000), 120)...)
	data2 := dataRecord(0, append(u32le(1001), 0xFF)...)
	file := buildFile(t, def, data1, data2)

	var c messageCollector
	if err := Decode(file, &c); err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if len(c.defs) != 1 || c.defs[0].MesgNum != 20 {
		t.Fatalf("expected one definition for message 20, got %+v", c.defs)
	}
	if len(c.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.messages))
	}
	first, second := c.messages[0], c.messages[1]
	if ts, ok := first.Field(TimestampFieldNum); !ok || ts.Uint != 1000 {
		t.Fatalf("first timestamp: got %+v", ts)
	}
	if ts, ok := second.Field(TimestampFieldNum); !ok || ts.Uint != 1001 {
		t.Fatalf("second timestamp: got %+v", ts)
	}
	if hr, ok := first.Field(3); !ok || hr.Invalid || hr.Uint != 120 {
		t.Fatalf("first heart rate: got %+v", hr)
	}
	if hr, ok := second.Field(3); !ok || !hr.Invalid {
		t.Fatalf("expected sentinel heart rate flagged invalid, got %+v", hr)
	}
}

func TestCheckIntegrity(t *testing.T) {
	valid := buildFile(t, defRecord(0, 20, FieldDef{Num: 3, Size: 1, Base: BaseUint8}), dataRecord(0, 99))

	corruptCRC := append([]byte(nil), valid...)
	corruptCRC[len(corruptCRC)-1] ^= 0xFF

	corruptPayload := append([]byte(nil), valid...)
	corruptPayload[headerSizeCRC+2] ^= 0x55

	badMagic := append([]byte(nil), valid...)
	badMagic[8] = 'X'

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{name: "valid", data: valid},
		{name: "empty buffer", data: nil, wantErr: true},
		{name: "short header", data: valid[:6], wantErr: true},
		{name: "bad magic", data: badMagic, wantErr: true},
		{name: "truncated file", data: valid[:len(valid)-3], wantErr: true},
		{name: "corrupt file crc", data: corruptCRC, wantErr: true},
		{name: "corrupt payload", data: corruptPayload, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckIntegrity(tc.data)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("CheckIntegrity error: %v", err)
				}
				return
			}
			var ierr *IntegrityError
			if !errors.As(err, &ierr) {
				t.Fatalf("expected *IntegrityError, got %v", err)
			}
		})
	}
}

func TestCheckIntegrityLeavesBufferDecodable(t *testing.T) {
	file := buildFile(t, defRecord(0, 20, FieldDef{Num: 3, Size: 1, Base: BaseUint8}), dataRecord(0, 77))
	if err := CheckIntegrity(file); err != nil {
		t.Fatalf("CheckIntegrity error: %v", err)
	}

	var c messageCollector
	if err := Decode(file, &c); err != nil {
		t.Fatalf("Decode after CheckIntegrity error: %v", err)
	}
	if len(c.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(c.messages))
	}
}

func TestDecodeDataWithoutDefinition(t *testing.T) {
	file := buildFile(t, dataRecord(0, 1, 2, 3))

	var c messageCollector
	err := Decode(file, &c)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
}

func TestDecodeTruncatedDataRecord(t *testing.T) {
	// Declared data size covers only part of the record, so the checksum is
	// consistent but the last record is cut off mid-field.
	def := defRecord(0, 20, FieldDef{Num: TimestampFieldNum, Size: 4, Base: BaseUint32})
	partial := dataRecord(0, 0x01, 0x02)
	file := buildFile(t, def, partial)

	if err := CheckIntegrity(file); err != nil {
		t.Fatalf("expected integrity to pass on truncated record, got %v", err)
	}

	var c messageCollector
	err := Decode(file, &c)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
}

func TestDecodeLastDefinitionWins(t *testing.T) {
	defA := defRecord(0, 20, FieldDef{Num: 3, Size: 1, Base: BaseUint8})
	dataA := dataRecord(0, 100)
	defB := defRecord(0, 20, FieldDef{Num: 7, Size: 2, Base: BaseUint16})
	dataB := dataRecord(0, u16le(250)...)
	file := buildFile(t, defA, dataA, defB, dataB)

	var c messageCollector
	if err := Decode(file, &c); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(c.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.messages))
	}
	if hr, ok := c.messages[0].Field(3); !ok || hr.Uint != 100 {
		t.Fatalf("first message heart rate: got %+v", hr)
	}
	if _, ok := c.messages[1].Field(3); ok {
		t.Fatal("second message decoded against stale definition")
	}
	if pw, ok := c.messages[1].Field(7); !ok || pw.Uint != 250 {
		t.Fatalf("second message power: got %+v", pw)
	}
}

func TestDecodeBigEndianArchitecture(t *testing.T) {
	def := defRecordArch(0, 1, 20, FieldDef{Num: TimestampFieldNum, Size: 4, Base: BaseUint32})
	var be [4]byte
	binary.BigEndian.PutUint32(be[:], 123456)
	file := buildFile(t, def, dataRecord(0, be[:]...))

	var c messageCollector
	if err := Decode(file, &c); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(c.defs) != 1 || !c.defs[0].BigEndian {
		t.Fatalf("expected big-endian definition, got %+v", c.defs)
	}
	if ts, ok := c.messages[0].Field(TimestampFieldNum); !ok || ts.Uint != 123456 {
		t.Fatalf("big-endian timestamp: got %+v", ts)
	}
}

func TestDecodeUnknownBaseType(t *testing.T) {
	def := defRecord(0, 20, FieldDef{Num: 3, Size: 1, Base: BaseType(0x1F)})
	file := buildFile(t, def, dataRecord(0, 1))

	var c messageCollector
	err := Decode(file, &c)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError for unknown base type, got %v", err)
	}
}

func TestDecodeInvalidArchitectureByte(t *testing.T) {
	def := defRecordArch(0, 2, 20, FieldDef{Num: 3, Size: 1, Base: BaseUint8})
	file := buildFile(t, def, dataRecord(0, 1))

	var c messageCollector
	err := Decode(file, &c)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError for architecture byte, got %v", err)
	}
}

func TestDecodeCompressedTimestampHeader(t *testing.T) {
	def0 := defRecord(0, 20,
		FieldDef{Num: TimestampFieldNum, Size: 4, Base: BaseUint32},
		FieldDef{Num: 3, Size: 1, Base: BaseUint8},
	)
	full := dataRecord(0, append(u32le(5000), 100)...)

	def1 := defRecord(1, 20, FieldDef{Num: 3, Size: 1, Base: BaseUint8})
	// 5000 & 0x1F == 8; a 5-bit offset of 10 advances the timestamp by 2.
	compressed := []byte{compressedHeaderMask | 1<<5 | 10, 110}

	file := buildFile(t, def0, full, def1, compressed)

	var c messageCollector
	if err := Decode(file, &c); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(c.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.messages))
	}
	ts, ok := c.messages[1].Field(TimestampFieldNum)
	if !ok {
		t.Fatal("compressed record missing reconstructed timestamp")
	}
	if ts.Uint != 5002 {
		t.Fatalf("reconstructed timestamp: got %d, want 5002", ts.Uint)
	}
	if hr, ok := c.messages[1].Field(3); !ok || hr.Uint != 110 {
		t.Fatalf("compressed record heart rate: got %+v", hr)
	}
}

func TestDecodeSkipsDeveloperFieldBytes(t *testing.T) {
	def := []byte{
		mesgDefinitionMask | devDataMask | 0, // definition with developer data
		0, 0,                                 // reserved, little-endian
		20, 0, // global message number
		1,       // one field
		3, 1, 2, // heart_rate uint8
		1,       // one developer field
		0, 2, 0, // field 0, 2 bytes, developer data index 0
	}
	data := dataRecord(0, 95, 0xAB, 0xCD)
	tail := dataRecord(0, 96, 0x01, 0x02)
	file := buildFile(t, def, data, tail)

	var c messageCollector
	if err := Decode(file, &c); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(c.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.messages))
	}
	if hr, ok := c.messages[1].Field(3); !ok || hr.Uint != 96 {
		t.Fatalf("record after developer bytes: got %+v", hr)
	}
}

func TestDecodeStringFieldNotSurfaced(t *testing.T) {
	def := defRecord(0, 26,
		FieldDef{Num: 4, Size: 4, Base: BaseString},
		FieldDef{Num: 7, Size: 1, Base: BaseUint8},
	)
	file := buildFile(t, def, dataRecord(0, 'a', 'b', 0, 0, 5))

	var c messageCollector
	if err := Decode(file, &c); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if _, ok := c.messages[0].Field(4); ok {
		t.Fatal("string field should not surface in message")
	}
	if v, ok := c.messages[0].Field(7); !ok || v.Uint != 5 {
		t.Fatalf("numeric field after string: got %+v", v)
	}
}

func TestDecodeScalarSentinels(t *testing.T) {
	le := binary.LittleEndian
	tests := []struct {
		name     string
		base     BaseType
		sentinel []byte
		valid    []byte
	}{
		{name: "enum", base: BaseEnum, sentinel: []byte{0xFF}, valid: []byte{1}},
		{name: "uint8", base: BaseUint8, sentinel: []byte{0xFF}, valid: []byte{0}},
		{name: "sint8", base: BaseSint8, sentinel: []byte{0x7F}, valid: []byte{0x80}},
		{name: "uint16", base: BaseUint16, sentinel: []byte{0xFF, 0xFF}, valid: []byte{0, 0}},
		{name: "sint16", base: BaseSint16, sentinel: []byte{0xFF, 0x7F}, valid: []byte{0, 0x80}},
		{name: "uint32", base: BaseUint32, sentinel: []byte{0xFF, 0xFF, 0xFF, 0xFF}, valid: []byte{0, 0, 0, 0}},
		{name: "sint32", base: BaseSint32, sentinel: []byte{0xFF, 0xFF, 0xFF, 0x7F}, valid: []byte{0, 0, 0, 0x80}},
		{name: "float32", base: BaseFloat32, sentinel: []byte{0xFF, 0xFF, 0xFF, 0xFF}, valid: []byte{0, 0, 0x80, 0x3F}},
		{name: "uint8z", base: BaseUint8z, sentinel: []byte{0x00}, valid: []byte{1}},
		{name: "uint16z", base: BaseUint16z, sentinel: []byte{0, 0}, valid: []byte{1, 0}},
		{name: "uint32z", base: BaseUint32z, sentinel: []byte{0, 0, 0, 0}, valid: []byte{1, 0, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := decodeScalar(tc.sentinel, tc.base, le)
			if !ok || !v.Invalid {
				t.Fatalf("sentinel bits not flagged invalid: %+v", v)
			}
			v, ok = decodeScalar(tc.valid, tc.base, le)
			if !ok || v.Invalid {
				t.Fatalf("valid bits flagged invalid: %+v", v)
			}
		})
	}
}
