package fitwire

import (
	"encoding/binary"
	"fmt"

	"github.com/tormoder/fit/dyncrc16"
)

const (
	compressedHeaderMask       = 0x80
	compressedLocalMesgNumMask = 0x60
	compressedTimeMask         = 0x1F
	mesgDefinitionMask         = 0x40
	devDataMask                = 0x20
	localMesgNumMask           = 0x0F

	headerSizeNoCRC = 12
	headerSizeCRC   = 14

	// TimestampFieldNum is the field number every FIT message uses for its
	// full 32-bit timestamp.
	TimestampFieldNum = 253
)

type fileHeader struct {
	size     int
	dataSize int
}

// parseFileHeader validates the fixed header layout. A non-empty reason
// means the buffer cannot be a FIT file.
func parseFileHeader(data []byte) (fileHeader, string) {
	if len(data) == 0 {
		return fileHeader{}, "empty buffer"
	}
	size := int(data[0])
	if size != headerSizeNoCRC && size != headerSizeCRC {
		return fileHeader{}, fmt.Sprintf("invalid header size %d", size)
	}
	if len(data) < size {
		return fileHeader{}, fmt.Sprintf("truncated header: have %d bytes, need %d", len(data), size)
	}
	if string(data[8:12]) != ".FIT" {
		return fileHeader{}, fmt.Sprintf("invalid data type magic %q", string(data[8:12]))
	}
	dataSize := int(binary.LittleEndian.Uint32(data[4:8]))
	return fileHeader{size: size, dataSize: dataSize}, ""
}

// CheckIntegrity validates the buffer's structure and checksums without
// decoding it: header layout and magic, declared length, the trailing file
// CRC, and the header CRC when the 14-byte form carries a non-zero one.
// Bytes past the declared data+CRC region (chained files) are ignored.
// It returns nil or a *IntegrityError; the buffer is never consumed, so a
// subsequent Decode starts fresh from offset 0.
func CheckIntegrity(data []byte) error {
	hdr, reason := parseFileHeader(data)
	if reason != "" {
		return &IntegrityError{Reason: reason}
	}

	required := hdr.size + hdr.dataSize + 2
	if len(data) < required {
		return &IntegrityError{Reason: fmt.Sprintf("truncated file: have %d bytes, need %d", len(data), required)}
	}

	if hdr.size == headerSizeCRC {
		stored := binary.LittleEndian.Uint16(data[12:14])
		if stored != 0 && stored != dyncrc16.Checksum(data[:12]) {
			return &IntegrityError{Reason: "header CRC mismatch"}
		}
	}

	stored := binary.LittleEndian.Uint16(data[hdr.size+hdr.dataSize:])
	if computed := dyncrc16.Checksum(data[:hdr.size+hdr.dataSize]); stored != computed {
		return &IntegrityError{Reason: fmt.Sprintf("file CRC mismatch: stored 0x%04X, computed 0x%04X", stored, computed)}
	}
	return nil
}

// TrailingBytes reports how many bytes follow the declared data and CRC
// region. Chained or padded files carry a non-zero tail; it is ignored by
// both CheckIntegrity and Decode.
func TrailingBytes(data []byte) int {
	hdr, reason := parseFileHeader(data)
	if reason != "" {
		return 0
	}
	n := len(data) - (hdr.size + hdr.dataSize + 2)
	if n < 0 {
		return 0
	}
	return n
}

type definition struct {
	Definition
	arch     binary.ByteOrder
	devBytes int
}

type decoder struct {
	data []byte
	pos  int
	end  int

	defs        map[uint8]definition
	listener    Listener
	defListener DefinitionListener

	lastTimestamp  uint32
	lastTimeOffset int32
}

// Decode walks the buffer from offset 0 and delivers every data record to
// the listener, exactly once, in file order. Data records are decoded
// against the most recent definition seen for their local message type.
// A structural failure returns a *DecodeError; the caller must discard any
// messages already delivered. Callers are expected to run CheckIntegrity
// first; Decode itself does not verify checksums.
func Decode(data []byte, listener Listener) error {
	hdr, reason := parseFileHeader(data)
	if reason != "" {
		return &DecodeError{Offset: 0, Reason: reason}
	}

	d := &decoder{
		data:     data,
		pos:      hdr.size,
		end:      hdr.size + hdr.dataSize,
		defs:     make(map[uint8]definition),
		listener: listener,
	}
	if dl, ok := listener.(DefinitionListener); ok {
		d.defListener = dl
	}
	if d.end > len(data) {
		return &DecodeError{Offset: len(data), Reason: "declared data size extends past end of buffer"}
	}

	for d.pos < d.end {
		if err := d.decodeRecord(); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) decodeRecord() error {
	start := d.pos
	hb := d.data[d.pos]
	d.pos++

	switch {
	case hb&compressedHeaderMask == compressedHeaderMask:
		local := (hb & compressedLocalMesgNumMask) >> 5
		def, ok := d.defs[local]
		if !ok {
			return &DecodeError{Offset: start, Reason: fmt.Sprintf("compressed data record for local type %d without prior definition", local)}
		}
		return d.decodeData(start, hb, def, true)
	case hb&mesgDefinitionMask == mesgDefinitionMask:
		return d.decodeDefinition(start, hb)
	default:
		local := hb & localMesgNumMask
		def, ok := d.defs[local]
		if !ok {
			return &DecodeError{Offset: start, Reason: fmt.Sprintf("data record for local type %d without prior definition", local)}
		}
		return d.decodeData(start, hb, def, false)
	}
}

func (d *decoder) read(n int, what string, at int) ([]byte, *DecodeError) {
	if d.pos+n > d.end {
		return nil, &DecodeError{Offset: at, Reason: what + " truncated"}
	}
	out := d.data[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

func (d *decoder) decodeDefinition(start int, hb byte) error {
	local := hb & localMesgNumMask

	fixed, err := d.read(5, "definition record", start)
	if err != nil {
		return err
	}
	// fixed: reserved, architecture, global message number (2), field count.
	var arch binary.ByteOrder
	switch fixed[1] {
	case 0:
		arch = binary.LittleEndian
	case 1:
		arch = binary.BigEndian
	default:
		return &DecodeError{Offset: start, Reason: fmt.Sprintf("invalid architecture byte 0x%02X", fixed[1])}
	}
	mesgNum := arch.Uint16(fixed[2:4])
	numFields := int(fixed[4])

	fields := make([]FieldDef, 0, numFields)
	for i := 0; i < numFields; i++ {
		raw, err := d.read(3, "field definition", start)
		if err != nil {
			return err
		}
		bt := canonicalBaseType(raw[2])
		if !bt.Known() {
			return &DecodeError{Offset: start, Reason: fmt.Sprintf("unknown base type 0x%02X for field %d", raw[2], raw[0])}
		}
		fields = append(fields, FieldDef{Num: raw[0], Size: raw[1], Base: bt})
	}

	devBytes := 0
	if hb&devDataMask == devDataMask {
		cnt, err := d.read(1, "developer field count", start)
		if err != nil {
			return err
		}
		for i := 0; i < int(cnt[0]); i++ {
			raw, err := d.read(3, "developer field definition", start)
			if err != nil {
				return err
			}
			devBytes += int(raw[1])
		}
	}

	def := definition{
		Definition: Definition{
			LocalMesgNum: local,
			MesgNum:      mesgNum,
			BigEndian:    fixed[1] == 1,
			Fields:       fields,
		},
		arch:     arch,
		devBytes: devBytes,
	}
	d.defs[local] = def
	if d.defListener != nil {
		d.defListener.OnDefinition(def.Definition)
	}
	return nil
}

func (d *decoder) decodeData(start int, hb byte, def definition, compressed bool) error {
	var (
		reconstructed     uint32
		haveReconstructed bool
	)
	if compressed && d.lastTimestamp != 0 {
		offset := int32(hb & compressedTimeMask)
		d.lastTimestamp += uint32((offset - d.lastTimeOffset) & compressedTimeMask)
		d.lastTimeOffset = offset
		reconstructed = d.lastTimestamp
		haveReconstructed = true
	}

	msg := Message{MesgNum: def.MesgNum, Fields: make(map[uint8]Value, len(def.Fields))}
	for _, fd := range def.Fields {
		raw, err := d.read(int(fd.Size), "data record", start)
		if err != nil {
			return err
		}
		size := fd.Base.Size()
		if size <= 0 || len(raw)%size != 0 {
			// Field payload does not divide into base type elements; leave
			// the field absent rather than guess at its contents.
			continue
		}
		v, ok := decodeScalar(raw[:size], fd.Base, def.arch)
		if !ok {
			continue
		}
		if fd.Num == TimestampFieldNum && v.Kind == Unsigned && !v.Invalid {
			d.lastTimestamp = uint32(v.Uint)
			d.lastTimeOffset = int32(v.Uint) & compressedTimeMask
		}
		msg.Fields[fd.Num] = v
	}

	if def.devBytes > 0 {
		if _, err := d.read(def.devBytes, "developer field data", start); err != nil {
			return err
		}
	}

	if haveReconstructed {
		if _, ok := msg.Fields[TimestampFieldNum]; !ok {
			msg.Fields[TimestampFieldNum] = Value{
				Base: BaseUint32,
				Kind: Unsigned,
				Uint: uint64(reconstructed),
			}
		}
	}

	d.listener.OnMessage(msg)
	return nil
}
