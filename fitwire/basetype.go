package fitwire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BaseType is a FIT base type byte with its endian-capable bit preserved.
type BaseType uint8

const (
	BaseEnum    BaseType = 0x00
	BaseSint8   BaseType = 0x01
	BaseUint8   BaseType = 0x02
	BaseSint16  BaseType = 0x83
	BaseUint16  BaseType = 0x84
	BaseSint32  BaseType = 0x85
	BaseUint32  BaseType = 0x86
	BaseString  BaseType = 0x07
	BaseFloat32 BaseType = 0x88
	BaseFloat64 BaseType = 0x89
	BaseUint8z  BaseType = 0x0A
	BaseUint16z BaseType = 0x8B
	BaseUint32z BaseType = 0x8C
	BaseByte    BaseType = 0x0D
	BaseSint64  BaseType = 0x8E
	BaseUint64  BaseType = 0x8F
	BaseUint64z BaseType = 0x90
)

type baseSpec struct {
	name string
	size int
}

var baseSpecs = map[BaseType]baseSpec{
	BaseEnum:    {name: "enum", size: 1},
	BaseSint8:   {name: "sint8", size: 1},
	BaseUint8:   {name: "uint8", size: 1},
	BaseSint16:  {name: "sint16", size: 2},
	BaseUint16:  {name: "uint16", size: 2},
	BaseSint32:  {name: "sint32", size: 4},
	BaseUint32:  {name: "uint32", size: 4},
	BaseString:  {name: "string", size: 1},
	BaseFloat32: {name: "float32", size: 4},
	BaseFloat64: {name: "float64", size: 8},
	BaseUint8z:  {name: "uint8z", size: 1},
	BaseUint16z: {name: "uint16z", size: 2},
	BaseUint32z: {name: "uint32z", size: 4},
	BaseByte:    {name: "byte", size: 1},
	BaseSint64:  {name: "sint64", size: 8},
	BaseUint64:  {name: "uint64", size: 8},
	BaseUint64z: {name: "uint64z", size: 8},
}

func (bt BaseType) String() string {
	if spec, ok := baseSpecs[bt]; ok {
		return spec.name
	}
	return fmt.Sprintf("unknown_0x%02X", uint8(bt))
}

// Size returns the byte width of one element of this base type.
func (bt BaseType) Size() int {
	if spec, ok := baseSpecs[bt]; ok {
		return spec.size
	}
	return 0
}

// Known reports whether the base type is part of the FIT base type set.
func (bt BaseType) Known() bool {
	_, ok := baseSpecs[bt]
	return ok
}

// InvalidRule describes the sentinel that marks a value of this base type
// as not valid.
func (bt BaseType) InvalidRule() string {
	switch bt {
	case BaseEnum, BaseUint8:
		return "0xFF sentinel"
	case BaseSint8:
		return "0x7F sentinel"
	case BaseSint16:
		return "0x7FFF sentinel"
	case BaseUint16:
		return "0xFFFF sentinel"
	case BaseSint32:
		return "0x7FFFFFFF sentinel"
	case BaseUint32:
		return "0xFFFFFFFF sentinel"
	case BaseFloat32:
		return "0xFFFFFFFF bit-pattern sentinel"
	case BaseFloat64:
		return "0xFFFFFFFFFFFFFFFF bit-pattern sentinel"
	case BaseSint64:
		return "0x7FFFFFFFFFFFFFFF sentinel"
	case BaseUint64:
		return "0xFFFFFFFFFFFFFFFF sentinel"
	case BaseUint8z, BaseUint16z, BaseUint32z, BaseUint64z:
		return "0 sentinel"
	case BaseByte:
		return "all bytes 0xFF sentinel"
	case BaseString:
		return "empty string / NUL-only"
	default:
		return "see FIT base type sentinel rules"
	}
}

// canonicalBaseType restores the endian-capable bit that some definition
// records strip from the base type byte.
func canonicalBaseType(b byte) BaseType {
	switch b & 0x1F {
	case 0x03:
		return BaseSint16
	case 0x04:
		return BaseUint16
	case 0x05:
		return BaseSint32
	case 0x06:
		return BaseUint32
	case 0x08:
		return BaseFloat32
	case 0x09:
		return BaseFloat64
	case 0x0B:
		return BaseUint16z
	case 0x0C:
		return BaseUint32z
	case 0x0E:
		return BaseSint64
	case 0x0F:
		return BaseUint64
	case 0x10:
		return BaseUint64z
	default:
		return BaseType(b & 0x1F)
	}
}

// decodeScalar decodes one element of a field. ok is false for base types
// that carry no numeric value (strings and opaque byte payloads).
func decodeScalar(raw []byte, bt BaseType, arch binary.ByteOrder) (Value, bool) {
	v := Value{Base: bt}
	switch bt {
	case BaseEnum, BaseUint8:
		v.Kind = Unsigned
		v.Uint = uint64(raw[0])
		v.Invalid = raw[0] == 0xFF
	case BaseSint8:
		v.Kind = Signed
		v.Int = int64(int8(raw[0]))
		v.Invalid = int8(raw[0]) == 0x7F
	case BaseSint16:
		x := int16(arch.Uint16(raw))
		v.Kind = Signed
		v.Int = int64(x)
		v.Invalid = x == 0x7FFF
	case BaseUint16:
		x := arch.Uint16(raw)
		v.Kind = Unsigned
		v.Uint = uint64(x)
		v.Invalid = x == 0xFFFF
	case BaseSint32:
		x := int32(arch.Uint32(raw))
		v.Kind = Signed
		v.Int = int64(x)
		v.Invalid = x == 0x7FFFFFFF
	case BaseUint32:
		x := arch.Uint32(raw)
		v.Kind = Unsigned
		v.Uint = uint64(x)
		v.Invalid = x == 0xFFFFFFFF
	case BaseFloat32:
		bits := arch.Uint32(raw)
		v.Kind = Floating
		v.Float = float64(math.Float32frombits(bits))
		v.Invalid = bits == 0xFFFFFFFF
	case BaseFloat64:
		bits := arch.Uint64(raw)
		v.Kind = Floating
		v.Float = math.Float64frombits(bits)
		v.Invalid = bits == 0xFFFFFFFFFFFFFFFF
	case BaseUint8z:
		v.Kind = Unsigned
		v.Uint = uint64(raw[0])
		v.Invalid = raw[0] == 0x00
	case BaseUint16z:
		x := arch.Uint16(raw)
		v.Kind = Unsigned
		v.Uint = uint64(x)
		v.Invalid = x == 0x0000
	case BaseUint32z:
		x := arch.Uint32(raw)
		v.Kind = Unsigned
		v.Uint = uint64(x)
		v.Invalid = x == 0x00000000
	case BaseSint64:
		x := int64(arch.Uint64(raw))
		v.Kind = Signed
		v.Int = x
		v.Invalid = x == 0x7FFFFFFFFFFFFFFF
	case BaseUint64:
		x := arch.Uint64(raw)
		v.Kind = Unsigned
		v.Uint = x
		v.Invalid = x == 0xFFFFFFFFFFFFFFFF
	case BaseUint64z:
		x := arch.Uint64(raw)
		v.Kind = Unsigned
		v.Uint = x
		v.Invalid = x == 0
	default:
		return Value{}, false
	}
	return v, true
}
