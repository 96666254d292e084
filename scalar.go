package binproto

import (
	"encoding/binary"
	"math"
)

// ScalarKind enumerates the ten scalar wire types of §3.1. Widths and
// wire order are fixed per §6: network byte order (big-endian), no
// alignment padding between fields — unlike the D-Bus wire format this
// package's pack routines are grounded on, there is no byte-order flag
// byte and no struct alignment to honor.
type ScalarKind int

// Scalar kinds, widths given in §6.
const (
	I8 ScalarKind = iota
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	F32
	F64
)

// wireOrder is the one fixed byte order this library ever packs with.
var wireOrder = binary.BigEndian

// String returns the kind's canonical name, e.g. "i16".
func (k ScalarKind) String() string {
	switch k {
	case I8:
		return "i8"
	case U8:
		return "u8"
	case I16:
		return "i16"
	case U16:
		return "u16"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case I64:
		return "i64"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// width is the number of wire bytes the kind occupies.
func (k ScalarKind) width() int {
	switch k {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	default:
		return 0
	}
}

// isFloat reports whether the kind is f32 or f64.
func (k ScalarKind) isFloat() bool {
	return k == F32 || k == F64
}

// isSigned reports whether the kind is a signed integer.
func (k ScalarKind) isSigned() bool {
	switch k {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// structFormat returns the struct.pack-style format token §4.1 asks
// for, e.g. "i4" (the kind letter followed by its width in bytes). It
// exists for descriptor introspection; the actual encode/decode path
// below does not interpret this token, it packs directly.
func (k ScalarKind) structFormat() string {
	letter := "?"
	switch k {
	case I8, I16, I32, I64:
		letter = "i"
	case U8, U16, U32, U64:
		letter = "u"
	case F32, F64:
		letter = "f"
	}
	return letter + itoa(k.width())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// packScalar packs a native-typed scalar value (already produced by
// convertScalar) into its wire bytes.
func packScalar(k ScalarKind, v any) []byte {
	b := make([]byte, k.width())
	switch k {
	case I8:
		b[0] = byte(v.(int8))
	case U8:
		b[0] = v.(uint8)
	case I16:
		wireOrder.PutUint16(b, uint16(v.(int16)))
	case U16:
		wireOrder.PutUint16(b, v.(uint16))
	case I32:
		wireOrder.PutUint32(b, uint32(v.(int32)))
	case U32:
		wireOrder.PutUint32(b, v.(uint32))
	case I64:
		wireOrder.PutUint64(b, uint64(v.(int64)))
	case U64:
		wireOrder.PutUint64(b, v.(uint64))
	case F32:
		wireOrder.PutUint32(b, math.Float32bits(v.(float32)))
	case F64:
		wireOrder.PutUint64(b, math.Float64bits(v.(float64)))
	}
	return b
}

// unpackScalar decodes b (exactly k.width() bytes) into the kind's
// native Go type.
func unpackScalar(k ScalarKind, b []byte) any {
	switch k {
	case I8:
		return int8(b[0])
	case U8:
		return b[0]
	case I16:
		return int16(wireOrder.Uint16(b))
	case U16:
		return wireOrder.Uint16(b)
	case I32:
		return int32(wireOrder.Uint32(b))
	case U32:
		return wireOrder.Uint32(b)
	case I64:
		return int64(wireOrder.Uint64(b))
	case U64:
		return wireOrder.Uint64(b)
	case F32:
		return math.Float32frombits(wireOrder.Uint32(b))
	case F64:
		return math.Float64frombits(wireOrder.Uint64(b))
	default:
		return nil
	}
}

// integerInRange reports whether the exact integer value (i if signed,
// u if isUnsigned) fits in k's wire width, without ever comparing
// through float64 — the boundary check float64 cannot make precisely
// for I64/U64 (§8's boundary integer packing property for w=64).
func integerInRange(k ScalarKind, i int64, u uint64, isUnsigned bool) bool {
	if isUnsigned {
		switch k {
		case I8:
			return u <= math.MaxInt8
		case U8:
			return u <= math.MaxUint8
		case I16:
			return u <= math.MaxInt16
		case U16:
			return u <= math.MaxUint16
		case I32:
			return u <= math.MaxInt32
		case U32:
			return u <= math.MaxUint32
		case I64:
			return u <= math.MaxInt64
		case U64:
			return true
		default:
			return false
		}
	}
	switch k {
	case I8:
		return i >= math.MinInt8 && i <= math.MaxInt8
	case U8:
		return i >= 0 && i <= math.MaxUint8
	case I16:
		return i >= math.MinInt16 && i <= math.MaxInt16
	case U16:
		return i >= 0 && i <= math.MaxUint16
	case I32:
		return i >= math.MinInt32 && i <= math.MaxInt32
	case U32:
		return i >= 0 && i <= math.MaxUint32
	case I64:
		return true
	case U64:
		return i >= 0
	default:
		return false
	}
}

// narrowIntExact converts the exact integer value (i if signed, u if
// isUnsigned) to k's native Go type — the caller must have already
// confirmed integerInRange. Unlike narrowInt, this never passes through
// float64, so I64/U64 values above 2^53 round-trip exactly.
func narrowIntExact(k ScalarKind, i int64, u uint64, isUnsigned bool) any {
	if isUnsigned {
		switch k {
		case I8:
			return int8(u)
		case U8:
			return uint8(u)
		case I16:
			return int16(u)
		case U16:
			return uint16(u)
		case I32:
			return int32(u)
		case U32:
			return uint32(u)
		case I64:
			return int64(u)
		case U64:
			return u
		default:
			return nil
		}
	}
	switch k {
	case I8:
		return int8(i)
	case U8:
		return uint8(i)
	case I16:
		return int16(i)
	case U16:
		return uint16(i)
	case I32:
		return int32(i)
	case U32:
		return uint32(i)
	case I64:
		return i
	case U64:
		return uint64(i)
	default:
		return nil
	}
}

// scalarRange reports the inclusive [min, max] an integer kind accepts,
// as float64, for the float-truncation conversion path (a genuinely
// float-typed input is already float64-precision-bounded before this
// package sees it, so the approximate I64/U64 ends here cost nothing
// beyond what the caller's own float already lost).
func scalarRange(k ScalarKind) (min, max float64) {
	switch k {
	case I8:
		return math.MinInt8, math.MaxInt8
	case U8:
		return 0, math.MaxUint8
	case I16:
		return math.MinInt16, math.MaxInt16
	case U16:
		return 0, math.MaxUint16
	case I32:
		return math.MinInt32, math.MaxInt32
	case U32:
		return 0, math.MaxUint32
	case I64:
		return math.MinInt64, math.MaxInt64
	case U64:
		return 0, math.MaxUint64
	default:
		return 0, 0
	}
}
