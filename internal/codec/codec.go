package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jmaas/s7plan/internal/plan"
)

// EncodingError reports a value that cannot be rendered at its wire width.
type EncodingError struct {
	Type   plan.DataType
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Type, e.Reason)
}

// Encode renders a typed value into its big-endian wire representation.
// BOOL values occupy bit 0 of a single byte; writers targeting another bit
// of a byte that already holds unrelated flags merge with SetBit instead of
// writing the encoded byte directly.
func Encode(v plan.Value) ([]byte, error) {
	if !v.InRange() {
		return nil, &EncodingError{Type: v.Type, Reason: fmt.Sprintf("value %s out of range", v)}
	}
	switch v.Type {
	case plan.TypeBool:
		if v.Bool {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case plan.TypeByte:
		return []byte{byte(v.Uint)}, nil
	case plan.TypeWord:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(v.Uint))
		return buf, nil
	case plan.TypeDWord:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, v.Uint)
		return buf, nil
	case plan.TypeInt:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(int16(v.Int)))
		return buf, nil
	case plan.TypeDInt:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(v.Int))
		return buf, nil
	case plan.TypeReal:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(v.Real))
		return buf, nil
	default:
		return nil, &EncodingError{Type: v.Type, Reason: "unrecognized data type"}
	}
}

// Decode reads a typed value out of buf. For BOOL the bit argument selects
// which bit of the first byte carries the flag; all other types ignore it.
func Decode(t plan.DataType, bit int, buf []byte) (plan.Value, error) {
	if len(buf) < t.Width() {
		return plan.Value{}, &EncodingError{Type: t, Reason: fmt.Sprintf("need %d bytes, have %d", t.Width(), len(buf))}
	}
	v := plan.Value{Type: t}
	switch t {
	case plan.TypeBool:
		if bit < 0 || bit > 7 {
			return plan.Value{}, &EncodingError{Type: t, Reason: fmt.Sprintf("bit index %d outside 0-7", bit)}
		}
		v.Bool = buf[0]>>bit&1 == 1
	case plan.TypeByte:
		v.Uint = uint32(buf[0])
	case plan.TypeWord:
		v.Uint = uint32(binary.BigEndian.Uint16(buf))
	case plan.TypeDWord:
		v.Uint = binary.BigEndian.Uint32(buf)
	case plan.TypeInt:
		v.Int = int32(int16(binary.BigEndian.Uint16(buf)))
	case plan.TypeDInt:
		v.Int = int32(binary.BigEndian.Uint32(buf))
	case plan.TypeReal:
		v.Real = math.Float32frombits(binary.BigEndian.Uint32(buf))
	default:
		return plan.Value{}, &EncodingError{Type: t, Reason: "unrecognized data type"}
	}
	return v, nil
}

// SetBit returns b with the selected bit set or cleared. The other seven
// bits pass through untouched, which is what keeps a lone BOOL write from
// clobbering unrelated flags in the same PLC byte.
func SetBit(b byte, bit int, on bool) byte {
	if on {
		return b | 1<<bit
	}
	return b &^ (1 << bit)
}
