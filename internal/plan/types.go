package plan

import (
	"fmt"
	"strings"
)

// DataType identifies a Siemens elementary data type.
type DataType int

const (
	TypeBool DataType = iota
	TypeByte
	TypeWord
	TypeDWord
	TypeInt
	TypeDInt
	TypeReal
)

// Width returns the number of bytes the type occupies in PLC memory.
// BOOL occupies a single bit but is addressed through its containing byte.
func (t DataType) Width() int {
	switch t {
	case TypeBool, TypeByte:
		return 1
	case TypeWord, TypeInt:
		return 2
	case TypeDWord, TypeDInt, TypeReal:
		return 4
	default:
		return 0
	}
}

func (t DataType) String() string {
	switch t {
	case TypeBool:
		return "BOOL"
	case TypeByte:
		return "BYTE"
	case TypeWord:
		return "WORD"
	case TypeDWord:
		return "DWORD"
	case TypeInt:
		return "INT"
	case TypeDInt:
		return "DINT"
	case TypeReal:
		return "REAL"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// ParseDataType maps a plan-file type name onto a DataType.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BOOL":
		return TypeBool, nil
	case "BYTE":
		return TypeByte, nil
	case "WORD":
		return TypeWord, nil
	case "DWORD":
		return TypeDWord, nil
	case "INT":
		return TypeInt, nil
	case "DINT":
		return TypeDInt, nil
	case "REAL":
		return TypeReal, nil
	default:
		return 0, fmt.Errorf("unknown data type %q", s)
	}
}

// Area selects the PLC memory area a step addresses.
type Area int

const (
	// AreaDB addresses a numbered data block. This is the default.
	AreaDB Area = iota
	// AreaMerker addresses the flag memory (M area).
	AreaMerker
)

func (a Area) String() string {
	if a == AreaMerker {
		return "M"
	}
	return "DB"
}

// ParseArea maps a plan-file area name onto an Area. The empty string
// selects the data block area.
func ParseArea(s string) (Area, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "db":
		return AreaDB, nil
	case "m", "merker":
		return AreaMerker, nil
	default:
		return 0, fmt.Errorf("unknown area %q", s)
	}
}
