package compiler

// Type is the static type of a variable or expression.
type Type int

const (
	TypeUnknown Type = iota // not yet checked
	TypeInt
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// typeFromKeyword maps a declaration keyword onto its Type.
func typeFromKeyword(tt TokenType) (Type, bool) {
	switch tt {
	case INT:
		return TypeInt, true
	case BOOL:
		return TypeBool, true
	}
	return TypeUnknown, false
}
