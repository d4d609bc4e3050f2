package types

import (
	"github.com/pkg/errors"

	"pagedb/common"
)

type DataType uint8

const (
	Int DataType = iota
	String
	Float
	Bool
)

// MaxStringKeyLen bounds string keys when sizing tree nodes against a page.
const MaxStringKeyLen = 64

func (t DataType) String() string {
	switch t {
	case Int:
		return "int"
	case String:
		return "string"
	case Float:
		return "float"
	case Bool:
		return "bool"
	}
	return "unknown"
}

// DbType is implemented once per supported key type.
type DbType interface {
	Less(this, than Value) bool
	Equal(this, other Value) bool
	Serialize(dst []byte, src Value) []byte
	Deserialize(src []byte) (Value, int, error)

	// Length is the maximum size of a serialized value.
	Length() int
	Format(v Value) string
}

func GetType(t DataType) DbType {
	switch t {
	case Int:
		return &IntegerType{}
	case String:
		return &CharType{}
	case Float:
		return &FloatType{}
	case Bool:
		return &BoolType{}
	}
	return nil
}

func ParseDataType(name string) (DataType, error) {
	for _, t := range []DataType{Int, String, Float, Bool} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, errors.Wrapf(common.ErrInvalidValue, "unknown data type %q", name)
}

var errShortValue = errors.Wrap(common.ErrInvalidValue, "short read")
