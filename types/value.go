package types

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"pagedb/common"
)

// Value is a typed key. Values of different types never compare equal.
type Value struct {
	dt    DataType
	value any
}

func NewInt(v int32) Value {
	return Value{dt: Int, value: v}
}

func NewFloat(v float32) Value {
	return Value{dt: Float, value: v}
}

func NewString(v string) Value {
	return Value{dt: String, value: v}
}

func NewBool(v bool) Value {
	return Value{dt: Bool, value: v}
}

func (v Value) Type() DataType {
	return v.dt
}

func (v Value) AsInt() int32 {
	return v.value.(int32)
}

func (v Value) AsFloat() float32 {
	return v.value.(float32)
}

func (v Value) AsString() string {
	return v.value.(string)
}

func (v Value) AsBool() bool {
	return v.value.(bool)
}

// Validate reports values that cannot be stored as keys: the zero Value, NaN floats and strings longer than
// MaxStringKeyLen.
func (v Value) Validate() error {
	if GetType(v.dt) == nil || v.value == nil {
		return errors.Wrap(common.ErrInvalidValue, "value has no payload")
	}
	switch v.dt {
	case Float:
		if math.IsNaN(float64(v.AsFloat())) {
			return errors.Wrap(common.ErrInvalidValue, "NaN is not comparable")
		}
	case String:
		if l := len(v.AsString()); l > MaxStringKeyLen {
			return errors.Wrapf(common.ErrInvalidValue, "string of %d bytes exceeds %d", l, MaxStringKeyLen)
		}
	}
	return nil
}

func (v Value) Less(than Value) bool {
	return v.dt == than.dt && GetType(v.dt).Less(v, than)
}

func (v Value) Greater(than Value) bool {
	return than.Less(v)
}

func (v Value) Equal(other Value) bool {
	return v.dt == other.dt && GetType(v.dt).Equal(v, other)
}

// AppendBinary appends the serialized value to dst.
func (v Value) AppendBinary(dst []byte) []byte {
	return GetType(v.dt).Serialize(dst, v)
}

// DecodeValue reads a value of type t from src and reports how many bytes it used.
func DecodeValue(t DataType, src []byte) (Value, int, error) {
	dbType := GetType(t)
	if dbType == nil {
		return Value{}, 0, errors.Wrapf(common.ErrInvalidValue, "data type %d", t)
	}
	return dbType.Deserialize(src)
}

// String renders the value in the literal format Parse accepts, e.g. i10, f2.5, sabc, btrue.
func (v Value) String() string {
	dbType := GetType(v.dt)
	if dbType == nil || v.value == nil {
		return "<nil>"
	}

	prefix := map[DataType]string{Int: "i", Float: "f", String: "s", Bool: "b"}[v.dt]
	return prefix + dbType.Format(v)
}

// Parse converts a literal whose first character names the type: i for int, f for float, s for string and b for
// bool. Bool accepts t/true/f/false in any case.
func Parse(literal string) (Value, error) {
	if literal == "" {
		return Value{}, errors.Wrap(common.ErrInvalidValue, "empty literal")
	}

	body := literal[1:]
	switch literal[0] {
	case 'i':
		n, err := strconv.ParseInt(body, 10, 32)
		if err != nil {
			return Value{}, errors.Wrapf(common.ErrInvalidValue, "%q: %v", literal, err)
		}
		return NewInt(int32(n)), nil
	case 'f':
		f, err := strconv.ParseFloat(body, 32)
		if err != nil {
			return Value{}, errors.Wrapf(common.ErrInvalidValue, "%q: %v", literal, err)
		}
		if math.IsNaN(f) {
			return Value{}, errors.Wrapf(common.ErrInvalidValue, "%q is NaN", literal)
		}
		return NewFloat(float32(f)), nil
	case 's':
		return NewString(body), nil
	case 'b':
		switch strings.ToLower(body) {
		case "t", "true":
			return NewBool(true), nil
		case "f", "false":
			return NewBool(false), nil
		}
	}
	return Value{}, errors.Wrapf(common.ErrInvalidValue, "%q", literal)
}

// MustParse is Parse for literals known to be valid, such as test fixtures.
func MustParse(literal string) Value {
	v, err := Parse(literal)
	common.PanicIfErr(err)
	return v
}
