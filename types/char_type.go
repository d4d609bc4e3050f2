package types

import (
	"encoding/binary"
)

// CharType compares strings byte-wise. Serialized form is a uint16 length followed by the bytes.
type CharType struct{}

func (c *CharType) Less(this, than Value) bool {
	return this.AsString() < than.AsString()
}

func (c *CharType) Equal(this, other Value) bool {
	return this.AsString() == other.AsString()
}

func (c *CharType) Serialize(dst []byte, src Value) []byte {
	str := src.AsString()
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(str)))
	return append(dst, str...)
}

func (c *CharType) Deserialize(src []byte) (Value, int, error) {
	if len(src) < 2 {
		return Value{}, 0, errShortValue
	}
	l := int(binary.BigEndian.Uint16(src))
	if len(src) < 2+l {
		return Value{}, 0, errShortValue
	}
	return NewString(string(src[2 : 2+l])), 2 + l, nil
}

func (c *CharType) Length() int {
	return 2 + MaxStringKeyLen
}

func (c *CharType) Format(v Value) string {
	return v.AsString()
}
