package types

import (
	"encoding/binary"
	"strconv"
)

type IntegerType struct{}

func (i *IntegerType) Less(this, than Value) bool {
	return this.AsInt() < than.AsInt()
}

func (i *IntegerType) Equal(this, other Value) bool {
	return this.AsInt() == other.AsInt()
}

func (i *IntegerType) Serialize(dst []byte, src Value) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(src.AsInt()))
}

func (i *IntegerType) Deserialize(src []byte) (Value, int, error) {
	if len(src) < 4 {
		return Value{}, 0, errShortValue
	}
	return NewInt(int32(binary.BigEndian.Uint32(src))), 4, nil
}

func (i *IntegerType) Length() int {
	return 4
}

func (i *IntegerType) Format(v Value) string {
	return strconv.FormatInt(int64(v.AsInt()), 10)
}
