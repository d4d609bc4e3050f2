package types

import (
	"encoding/binary"
	"math"
	"strconv"
)

type FloatType struct{}

func (f *FloatType) Less(this, than Value) bool {
	return this.AsFloat() < than.AsFloat()
}

func (f *FloatType) Equal(this, other Value) bool {
	return this.AsFloat() == other.AsFloat()
}

func (f *FloatType) Serialize(dst []byte, src Value) []byte {
	return binary.BigEndian.AppendUint32(dst, math.Float32bits(src.AsFloat()))
}

func (f *FloatType) Deserialize(src []byte) (Value, int, error) {
	if len(src) < 4 {
		return Value{}, 0, errShortValue
	}
	return NewFloat(math.Float32frombits(binary.BigEndian.Uint32(src))), 4, nil
}

func (f *FloatType) Length() int {
	return 4
}

func (f *FloatType) Format(v Value) string {
	return strconv.FormatFloat(float64(v.AsFloat()), 'f', -1, 32)
}
