package types

// BoolType has no order. Less is always false so booleans only ever compare equal or not equal.
type BoolType struct{}

func (b *BoolType) Less(Value, Value) bool {
	return false
}

func (b *BoolType) Equal(this, other Value) bool {
	return this.AsBool() == other.AsBool()
}

func (b *BoolType) Serialize(dst []byte, src Value) []byte {
	if src.AsBool() {
		return append(dst, 1)
	}
	return append(dst, 0)
}

func (b *BoolType) Deserialize(src []byte) (Value, int, error) {
	if len(src) < 1 {
		return Value{}, 0, errShortValue
	}
	return NewBool(src[0] != 0), 1, nil
}

func (b *BoolType) Length() int {
	return 1
}

func (b *BoolType) Format(v Value) string {
	if v.AsBool() {
		return "true"
	}
	return "false"
}
