package common

import "fmt"

func PanicIfErr(err error) {
	if err != nil {
		panic(err)
	}
}

// Assert panics with the formatted message when cond does not hold. It guards internal invariants only; expected
// failures are returned as errors.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// CeilHalf returns ⌈n/2⌉.
func CeilHalf(n int) int {
	if n%2 == 0 {
		return n / 2
	}
	return n/2 + 1
}
