package common

import "math"

const MaxTxnID = math.MaxUint64

func CompareUint64(left, right uint64) int {
	if left > right {
		return 1
	} else if left < right {
		return -1
	}
	return 0
}
