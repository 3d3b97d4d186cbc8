package common

import (
	"encoding/binary"
	"io"
)

func WriteUint32(v uint32, w io.Writer) (n int64, err error) {
	if err = binary.Write(w, binary.LittleEndian, v); err != nil {
		return
	}
	return 4, nil
}

func WriteUint64(v uint64, w io.Writer) (n int64, err error) {
	if err = binary.Write(w, binary.LittleEndian, v); err != nil {
		return
	}
	return 8, nil
}

func WriteUint64s(vs []uint64, w io.Writer) (n int64, err error) {
	if err = binary.Write(w, binary.LittleEndian, vs); err != nil {
		return
	}
	return int64(8 * len(vs)), nil
}
