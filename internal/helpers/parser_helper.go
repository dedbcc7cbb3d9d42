package helpers

import "strconv"

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func StringToUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func StringToUint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
