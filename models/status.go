package models

import (
	"fmt"
	"slices"
)

func canTransition[S ~string](table map[S][]S, from, to S) bool {
	allowed, ok := table[from]
	if !ok {
		return false
	}
	return slices.Contains(allowed, to)
}

func scanStatus(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("cannot scan %T into status", src)
	}
}
