package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/sortviz/internal/ir"
)

// marshalValues converts an integer sequence to canonical JSON TEXT.
func marshalValues(values []int) (string, error) {
	if values == nil {
		values = []int{}
	}
	data, err := ir.MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("marshal values: %w", err)
	}
	return string(data), nil
}

// unmarshalValues parses canonical JSON TEXT to an integer sequence.
func unmarshalValues(data string) ([]int, error) {
	if data == "" || data == "[]" {
		return []int{}, nil
	}
	var values []int
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal values: %w", err)
	}
	return values, nil
}
