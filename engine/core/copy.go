package core

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// deepCopyMap returns a deep copy of the provided map[string]any.
func deepCopyMap(m map[string]any) (map[string]any, error) {
	copiedInterface := deepcopy.Copy(m)
	copied, ok := copiedInterface.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to copy map")
	}
	return copied, nil
}

// DeepCopy creates a deep copy of the supplied value, preserving the
// concrete Input/Output types instead of devolving into a plain map.
// Nil Input/Output values are treated as absent and return the zero value.
func DeepCopy[T any](v T) (T, error) {
	var zero T

	switch src := any(v).(type) {
	case Input:
		if src == nil {
			return zero, nil
		}
		copied, err := deepCopyMap(map[string]any(src))
		if err != nil {
			return zero, fmt.Errorf("failed to copy Input type: %w", err)
		}
		result, ok := any(Input(copied)).(T)
		if !ok {
			return zero, fmt.Errorf("failed to cast Input to type %T", zero)
		}
		return result, nil
	case Output:
		if src == nil {
			return zero, nil
		}
		copied, err := deepCopyMap(map[string]any(src))
		if err != nil {
			return zero, fmt.Errorf("failed to copy Output type: %w", err)
		}
		result, ok := any(Output(copied)).(T)
		if !ok {
			return zero, fmt.Errorf("failed to cast Output to type %T", zero)
		}
		return result, nil
	default:
		copied, ok := deepcopy.Copy(v).(T)
		if !ok {
			return zero, fmt.Errorf("failed to copy value of type %T", zero)
		}
		return copied, nil
	}
}
