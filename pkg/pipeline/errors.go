package pipeline

import "fmt"

// StructureNotFoundError reports an ROI name with no case-insensitive
// match in the structure set.
type StructureNotFoundError struct {
	Name string
}

func (e *StructureNotFoundError) Error() string {
	return fmt.Sprintf("structure %q not found in structure set", e.Name)
}
