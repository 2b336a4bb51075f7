package enums

import "fmt"

// OrderPartKind selects which half of an order a mutation targets.
// Frames and doors are tracked independently; a kind value dispatches
// to one explicit update path, never to a runtime-built field name.
type OrderPartKind string

const (
	OrderPartFrames OrderPartKind = "frames"
	OrderPartDoors  OrderPartKind = "doors"
)

// String implements fmt.Stringer.
func (k OrderPartKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known OrderPartKind.
func (k OrderPartKind) IsValid() bool {
	return k == OrderPartFrames || k == OrderPartDoors
}

// ParseOrderPartKind converts raw input into an OrderPartKind.
func ParseOrderPartKind(value string) (OrderPartKind, error) {
	switch OrderPartKind(value) {
	case OrderPartFrames:
		return OrderPartFrames, nil
	case OrderPartDoors:
		return OrderPartDoors, nil
	}
	return "", fmt.Errorf("invalid order part %q", value)
}
