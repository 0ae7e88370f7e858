package pixfx

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/soypat/geometry/ms2"
)

// Control represents an editable parameter of a filter or effect.
// When Value is modified via OnChange, the owner updates its state immediately.
type Control interface {
	// Display/human readable name and description.
	Describe() (name, description string)
	// ActualValue returns the current value of the control.
	ActualValue() any
	// ChangeValue attempts to update the ActualValue to newValue.
	ChangeValue(newValue any) error
}

// Resetter is implemented by controls that have a neutral value.
type Resetter interface {
	Reset() error
}

// ControlOrdered maps to a slider. Neutral is the value at which the
// control has no effect. When Get is set it reports the owner's current
// value and Value is only a record of the last change made through the control.
type ControlOrdered[T cmp.Ordered] struct {
	Name        string
	Description string
	Value       T
	Neutral     T
	Min         T
	Max         T
	Step        T
	OnChange    func(T) error
	Get         func() T
}

func (co *ControlOrdered[T]) Describe() (name, description string) {
	return co.Name, co.Description
}
func (co *ControlOrdered[T]) ActualValue() any {
	if co.Get != nil {
		return co.Get()
	}
	return co.Value
}
func (co *ControlOrdered[T]) ChangeValue(newValue any) error {
	v, ok := newValue.(T)
	if !ok {
		return fmt.Errorf("new value %T not of type %T", newValue, co.Value)
	}
	if v < co.Min || v > co.Max {
		return fmt.Errorf("new value %v exceeds limits %v..%v", v, co.Min, co.Max)
	}
	if co.OnChange != nil {
		if err := co.OnChange(v); err != nil {
			return err
		}
	}
	co.Value = v
	return nil
}

// Reset changes the value back to Neutral.
func (co *ControlOrdered[T]) Reset() error { return co.ChangeValue(co.Neutral) }

type integer interface {
	~int | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64
}

// enum best generated with stringer commands.
type enum interface {
	integer
	fmt.Stringer
}

// ControlEnum maps to dropdown kind of list. Get behaves as in [ControlOrdered].
type ControlEnum[T enum] struct {
	Name        string
	Description string
	Value       T
	ValidValues []T
	OnChange    func(T) error
	Get         func() T
}

func (ce *ControlEnum[T]) Describe() (name, description string) {
	return ce.Name, ce.Description
}
func (ce *ControlEnum[T]) ActualValue() any {
	if ce.Get != nil {
		return ce.Get()
	}
	return ce.Value
}
func (ce *ControlEnum[T]) ChangeValue(newValue any) error {
	v, ok := newValue.(T)
	if !ok {
		return fmt.Errorf("new value %T not of type %T", newValue, ce.Value)
	}
	if !slices.Contains(ce.ValidValues, v) {
		return fmt.Errorf("value %v of %T not valid", v, v)
	}
	if ce.OnChange != nil {
		if err := ce.OnChange(v); err != nil {
			return err
		}
	}
	ce.Value = v
	return nil
}

// CurvePoint is a point of a normalized curve.
// X represents input (0-1), Y represents output (0-1).
type CurvePoint = ms2.Vec
