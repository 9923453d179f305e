// pkg/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Error kinds returned by the sizing components. Callers match them with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotConverged = errors.New("did not converge")
	ErrNonFinite    = errors.New("non-finite result")
)

// InvalidInput wraps ErrInvalidInput with the offending parameter.
func InvalidInput(param string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, param, fmt.Sprintf(format, args...))
}

// CheckFinite returns ErrNonFinite naming the first value that is NaN or infinite.
// values alternates name, float64 pairs.
func CheckFinite(component string, values ...any) error {
	for i := 0; i+1 < len(values); i += 2 {
		name, _ := values[i].(string)
		switch v := values[i+1].(type) {
		case float64:
			if !Finite(v) {
				return fmt.Errorf("%s: %w: %s = %v", component, ErrNonFinite, name, v)
			}
		case Vec3:
			if !v.IsFinite() {
				return fmt.Errorf("%s: %w: %s = %v", component, ErrNonFinite, name, v)
			}
		case Inertia:
			if !v.IsFinite() {
				return fmt.Errorf("%s: %w: %s = %v", component, ErrNonFinite, name, v)
			}
		case Tensor6:
			if !v.IsFinite() {
				return fmt.Errorf("%s: %w: %s = %v", component, ErrNonFinite, name, v)
			}
		}
	}
	return nil
}
