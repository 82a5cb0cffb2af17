package solar

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when inputs fail validation. Validation
// runs before any computation, so a pipeline never fails mid-integration
// on malformed input.
var ErrInvalidInput = errors.New("invalid input")

func validateEfficiency(efficiency float64) error {
	if efficiency <= 0 || efficiency > 1 {
		return fmt.Errorf("%w: efficiency %.4f outside (0, 1]", ErrInvalidInput, efficiency)
	}
	return nil
}

// Validate checks both tilt angles against [-90, 90]. Callers that
// accept an orientation from outside should call this before starting
// any expensive work; Integrate applies the same check itself.
func (o PanelOrientation) Validate() error {
	return validateOrientation(o)
}

func validateOrientation(o PanelOrientation) error {
	if o.EWTilt < -90 || o.EWTilt > 90 {
		return fmt.Errorf("%w: east-west tilt %.2f outside [-90, 90]", ErrInvalidInput, o.EWTilt)
	}
	if o.NSTilt < -90 || o.NSTilt > 90 {
		return fmt.Errorf("%w: north-south tilt %.2f outside [-90, 90]", ErrInvalidInput, o.NSTilt)
	}
	return nil
}
