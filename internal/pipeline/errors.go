package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a record missing or mangling a required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedPrediction reports a model response that is not usable text.
	ErrMalformedPrediction = errors.New("malformed prediction response")
	// ErrThresholdNotMet is the terminal failure of the filter stage.
	ErrThresholdNotMet = errors.New(ThresholdNotMetMessage)
)

// ThresholdNotMetMessage is the exact error message workflows match on.
const ThresholdNotMetMessage = "THRESHOLD_CONFIDENCE_NOT_MET"

// ThresholdError carries the best score that fell short of the threshold.
type ThresholdError struct {
	Max       float64
	Threshold float64
}

func (e *ThresholdError) Error() string {
	return ThresholdNotMetMessage
}

func (e *ThresholdError) Is(target error) bool {
	return target == ErrThresholdNotMet
}

// Detail describes the miss for logs and HTTP responses.
func (e *ThresholdError) Detail() string {
	return fmt.Sprintf("max confidence %.4f below threshold %.4f", e.Max, e.Threshold)
}
