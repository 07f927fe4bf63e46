// Package predictor implements the multi-stage qualification and finish
// position prediction pipeline.
package predictor

import "errors"

var (
	// ErrModelUnavailable indicates no usable model set is loaded for a class
	ErrModelUnavailable = errors.New("prediction models unavailable")

	// ErrInsufficientHistory indicates the rider has no historical aggregates
	ErrInsufficientHistory = errors.New("insufficient rider history")

	// ErrPredictionFailed indicates a per-rider model evaluation failure
	ErrPredictionFailed = errors.New("prediction failed")
)
