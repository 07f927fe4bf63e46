// Package ml provides in-process inference over trained model artifacts.
package ml

import "errors"

var (
	// ErrModelUnavailable indicates no artifact exists for a (class, type) key
	ErrModelUnavailable = errors.New("model artifact unavailable")

	// ErrInvalidArtifact indicates the artifact file could not be parsed
	ErrInvalidArtifact = errors.New("invalid model artifact")

	// ErrFeatureMismatch indicates the feature vector length does not match the model
	ErrFeatureMismatch = errors.New("feature vector length mismatch")

	// ErrEmptyEnsemble indicates the artifact contains no trees
	ErrEmptyEnsemble = errors.New("artifact contains no trees")
)
