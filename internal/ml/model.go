// Package ml provides in-process inference over trained model artifacts.
package ml

// Model is the narrow contract every prediction backend satisfies. The
// feature-order contract agreed with the training pipeline is the real API
// surface: callers are responsible for assembling the vector in the order the
// artifact was trained with.
type Model interface {
	// Predict evaluates the model on a single feature vector. Classifiers
	// return a probability in [0,1]; regressors return a continuous value.
	Predict(features []float64) (float64, error)

	// NumFeatures returns the expected feature vector length.
	NumFeatures() int
}
