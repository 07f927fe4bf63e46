package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stumpModel builds a single-tree ensemble splitting on feature 0.
func stumpModel(objective string, threshold, below, above float64, numFeatures int) *GradientBoostedModel {
	return &GradientBoostedModel{
		Objective:    objective,
		FeatureCount: numFeatures,
		Trees: []Tree{
			{Nodes: []TreeNode{
				{Feature: 0, Threshold: threshold, Left: 1, Right: 2},
				{Leaf: true, Value: below},
				{Leaf: true, Value: above},
			}},
		},
	}
}

func TestGradientBoostedModelRegression(t *testing.T) {
	model := stumpModel(ObjectiveSquaredError, 5.0, 3.0, 12.0, 2)

	low, err := model.Predict([]float64{2.0, 0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, low)

	high, err := model.Predict([]float64{8.0, 0})
	require.NoError(t, err)
	assert.Equal(t, 12.0, high)
}

func TestGradientBoostedModelLogistic(t *testing.T) {
	model := stumpLogistic(t)

	p, err := model.Predict([]float64{10.0})
	require.NoError(t, err)
	assert.Greater(t, p, 0.5)
	assert.LessOrEqual(t, p, 1.0)

	p, err = model.Predict([]float64{-10.0})
	require.NoError(t, err)
	assert.Less(t, p, 0.5)
	assert.GreaterOrEqual(t, p, 0.0)
}

func stumpLogistic(t *testing.T) *GradientBoostedModel {
	t.Helper()
	return stumpModel(ObjectiveBinaryLogistic, 0.0, -2.0, 2.0, 1)
}

func TestGradientBoostedModelSumsTrees(t *testing.T) {
	model := &GradientBoostedModel{
		Objective:    ObjectiveSquaredError,
		BaseScore:    1.0,
		FeatureCount: 1,
		Trees: []Tree{
			{Nodes: []TreeNode{{Leaf: true, Value: 2.0}}},
			{Nodes: []TreeNode{{Leaf: true, Value: 3.5}}},
		},
	}

	got, err := model.Predict([]float64{0})
	require.NoError(t, err)
	assert.InDelta(t, 6.5, got, 1e-9)
}

func TestGradientBoostedModelFeatureMismatch(t *testing.T) {
	model := stumpModel(ObjectiveSquaredError, 0, 0, 0, 3)

	_, err := model.Predict([]float64{1.0})
	assert.ErrorIs(t, err, ErrFeatureMismatch)
}

func TestParseGradientBoostedModel(t *testing.T) {
	data := []byte(`{
		"objective": "binary:logistic",
		"base_score": 0.1,
		"num_features": 5,
		"trees": [
			{"nodes": [
				{"feature": 1, "threshold": 8.5, "left": 1, "right": 2},
				{"leaf": true, "value": 1.2},
				{"leaf": true, "value": -0.4}
			]}
		]
	}`)

	model, err := ParseGradientBoostedModel(data)
	require.NoError(t, err)
	assert.Equal(t, 5, model.NumFeatures())
	assert.Len(t, model.Trees, 1)
}

func TestParseGradientBoostedModelRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{`},
		{"no trees", `{"objective":"reg:squarederror","num_features":2,"trees":[]}`},
		{"bad objective", `{"objective":"rank:pairwise","num_features":2,"trees":[{"nodes":[{"leaf":true}]}]}`},
		{"zero features", `{"objective":"reg:squarederror","num_features":0,"trees":[{"nodes":[{"leaf":true}]}]}`},
		{"feature out of range", `{"objective":"reg:squarederror","num_features":1,"trees":[{"nodes":[{"feature":4,"left":1,"right":1},{"leaf":true}]}]}`},
		{"child out of range", `{"objective":"reg:squarederror","num_features":1,"trees":[{"nodes":[{"feature":0,"left":9,"right":1},{"leaf":true}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGradientBoostedModel([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
