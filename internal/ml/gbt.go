package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Objective names accepted in artifact files.
const (
	ObjectiveBinaryLogistic = "binary:logistic"
	ObjectiveSquaredError   = "reg:squarederror"
)

// TreeNode is one node of a regression tree. Interior nodes route on
// features[Feature] < Threshold; leaves carry the additive output value.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a single regression tree stored as a flat node array rooted at 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// GradientBoostedModel evaluates a serialized gradient-boosted tree ensemble.
// The raw score is the base score plus the sum of every tree's leaf output;
// the binary:logistic objective squashes it through a sigmoid.
type GradientBoostedModel struct {
	Objective    string  `json:"objective"`
	BaseScore    float64 `json:"base_score"`
	FeatureCount int     `json:"num_features"`
	Trees        []Tree  `json:"trees"`
}

// LoadGradientBoostedModel reads and validates a JSON artifact file.
func LoadGradientBoostedModel(path string) (*GradientBoostedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, path)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	return ParseGradientBoostedModel(data)
}

// ParseGradientBoostedModel parses a JSON-serialized ensemble.
func ParseGradientBoostedModel(data []byte) (*GradientBoostedModel, error) {
	model := &GradientBoostedModel{}
	if err := json.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func (m *GradientBoostedModel) validate() error {
	if len(m.Trees) == 0 {
		return ErrEmptyEnsemble
	}
	if m.FeatureCount <= 0 {
		return fmt.Errorf("%w: non-positive feature count", ErrInvalidArtifact)
	}
	switch m.Objective {
	case ObjectiveBinaryLogistic, ObjectiveSquaredError:
	default:
		return fmt.Errorf("%w: unknown objective %q", ErrInvalidArtifact, m.Objective)
	}
	for ti, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d has no nodes", ErrInvalidArtifact, ti)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= m.FeatureCount {
				return fmt.Errorf("%w: tree %d node %d references feature %d", ErrInvalidArtifact, ti, ni, node.Feature)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("%w: tree %d node %d has out-of-range child", ErrInvalidArtifact, ti, ni)
			}
		}
	}
	return nil
}

// Predict evaluates the ensemble on one feature vector.
func (m *GradientBoostedModel) Predict(features []float64) (float64, error) {
	if len(features) != m.FeatureCount {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, len(features), m.FeatureCount)
	}

	score := m.BaseScore
	for i := range m.Trees {
		leaf, err := m.Trees[i].evaluate(features)
		if err != nil {
			return 0, err
		}
		score += leaf
	}

	if m.Objective == ObjectiveBinaryLogistic {
		return sigmoid(score), nil
	}
	return score, nil
}

// NumFeatures returns the expected feature vector length.
func (m *GradientBoostedModel) NumFeatures() int {
	return m.FeatureCount
}

func (t *Tree) evaluate(features []float64) (float64, error) {
	idx := 0
	// Bounded walk: a well-formed tree terminates within len(Nodes) hops.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.Leaf {
			return node.Value, nil
		}
		if features[node.Feature] < node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0, fmt.Errorf("%w: cycle detected during tree walk", ErrInvalidArtifact)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
