// Package classify owns the trainable risk model for monitored executions.
// The model is always usable: the constructor fits on a hardcoded seed set
// so predictions work before any real telemetry exists.
package classify

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/programme-lv/analyzer/api"
	"github.com/programme-lv/analyzer/internal/features"
)

type Label string

const (
	Benign    Label = "Benign"
	Buggy     Label = "Buggy"
	Malicious Label = "Malicious"
)

var classes = []Label{Benign, Buggy, Malicious}

// minTrainRows guards against refitting the model on noise-sized batches.
const minTrainRows = 5

var featureNames = []string{
	"runtime_ms",
	"cpu_usage_percent",
	"memory_peak_kb",
	"page_faults_minor",
	"page_faults_major",
}

// Seed archetypes: trivial short process, normal computation, CPU-bound
// loop, memory-exhausting process, fork-bomb-like high-fault process.
// They keep the decision boundary non-degenerate with zero real examples.
var seedVectors = [][]float64{
	{10, 5, 200, 10, 0},
	{50, 10, 1024, 50, 0},
	{5000, 99, 1024, 100, 0},
	{100, 10, 512000, 5000, 10},
	{200, 30, 400, 10000, 0},
}

var seedLabels = []Label{Benign, Benign, Malicious, Malicious, Malicious}

type Classifier struct {
	mu      sync.Mutex
	scaler  *scaler
	forest  *forest
	fitted  bool
	retrain int

	rules Rules
}

type Prediction struct {
	Label      Label
	Confidence float64 // percent, one decimal place
}

func New(rules Rules) *Classifier {
	c := &Classifier{rules: rules}
	c.mu.Lock()
	c.fitLocked(nil, nil)
	c.mu.Unlock()
	return c
}

// DeriveLabel is the training-label oracle. It shares string tokens with
// the explanation rules but is kept separate on purpose: the two layers are
// allowed to disagree.
func DeriveLabel(exitReason string) Label {
	if strings.Contains(exitReason, "VIOLATION") {
		return Malicious
	}
	if strings.Contains(exitReason, "SIGNALED") {
		return Buggy
	}
	return Benign
}

// Train refits the scaler and forest on the seed set plus every supplied
// row. Fewer than minTrainRows rows is a silent no-op that keeps the
// previous fit. The full combined refit keeps the seed archetypes
// influencing the boundary on every retrain.
func (c *Classifier) Train(rows []features.Row) {
	if len(rows) < minTrainRows {
		return
	}

	vectors := make([][]float64, 0, len(rows))
	labels := make([]Label, 0, len(rows))
	for _, row := range rows {
		vectors = append(vectors, featureVector(row))
		labels = append(labels, DeriveLabel(row.ExitReason))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fitLocked(vectors, labels)
	c.retrain++
}

// fitLocked fits on seed + real rows. Callers hold c.mu.
func (c *Classifier) fitLocked(vectors [][]float64, labels []Label) {
	combinedX := make([][]float64, 0, len(seedVectors)+len(vectors))
	combinedX = append(combinedX, seedVectors...)
	combinedX = append(combinedX, vectors...)

	combinedY := make([]int, 0, len(seedLabels)+len(labels))
	for _, l := range seedLabels {
		combinedY = append(combinedY, classIndex(l))
	}
	for _, l := range labels {
		combinedY = append(combinedY, classIndex(l))
	}

	c.scaler = fitScaler(combinedX)
	scaled := make([][]float64, len(combinedX))
	for i, x := range combinedX {
		scaled[i] = c.scaler.transform(x)
	}

	c.forest = fitForest(scaled, combinedY, len(classes), defaultForestParams())
	c.fitted = true
}

// Predict classifies a single run from the five raw signals. The derived
// signals (growth rate, cpu variance) are intentionally not inputs.
func (c *Classifier) Predict(row features.Row) (Prediction, error) {
	x := featureVector(row)
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Prediction{}, fmt.Errorf("feature %s is not finite", featureNames[i])
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fitted {
		// unreachable given New, kept as a safety net
		c.fitLocked(nil, nil)
	}

	probs := c.forest.predictProba(c.scaler.transform(x))
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}

	return Prediction{
		Label:      classes[best],
		Confidence: math.Round(probs[best]*1000) / 10,
	}, nil
}

// Explain runs the rule-based cross-check for a row.
func (c *Classifier) Explain(row features.Row) string {
	return c.rules.Explain(row)
}

func (c *Classifier) Info() api.ModelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return api.ModelInfo{
		Kind:      "random_forest",
		Features:  append([]string(nil), featureNames...),
		IsTrained: c.fitted,
	}
}

// Retrains reports how many times real telemetry has been fit on top of
// the seed set.
func (c *Classifier) Retrains() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retrain
}

func featureVector(row features.Row) []float64 {
	return []float64{
		row.RuntimeMs,
		row.PeakCpu,
		row.PeakMemoryKb,
		row.PageFaultsMinor,
		row.PageFaultsMajor,
	}
}

func classIndex(l Label) int {
	for i, c := range classes {
		if c == l {
			return i
		}
	}
	return 0
}
