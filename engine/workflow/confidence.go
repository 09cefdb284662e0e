package workflow

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/pulsehr/pulse/engine/core"
)

// DefaultConfidence is assumed when a unit output exposes no confidence at all.
const DefaultConfidence = 0.8

// ConfidenceReporter is an optional capability a Unit can implement to state
// the confidence of an output explicitly instead of having the orchestrator
// probe the output's shape.
type ConfidenceReporter interface {
	ConfidenceOf(out core.Output) (float64, bool)
}

// WarningsReporter is an optional capability a Unit can implement to surface
// warnings attached to an output explicitly.
type WarningsReporter interface {
	WarningsOf(out core.Output) []string
}

// AggregateConfidence returns the mean of every confidence value found in
// the output: a top-level "confidence" number plus any sub-result carrying
// one (e.g. learningPath.confidence, progressAnalysis.confidence). Outputs
// with no confidence at all yield DefaultConfidence. The result is clamped
// to [0, 1].
func AggregateConfidence(out core.Output) float64 {
	res, ok := parseOutput(out)
	if !ok {
		return DefaultConfidence
	}
	var sum float64
	var n int
	collect := func(v gjson.Result) {
		if v.Exists() && v.Type == gjson.Number {
			sum += v.Float()
			n++
		}
	}
	collect(res.Get("confidence"))
	res.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			collect(v.Get("confidence"))
		}
		return true
	})
	if n == 0 {
		return DefaultConfidence
	}
	return clamp01(sum / float64(n))
}

// ExtractWarnings collects warning strings from the output: a top-level
// "warnings" list plus any sub-result carrying one.
func ExtractWarnings(out core.Output) []string {
	res, ok := parseOutput(out)
	if !ok {
		return nil
	}
	var warnings []string
	collect := func(v gjson.Result) {
		if !v.IsArray() {
			return
		}
		for _, w := range v.Array() {
			if w.Type == gjson.String {
				warnings = append(warnings, w.String())
			}
		}
	}
	collect(res.Get("warnings"))
	res.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			collect(v.Get("warnings"))
		}
		return true
	})
	return warnings
}

func parseOutput(out core.Output) (gjson.Result, bool) {
	if len(out) == 0 {
		return gjson.Result{}, false
	}
	data, err := json.Marshal(out)
	if err != nil {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(data), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
