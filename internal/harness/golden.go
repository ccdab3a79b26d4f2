package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/charsheet/internal/canonical"
	"github.com/roach88/charsheet/internal/character"
)

// TraceSnapshot captures what a scenario execution did: the steps, their
// outcomes and the resulting active log. The final memo is not part of the
// snapshot; final_state assertions cover it.
type TraceSnapshot struct {
	ScenarioName string           `json:"scenario_name"`
	Trace        []TraceEvent     `json:"trace"`
	Cursor       int              `json:"cursor"`
	Log          []character.Type `json:"log"`
}

// GoldenBytes returns the canonical JSON snapshot of a result.
func GoldenBytes(scenarioName string, result *Result) ([]byte, error) {
	return canonical.Marshal(TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Cursor:       result.Cursor,
		Log:          result.Log,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := GoldenBytes(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)

	return nil
}
