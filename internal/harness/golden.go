package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden fixture payload: the scenario name, the
// committed trace, and the final unit states. Snapshots are stored as
// indented JSON so diffs stay reviewable.
type TraceSnapshot struct {
	ScenarioName string               `json:"scenario_name"`
	Trace        []TraceEvent         `json:"trace"`
	Final        map[string]UnitState `json:"final"`
}

// RunWithGolden executes a scenario and compares its trace snapshot
// against the stored golden fixture. Update fixtures with `go test
// -update ./...`.
func RunWithGolden(t *testing.T, sc *Scenario) *Result {
	t.Helper()

	result, err := Run(sc)
	if err != nil {
		t.Fatalf("run scenario %s: %v", sc.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", sc.Name, msg)
	}

	snapshot := TraceSnapshot{
		ScenarioName: sc.Name,
		Trace:        result.Trace,
		Final:        result.Final,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, data)

	return result
}
