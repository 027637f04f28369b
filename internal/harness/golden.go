package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as the text stored in golden files: a header,
// one line per step, a blank line, then the final form XML.
func Snapshot(name string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	for _, s := range result.Steps {
		state := "unchanged"
		if s.Changed {
			state = "changed"
		}
		fmt.Fprintf(&b, "step %d %s %s", s.Index, s.Op, state)
		if s.Published {
			b.WriteString(" published")
		}
		if s.Error != "" {
			fmt.Fprintf(&b, " error=%s", s.Error)
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(result.FormXML)
	b.WriteByte('\n')
	return []byte(b.String())
}

// RunWithGolden runs a scenario, fails the test on step or assertion
// errors and compares the snapshot with testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(name, result))
}
