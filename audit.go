package itembank

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jward/itembank/internal/runtime"
	"github.com/jward/itembank/scripts"
)

// AuditReport is what the audit script counted among generated data.
type AuditReport struct {
	Generation string
	Trees      int
	Nodes      int
	Lists      int
	Elements   int
	Classes    int
	Properties int
}

// Audit runs the bundled audit script against the repository. It fails when
// a generated tree node lacks an origin id, a member of a generated tree or
// list lacks the provenance tag, or a generated property has no range.
func (in *Installer) Audit(ctx context.Context) (*AuditReport, error) {
	result, err := in.runtime.EvalScript(ctx, scripts.AuditScript, nil)
	if err != nil {
		return nil, fmt.Errorf("itembank: audit: %w", err)
	}
	counts, ok := runtime.ToGo(result).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("itembank: audit: unexpected result %s", result.Inspect())
	}
	report := &AuditReport{
		Trees:      intOf(counts["trees"]),
		Nodes:      intOf(counts["nodes"]),
		Lists:      intOf(counts["lists"]),
		Elements:   intOf(counts["elements"]),
		Classes:    intOf(counts["classes"]),
		Properties: intOf(counts["properties"]),
	}
	report.Generation, _ = counts["generation"].(string)
	return report, nil
}

// RunScript runs a Risor script from disk with the audit globals and returns
// the value of its final expression converted to Go values. Imports resolve
// relative to the script's directory.
func (in *Installer) RunScript(ctx context.Context, path string, globals map[string]any) (any, error) {
	rt := runtime.NewRuntime(in.store, filepath.Dir(path),
		runtime.WithRuntimeLogger(in.logger),
		runtime.WithGenerator(in.generator))
	result, err := rt.EvalScript(ctx, filepath.Base(path), globals)
	if err != nil {
		return nil, fmt.Errorf("itembank: %w", err)
	}
	return runtime.ToGo(result), nil
}

func intOf(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
