package streamsvc

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/rzbill/flostream/internal/streamlog"
)

// celFilter wraps a compiled CEL program evaluated against stream entries.
// When disabled, Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("ms", cel.IntType),
		cel.Variable("seq", cel.IntType),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.StringType)),
		// Current time in ms for windowed filters
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return celFilter{}, errNotBool
	}
	prog, err := env.Program(ast)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against an entry. Evaluation errors
// (missing map keys, overflow) count as a non-match.
func (f celFilter) Eval(e streamlog.Entry, nowMs int64) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":     e.ID.String(),
		"ms":     int64(e.ID.Ms),
		"seq":    int64(e.ID.Seq),
		"fields": e.Map(),
		"now_ms": nowMs,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
