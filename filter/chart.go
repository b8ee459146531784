// Package filter selects chart points with expr-lang expressions.
//
// Every chart entry is evaluated with its fields as variables, so the expression
// `sysOut != "0"` keeps the points where the system produced output. Fields that an
// entry lacks evaluate to nil rather than failing.
package filter

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/mixwatch/growatt"
)

// DefaultExpression keeps the chart points with non-zero system output
const DefaultExpression = `sysOut != "0"`

var programs = newProgramCache(64)

// envPool recycles the per-entry variable maps
var envPool = sync.Pool{
	New: func() any { return make(map[string]any, 32) },
}

// Entry is one chart point
type Entry struct {
	Time   string
	Fields growatt.Value
}

// ChartFilter is a compiled chart filter expression
type ChartFilter struct {
	program *vm.Program
	expr    string
}

// helpers are available to every expression. Built once; never modified.
var helpers = map[string]any{
	"num":      num,
	"contains": containsFold,
	"lower":    strings.ToLower,
	"upper":    strings.ToUpper,
}

// num parses a reading, yielding 0 for anything that is not a number
func num(v any) float64 {
	switch typed := v.(type) {
	case float64:
		return typed
	case int:
		return float64(typed)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func containsFold(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}

// Compile compiles a filter expression. An empty expression matches every entry.
func Compile(expression string) (*ChartFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		expression = "true"
	}

	if program, ok := programs.Get(expression); ok {
		return &ChartFilter{program: program, expr: expression}, nil
	}

	env := maps.Clone(helpers)
	env["Time"] = ""

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, newCompilationError(expression, err)
	}

	programs.Put(expression, program)
	return &ChartFilter{program: program, expr: expression}, nil
}

// String returns the expression source
func (f *ChartFilter) String() string {
	return f.expr
}

// Match evaluates the filter against one entry
func (f *ChartFilter) Match(e Entry) (bool, error) {
	env := envPool.Get().(map[string]any)
	defer func() {
		clear(env)
		envPool.Put(env)
	}()

	for _, key := range e.Fields.Keys() {
		env[key] = scalar(e.Fields.Get(key))
	}
	// Helpers shadow chart fields of the same name
	maps.Copy(env, helpers)
	env["Time"] = e.Time

	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expr, Time: e.Time, Fields: e.Fields, Err: err}
	}
	matched, ok := out.(bool)
	if !ok {
		return false, &EvaluationError{Expression: f.expr, Time: e.Time, Fields: e.Fields, Err: fmt.Errorf("%w: %v", ErrNotBool, out)}
	}
	return matched, nil
}

// Apply returns the matching entries of a chart in time order. It accepts either the
// chart document itself or a response carrying it under "chartData".
func (f *ChartFilter) Apply(chart growatt.Value) ([]Entry, error) {
	var matched []Entry
	for _, entry := range Entries(chart) {
		ok, err := f.Match(entry)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// Entries lists the points of a chart sorted by their time key.
func Entries(chart growatt.Value) []Entry {
	if chart.Has("chartData") {
		chart = chart.Get("chartData")
	}

	keys := chart.Keys()
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, Entry{Time: key, Fields: chart.Get(key)})
	}
	return entries
}

// scalar converts a JSON value into what expressions compare against. Strings stay
// strings, since Growatt sends most numbers quoted.
func scalar(v growatt.Value) any {
	switch v.Kind() {
	case growatt.KindString:
		return v.Str()
	case growatt.KindNumber:
		f, _ := v.Float()
		return f
	case growatt.KindBool:
		b, _ := v.Bool()
		return b
	case growatt.KindNull:
		return nil
	default:
		return v.Interface()
	}
}
