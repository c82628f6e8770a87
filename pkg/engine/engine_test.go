package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chazu/brushwork/pkg/graph"
)

func TestEvaluateWithoutNodes(t *testing.T) {
	sources := map[string]string{
		"empty":        "",
		"whitespace":   "   \n\t  \n  ",
		"arithmetic":   "(+ 1 2)",
		"comment only": ";; nothing to build\n(+ 1 2)",
		"definitions":  "(def x 10)\n(def y 20)\n(+ x y)",
	}
	eng := NewEngine()
	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(source)
			if err != nil || len(evalErrs) > 0 {
				t.Fatalf("Evaluate() = %v, %v", evalErrs, err)
			}
			if g == nil || g.NodeCount() != 0 || len(g.Roots) != 0 {
				t.Errorf("Evaluate() graph = %v, want an empty graph", g)
			}
		})
	}
}

func TestEvaluateScriptErrors(t *testing.T) {
	sources := map[string]string{
		"unmatched paren":      "(+ 1 2",
		"undefined symbol":     "(+ 1 undefined-symbol)",
		"error on second line": "(+ 1 2)\n(+ 3",
		"bad builtin call":     `(cuboid "box" :size 12)`,
	}
	eng := NewEngine()
	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			g, evalErrs, err := eng.Evaluate(source)
			if err != nil {
				t.Fatalf("Evaluate() fatal error = %v, want script errors only", err)
			}
			if g != nil {
				t.Error("Evaluate() returned a graph alongside script errors")
			}
			if len(evalErrs) != 1 || evalErrs[0].Message == "" {
				t.Fatalf("Evaluate() errors = %v, want one with a message", evalErrs)
			}
			if evalErrs[0].Line < 0 {
				t.Errorf("Line = %d", evalErrs[0].Line)
			}
		})
	}
}

func TestBuiltinErrorNamesTheBuiltin(t *testing.T) {
	_, evalErrs, err := NewEngine().Evaluate(`(prism "p" :sides "six")`)
	if err != nil || len(evalErrs) == 0 {
		t.Fatalf("Evaluate() = %v, %v", evalErrs, err)
	}
	if msg := evalErrs[0].Message; !strings.Contains(msg, "prism: sides") {
		t.Errorf("Message = %q, want it to name prism and the sides argument", msg)
	}
}

func TestEvalErrorString(t *testing.T) {
	tests := []struct {
		err  EvalError
		want string
	}{
		{EvalError{Line: 5, Col: 3, Message: "bad token"}, "line 5:3: bad token"},
		{EvalError{Line: 5, Message: "bad token"}, "line 5: bad token"},
		{EvalError{Col: 3, Message: "no location"}, "no location"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	eng := NewEngine(WithTimeout(time.Nanosecond))

	g, evalErrs, err := eng.Evaluate(`(cuboid "box" :size (vec3 8 8 8))`)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Evaluate() error = %v, want ErrTimeout", err)
	}
	if g != nil || evalErrs != nil {
		t.Errorf("Evaluate() = %v, %v alongside a timeout", g, evalErrs)
	}
	if !strings.Contains(err.Error(), "after 1ns") {
		t.Errorf("error = %q, want the limit mentioned", err)
	}
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewEngine().EvaluateContext(ctx, `(cuboid "box" :size (vec3 8 8 8))`)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("EvaluateContext() error = %v, want context.Canceled", err)
	}
}

func TestEngineOptions(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	eng := NewEngine(
		WithTimeout(2*time.Second),
		WithDefaults(graph.GlobalDefaults{Material: "stone", WorldSize: 2048, Units: "units"}),
		WithLogger(zap.New(core)),
	)

	g, evalErrs, err := eng.Evaluate(`(cuboid "floor" :size (vec3 64 64 8))`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("Evaluate() = %v, %v", evalErrs, err)
	}
	if g.Defaults.Material != "stone" || g.Defaults.WorldSize != 2048 {
		t.Errorf("Defaults = %+v", g.Defaults)
	}
	if _, _, err := eng.Evaluate(`(lookup "ghost")`); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	evaluated := logs.FilterMessage("evaluated").All()
	if len(evaluated) != 1 {
		t.Fatalf("logged %d evaluated entries, want 1", len(evaluated))
	}
	fields := evaluated[0].ContextMap()
	if fields["nodes"] != int64(1) || fields["generation"] != uint64(1) {
		t.Errorf("evaluated fields = %v, want nodes 1 in generation 1", fields)
	}
	failed := logs.FilterMessage("script errors").All()
	if len(failed) != 1 || !strings.Contains(failed[0].ContextMap()["first"].(string), "ghost") {
		t.Errorf("script errors entries = %v", failed)
	}
}

func TestEvaluateDefaultsAreNotShared(t *testing.T) {
	eng := NewEngine()
	g, _, err := eng.Evaluate(`(material "brick")`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if g.Defaults.Material != "brick" {
		t.Errorf("Defaults.Material = %q, want brick", g.Defaults.Material)
	}
	g, _, err = eng.Evaluate(`(+ 1 2)`)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if g.Defaults.Material == "brick" {
		t.Error("material leaked into the next evaluation")
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"error on line 12: missing paren", 12, "missing paren"},
		{"line 3: short form", 3, "short form"},
		{"  some generic error  ", 0, "some generic error"},
	}
	for _, tt := range tests {
		got := parseZygomysError(errors.New(tt.msg))
		if got.Line != tt.wantLine || got.Message != tt.wantMsg {
			t.Errorf("parseZygomysError(%q) = %+v, want line %d message %q", tt.msg, got, tt.wantLine, tt.wantMsg)
		}
	}
}
