// Package engine evaluates brush scripts. Each evaluation runs in a fresh
// zygomys sandbox and yields an unvalidated scene graph.
package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/brushwork/pkg/graph"
)

// DefaultTimeout bounds a single evaluation unless WithTimeout says
// otherwise.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation was overtaken
	// by a newer one on the same engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// EvalError is a problem in the script itself: a parse error or a failing
// builtin. Line is 0 when zygomys reported no position.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	switch {
	case e.Line > 0 && e.Col > 0:
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scripts. It is safe for concurrent use; only the most
// recent call's result is delivered.
type Engine struct {
	latest atomic.Uint64

	timeout  time.Duration
	defaults graph.GlobalDefaults
	log      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithDefaults sets the graph defaults every evaluation starts from.
func WithDefaults(d graph.GlobalDefaults) Option {
	return func(e *Engine) { e.defaults = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout:  DefaultTimeout,
		defaults: graph.New().Defaults,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate is EvaluateContext without a caller deadline.
func (e *Engine) Evaluate(source string) (*graph.SceneGraph, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext runs source and returns the scene it builds.
//
// Problems in the script come back as EvalErrors with a nil graph and a
// nil error. The error result is reserved for failures of the evaluation
// itself: ErrTimeout, ErrSuperseded, a cancelled ctx or a recovered panic.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*graph.SceneGraph, []EvalError, error) {
	gen := e.latest.Add(1)
	log := e.log.With(zap.Uint64("generation", gen))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		done <- e.run(source)
	}()

	var out outcome
	select {
	case out = <-done:
		if e.latest.Load() != gen {
			out = outcome{err: ErrSuperseded}
		}
	case <-ctx.Done():
		// The sandbox cannot be interrupted; its result is dropped when
		// it eventually arrives.
		out.err = ctx.Err()
		if errors.Is(out.err, context.DeadlineExceeded) {
			out.err = fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		}
	}

	switch {
	case out.err != nil:
		log.Warn("evaluation failed", zap.Error(out.err))
	case len(out.errs) > 0:
		log.Debug("script errors", zap.Int("errors", len(out.errs)), zap.String("first", out.errs[0].Error()))
	default:
		log.Debug("evaluated", zap.Int("nodes", out.graph.NodeCount()), zap.Int("roots", len(out.graph.Roots)))
	}
	return out.graph, out.errs, out.err
}

type outcome struct {
	graph *graph.SceneGraph
	errs  []EvalError
	err   error
}

func (e *Engine) run(source string) outcome {
	b := graph.NewBuilder().WithDefaults(e.defaults)
	if strings.TrimSpace(source) == "" {
		return outcome{graph: b.Graph()}
	}

	// The sandbox has no filesystem or system access.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return outcome{errs: []EvalError{parseZygomysError(err)}}
	}
	if _, err := env.Run(); err != nil {
		return outcome{errs: []EvalError{parseZygomysError(err)}}
	}
	return outcome{graph: b.RootTopLevel().Graph()}
}

// zygomys reports positions as "Error on line N: ..." or "line N: ...".
var linePattern = regexp.MustCompile(`(?i)^(?:.*?\berror )?(?:on )?line (\d+):\s*(.*)`)

func parseZygomysError(err error) EvalError {
	msg := strings.TrimSpace(err.Error())
	m := linePattern.FindStringSubmatch(msg)
	if m == nil {
		return EvalError{Message: msg}
	}
	line, _ := strconv.Atoi(m[1])
	return EvalError{Line: line, Message: strings.TrimSpace(m[2])}
}
