package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/brushwork/pkg/graph"
)

// Values that cross between builtins. zygomys only needs SexpString and
// Type from them.

type sexpNodeRef struct {
	id   graph.NodeID
	name string
}

func (n *sexpNodeRef) SexpString(*zygo.PrintState) string {
	if n.name == "" {
		return "(node " + n.id.Short() + ")"
	}
	return fmt.Sprintf("(node %q)", n.name)
}

func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(*zygo.PrintState) string { return formatVec(v.vec) }

func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpFace is a face plane given by three points, wound clockwise as seen
// from outside the brush.
type sexpFace struct {
	points [3]graph.Vec3
}

func (f *sexpFace) SexpString(*zygo.PrintState) string {
	return "(face " + formatVec(f.points[0]) + " " + formatVec(f.points[1]) + " " + formatVec(f.points[2]) + ")"
}

func (f *sexpFace) Type() *zygo.RegisteredType { return nil }

func formatVec(v graph.Vec3) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.X, v.Y, v.Z)
}

// args splits a builtin's argument list into keyword arguments and the
// positional rest. Every accessor prefixes its errors with the builtin
// name.
type args struct {
	op    string
	raw   []zygo.Sexp
	kw    map[string]zygo.Sexp
	items []zygo.Sexp
}

func parseArgs(op string, list []zygo.Sexp) *args {
	a := &args{op: op, raw: list, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(list); i++ {
		key, ok := keywordName(list[i])
		if !ok {
			a.items = append(a.items, list[i])
			continue
		}
		if i+1 == len(list) {
			a.kw[key] = zygo.SexpNull
			break
		}
		i++
		a.kw[key] = list[i]
	}
	return a
}

func (a *args) errorf(format string, v ...any) error {
	return fmt.Errorf(a.op+": "+format, v...)
}

// name pops a leading string, the optional name of the node being built.
func (a *args) name() string {
	if len(a.items) > 0 {
		if s, ok := a.items[0].(*zygo.SexpStr); ok {
			a.items = a.items[1:]
			return s.S
		}
	}
	return ""
}

func (a *args) number(key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := asNumber(v)
	if err != nil {
		return 0, a.errorf("%s: %w", key, err)
	}
	return f, nil
}

// text returns a string or keyword argument, "" when absent.
func (a *args) text(key string) (string, error) {
	v, ok := a.kw[key]
	if !ok {
		return "", nil
	}
	s, err := asText(v)
	if err != nil {
		return "", a.errorf("%s: %w", key, err)
	}
	return s, nil
}

func (a *args) vec(key string) (graph.Vec3, bool, error) {
	v, ok := a.kw[key]
	if !ok {
		return graph.Vec3{}, false, nil
	}
	vec, err := asVec(v)
	if err != nil {
		return graph.Vec3{}, false, a.errorf("%s: %w", key, err)
	}
	return vec, true, nil
}

// requireVec is vec for mandatory arguments.
func (a *args) requireVec(key string) (graph.Vec3, error) {
	v, ok, err := a.vec(key)
	if err == nil && !ok {
		err = a.errorf("requires :%s", key)
	}
	return v, err
}

func (a *args) vecs(key string) ([]graph.Vec3, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, a.errorf("requires :%s", key)
	}
	list, err := asList(v)
	if err != nil {
		return nil, a.errorf("%s: %w", key, err)
	}
	out := make([]graph.Vec3, len(list))
	for i, item := range list {
		if out[i], err = asVec(item); err != nil {
			return nil, a.errorf("%s: element %d: %w", key, i, err)
		}
	}
	return out, nil
}

// refs converts every positional argument to a node reference.
func (a *args) refs() ([]graph.NodeID, error) {
	ids := make([]graph.NodeID, len(a.items))
	for i, item := range a.items {
		ref, ok := item.(*sexpNodeRef)
		if !ok {
			return nil, a.errorf("operand %d: %w", i+1, mismatch("node reference", item))
		}
		ids[i] = ref.id
	}
	return ids, nil
}

func keywordName(s zygo.Sexp) (string, bool) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return strings.CutPrefix(str.S, kwPrefix)
	}
	return "", false
}

func mismatch(want string, got zygo.Sexp) error {
	return fmt.Errorf("expected %s, got %T (%s)", want, got, got.SexpString(nil))
}

func asNumber(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, mismatch("number", s)
}

func asString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", mismatch("string", s)
}

// asText accepts both "stone" and :stone.
func asText(s zygo.Sexp) (string, error) {
	str, err := asString(s)
	if err != nil {
		return "", mismatch("keyword or string", s)
	}
	return strings.TrimPrefix(str, kwPrefix), nil
}

func asVec(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, mismatch("vec3", s)
}

func asList(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	}
	if s == zygo.SexpNull {
		return nil, nil
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}
