package engine

import (
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/brushwork/pkg/graph"
)

// scope is the state shared by the builtins of one evaluation.
type scope struct {
	b *graph.Builder
}

type builtin func(s *scope, a *args) (zygo.Sexp, error)

// builtins maps script names to their implementations. Names with an
// underscore are written with a hyphen in scripts; see preprocessSource.
var builtins = map[string]builtin{
	"vec3":          (*scope).vec3,
	"material":      (*scope).material,
	"cuboid":        (*scope).cuboid,
	"prism":         (*scope).prism,
	"face":          (*scope).face,
	"brush":         (*scope).brush,
	"lookup":        (*scope).lookup,
	"place":         (*scope).place,
	"subtract":      (*scope).subtract,
	"intersect":     (*scope).intersect,
	"move_vertices": (*scope).moveVertices,
	"group":         (*scope).group,
}

// registerBuiltins installs the scene builtins into env. Nodes they create
// are added through b. Source must go through preprocessSource first so
// keyword arguments are recognisable.
func registerBuiltins(env *zygo.Zlisp, b *graph.Builder) {
	s := &scope{b: b}
	for name, fn := range builtins {
		op := scriptName(name)
		env.AddFunction(name, func(_ *zygo.Zlisp, _ string, list []zygo.Sexp) (zygo.Sexp, error) {
			return fn(s, parseArgs(op, list))
		})
	}
}

func scriptName(name string) string {
	if name == "move_vertices" {
		return "move-vertices"
	}
	return name
}

// ref wraps the node the builder just produced, surfacing any error the
// builder recorded while producing it.
func (s *scope) ref(a *args, id graph.NodeID, name string) (zygo.Sexp, error) {
	if err := s.b.Err(); err != nil {
		return zygo.SexpNull, a.errorf("%w", err)
	}
	return &sexpNodeRef{id: id, name: name}, nil
}

// (vec3 1 2 3)
func (s *scope) vec3(a *args) (zygo.Sexp, error) {
	if len(a.items) != 3 || len(a.kw) > 0 {
		return zygo.SexpNull, a.errorf("requires exactly 3 numbers, got %d arguments", len(a.items)+len(a.kw))
	}
	var xyz [3]float64
	for i, item := range a.items {
		f, err := asNumber(item)
		if err != nil {
			return zygo.SexpNull, a.errorf("%c: %w", "xyz"[i], err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// (material "stone") sets the material of brushes that do not name one.
func (s *scope) material(a *args) (zygo.Sexp, error) {
	if len(a.raw) != 1 {
		return zygo.SexpNull, a.errorf("requires exactly 1 argument, got %d", len(a.raw))
	}
	m, err := asText(a.raw[0])
	if err != nil {
		return zygo.SexpNull, a.errorf("%w", err)
	}
	s.b.Graph().Defaults.Material = m
	return &zygo.SexpStr{S: m}, nil
}

// (cuboid "floor" :size (vec3 256 256 16) :material "stone")
func (s *scope) cuboid(a *args) (zygo.Sexp, error) {
	name := a.name()
	size, err := a.requireVec("size")
	if err != nil {
		return zygo.SexpNull, err
	}
	material, err := a.text("material")
	if err != nil {
		return zygo.SexpNull, err
	}
	return s.ref(a, s.b.Cuboid(name, size, material), name)
}

// (prism "pillar" :sides 8 :radius 16 :height 128)
func (s *scope) prism(a *args) (zygo.Sexp, error) {
	name := a.name()
	var dims [3]float64
	for i, key := range []string{"sides", "radius", "height"} {
		f, err := a.number(key, 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		dims[i] = f
	}
	material, err := a.text("material")
	if err != nil {
		return zygo.SexpNull, err
	}
	return s.ref(a, s.b.Prism(name, int(dims[0]), dims[1], dims[2], material), name)
}

// (face (vec3 0 0 0) (vec3 0 1 0) (vec3 1 0 0))
func (s *scope) face(a *args) (zygo.Sexp, error) {
	if len(a.items) != 3 {
		return zygo.SexpNull, a.errorf("requires exactly 3 points, got %d", len(a.items))
	}
	f := &sexpFace{}
	for i, item := range a.items {
		v, err := asVec(item)
		if err != nil {
			return zygo.SexpNull, a.errorf("point %d: %w", i+1, err)
		}
		f.points[i] = v
	}
	return f, nil
}

// (brush "wedge" (face ...) (face ...) ... :material "wood")
// (brush "roof" :points (list (vec3 ...) ...))
func (s *scope) brush(a *args) (zygo.Sexp, error) {
	name := a.name()
	material, err := a.text("material")
	if err != nil {
		return zygo.SexpNull, err
	}

	if _, ok := a.kw["points"]; ok {
		if len(a.items) > 0 {
			return zygo.SexpNull, a.errorf("faces and :points are exclusive")
		}
		points, err := a.vecs("points")
		if err != nil {
			return zygo.SexpNull, err
		}
		return s.ref(a, s.b.Hull(name, points, material), name)
	}

	faces := make([][3]graph.Vec3, len(a.items))
	for i, item := range a.items {
		f, ok := item.(*sexpFace)
		if !ok {
			return zygo.SexpNull, a.errorf("argument %d: %w", i+1, mismatch("face", item))
		}
		faces[i] = f.points
	}
	return s.ref(a, s.b.Faces(name, faces, material), name)
}

// (lookup "floor")
func (s *scope) lookup(a *args) (zygo.Sexp, error) {
	if len(a.items) != 1 {
		return zygo.SexpNull, a.errorf("requires a name argument")
	}
	name, err := asString(a.items[0])
	if err != nil {
		return zygo.SexpNull, a.errorf("name: %w", err)
	}
	n := s.b.Graph().Lookup(name)
	if n == nil {
		return zygo.SexpNull, a.errorf("no node named %q", name)
	}
	return &sexpNodeRef{id: n.ID, name: name}, nil
}

// (place (lookup "pillar") :at (vec3 128 128 16) :rotate (vec3 0 0 45))
func (s *scope) place(a *args) (zygo.Sexp, error) {
	if len(a.items) != 1 {
		return zygo.SexpNull, a.errorf("requires exactly one node reference")
	}
	ids, err := a.refs()
	if err != nil {
		return zygo.SexpNull, err
	}
	at, _, err := a.vec("at")
	if err != nil {
		return zygo.SexpNull, err
	}
	rotation, rotated, err := a.vec("rotate")
	if err != nil {
		return zygo.SexpNull, err
	}
	if rotated {
		return s.ref(a, s.b.Transform(ids[0], rotation, at), "")
	}
	return s.ref(a, s.b.Place(ids[0], at), "")
}

// (subtract "doorway" (lookup "wall") (lookup "door") ...)
func (s *scope) subtract(a *args) (zygo.Sexp, error) {
	name := a.name()
	if len(a.items) < 2 {
		return zygo.SexpNull, a.errorf("requires a minuend and at least one subtrahend")
	}
	ids, err := a.refs()
	if err != nil {
		return zygo.SexpNull, err
	}
	return s.ref(a, s.b.Subtract(name, ids[0], ids[1:]...), name)
}

// (intersect "common" (lookup "a") (lookup "b") ...)
func (s *scope) intersect(a *args) (zygo.Sexp, error) {
	name := a.name()
	if len(a.items) < 2 {
		return zygo.SexpNull, a.errorf("requires at least two operands")
	}
	ids, err := a.refs()
	if err != nil {
		return zygo.SexpNull, err
	}
	return s.ref(a, s.b.Intersect(name, ids...), name)
}

// (move-vertices "pulled" (lookup "box") :at (list (vec3 16 16 16)) :by (vec3 4 4 4))
func (s *scope) moveVertices(a *args) (zygo.Sexp, error) {
	name := a.name()
	if len(a.items) != 1 {
		return zygo.SexpNull, a.errorf("requires exactly one node reference")
	}
	ids, err := a.refs()
	if err != nil {
		return zygo.SexpNull, err
	}
	positions, err := a.vecs("at")
	if err != nil {
		return zygo.SexpNull, err
	}
	delta, err := a.requireVec("by")
	if err != nil {
		return zygo.SexpNull, err
	}
	return s.ref(a, s.b.MoveVertices(name, ids[0], positions, delta), name)
}

// (group "room" (place ...) (lookup "floor") ...)
func (s *scope) group(a *args) (zygo.Sexp, error) {
	if len(a.items) == 0 {
		return zygo.SexpNull, a.errorf("requires a name argument")
	}
	name, err := asString(a.items[0])
	if err != nil {
		return zygo.SexpNull, a.errorf("name: %w", err)
	}
	a.items = a.items[1:]
	children, err := a.refs()
	if err != nil {
		return zygo.SexpNull, err
	}
	return s.ref(a, s.b.Group(name, children...), name)
}
