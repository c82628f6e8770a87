package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/brushwork/pkg/brush"
	"github.com/chazu/brushwork/pkg/config"
	"github.com/chazu/brushwork/pkg/engine"
	"github.com/chazu/brushwork/pkg/export"
	"github.com/chazu/brushwork/pkg/geom"
	"github.com/chazu/brushwork/pkg/graph"
	"github.com/chazu/brushwork/pkg/kernel"
	"github.com/chazu/brushwork/pkg/kernel/brushk"
	"github.com/chazu/brushwork/pkg/kernel/sdfx"
	"github.com/chazu/brushwork/pkg/tessellate"
	"github.com/chazu/brushwork/pkg/world"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the script pipeline: evaluate, validate, tessellate.
type App struct {
	cfg    *config.Config
	engine *engine.Engine
	kernel kernel.Kernel  // meshes parts
	exact  *brushk.Kernel // picking and export always need brushes
	log    *zap.Logger
}

// MeshData is the JSON-serializable mesh format.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	UVs      []float32 `json:"uvs,omitempty"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning. Validation
// findings carry the node they are about instead of a source position.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Node    string `json:"node,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App from cfg. A nil logger discards everything.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	exact := brushk.New(
		brushk.WithWorldBounds(geom.WorldBounds(cfg.World.Size)),
		brushk.WithMaterial(cfg.World.Material),
		brushk.WithUVLock(cfg.Geometry.UVLock),
		brushk.WithLogger(logger.Named("brushk")),
	)
	var k kernel.Kernel = exact
	if cfg.Geometry.Kernel == config.KernelSDF {
		k = sdfx.New(
			sdfx.WithMeshCells(cfg.Geometry.MeshCells),
			sdfx.WithLogger(logger.Named("sdfx")),
		)
	}

	return &App{
		cfg: cfg,
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.GetEngineTimeout()),
			engine.WithDefaults(graph.GlobalDefaults{
				Material:  cfg.World.Material,
				WorldSize: cfg.World.Size,
				Units:     cfg.World.Units,
			}),
			engine.WithLogger(logger.Named("engine")),
		),
		kernel: k,
		exact:  exact,
		log:    logger,
	}, nil
}

// Check evaluates and validates source without meshing it. The graph is
// nil whenever errors are returned.
func (a *App) Check(source string) (*graph.SceneGraph, []EvalErrorData, []EvalErrorData) {
	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate failed", zap.Error(err))
		return nil, []EvalErrorData{{Message: err.Error()}}, nil
	}
	if len(evalErrs) > 0 {
		errs := make([]EvalErrorData, 0, len(evalErrs))
		for _, e := range evalErrs {
			errs = append(errs, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return nil, errs, nil
	}

	res := graph.ValidateAll(g)
	var warnings []EvalErrorData
	for _, w := range res.Warnings {
		warnings = append(warnings, EvalErrorData{Node: nodeLabel(g, w.NodeID), Message: w.Message})
	}
	if res.HasErrors() {
		errs := make([]EvalErrorData, 0, len(res.Errors))
		for _, e := range res.Errors {
			errs = append(errs, EvalErrorData{Node: nodeLabel(g, e.NodeID), Message: e.Message})
		}
		return nil, errs, warnings
	}
	return g, nil, warnings
}

func nodeLabel(g *graph.SceneGraph, id graph.NodeID) string {
	if id.IsZero() {
		return ""
	}
	if n := g.Get(id); n != nil && n.Name != "" {
		return n.Name
	}
	return id.Short()
}

// Evaluate takes script source and returns mesh data, errors and warnings.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	g, errs, warnings := a.Check(source)
	result.Warnings = append(result.Warnings, warnings...)
	if len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		return result
	}

	meshes, err := tessellate.Tessellate(g, a.kernel, tessellate.Options{Logger: a.log.Named("tessellate")})
	if err != nil {
		a.log.Warn("tessellate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			UVs:      m.UVs,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

// Parts evaluates source with the exact kernel and returns every part as
// world-space brushes.
func (a *App) Parts(source string) ([]export.Part, error) {
	g, errs, _ := a.Check(source)
	if len(errs) > 0 {
		return nil, errorList(errs)
	}
	parts, err := tessellate.Evaluate(g, a.exact, tessellate.Options{Logger: a.log.Named("tessellate")})
	if err != nil {
		return nil, err
	}
	out := make([]export.Part, 0, len(parts))
	for _, p := range parts {
		out = append(out, export.Part{Name: p.Name, Brushes: p.Solid.(*brushk.Solid).Brushes()})
	}
	return out, nil
}

// Index places the brushes of every part into a world index. Parts with
// several pieces are keyed name#1, name#2 and so on.
func (a *App) Index(parts []export.Part) *world.Index {
	idx := world.NewIndex(world.WithLogger(a.log.Named("world")))
	for _, p := range parts {
		for i, b := range p.Brushes {
			key := p.Name
			if len(p.Brushes) > 1 {
				key = fmt.Sprintf("%s#%d", p.Name, i+1)
			}
			idx.Insert(key, b)
		}
	}
	return idx
}

// Pick evaluates source and returns the closest face hit by r.
func (a *App) Pick(source string, r geom.Ray) (world.Hit, bool, error) {
	parts, err := a.Parts(source)
	if err != nil {
		return world.Hit{}, false, err
	}
	hit, ok := a.Index(parts).Pick(r)
	return hit, ok, nil
}

// HitFace returns the face of a pick result.
func HitFace(h world.Hit) *brush.Face {
	return h.Entry.Brush.Face(h.Face)
}

// ExportOptions returns SVG options from the config.
func (a *App) ExportOptions() (export.Options, error) {
	view, err := export.ParseView(a.cfg.Export.View)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		Width:  a.cfg.Export.Width,
		Height: a.cfg.Export.Height,
		Margin: a.cfg.Export.Margin,
		View:   view,
		Stroke: a.cfg.Export.Stroke,
	}, nil
}

type errorList []EvalErrorData

func (l errorList) Error() string {
	if len(l) == 1 {
		return formatError(l[0])
	}
	return fmt.Sprintf("%s (and %d more)", formatError(l[0]), len(l)-1)
}

func formatError(e EvalErrorData) string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	case e.Node != "":
		return fmt.Sprintf("%s: %s", e.Node, e.Message)
	default:
		return e.Message
	}
}
