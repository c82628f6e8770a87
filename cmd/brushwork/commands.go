package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/chazu/brushwork/pkg/config"
	"github.com/chazu/brushwork/pkg/export"
	"github.com/chazu/brushwork/pkg/geom"
)

var (
	// pick flags
	pickFrom []float64
	pickDir  []float64

	// svg flags
	svgOut  string
	svgView string

	// config init flags
	configForce bool
)

var evalCmd = &cobra.Command{
	Use:   "eval [script]",
	Short: "Evaluate a script and print its meshes as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

var checkCmd = &cobra.Command{
	Use:   "check [script]",
	Short: "Evaluate and validate a script without meshing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var pickCmd = &cobra.Command{
	Use:   "pick [script]",
	Short: "Find the face hit by a ray",
	Long: `Casts a ray into the evaluated scene and prints the closest face hit.

Example:
  brushwork pick room.brush --from 0,0,500 --dir 0,0,-1`,
	Args: cobra.ExactArgs(1),
	RunE: runPick,
}

var svgCmd = &cobra.Command{
	Use:   "svg [script]",
	Short: "Draw the brush edges of a script as an SVG wireframe",
	Args:  cobra.ExactArgs(1),
	RunE:  runSVG,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	pickCmd.Flags().Float64SliceVar(&pickFrom, "from", nil, "ray origin x,y,z")
	pickCmd.Flags().Float64SliceVar(&pickDir, "dir", nil, "ray direction x,y,z")
	_ = pickCmd.MarkFlagRequired("from")
	_ = pickCmd.MarkFlagRequired("dir")

	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().StringVar(&svgView, "view", "", "top, front or side (default from config)")

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
}

// readSource reads a script from path, or from in when path is "-".
func readSource(path string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}

// loadApp reads the script argument and builds an App from the loaded config.
func loadApp(cmd *cobra.Command, args []string) (*App, string, error) {
	source, err := readSource(args[0], cmd.InOrStdin())
	if err != nil {
		return nil, "", err
	}
	app, err := NewApp(cfg, logger)
	if err != nil {
		return nil, "", err
	}
	return app, source, nil
}

func runEval(cmd *cobra.Command, args []string) error {
	app, source, err := loadApp(cmd, args)
	if err != nil {
		return err
	}
	result := app.Evaluate(source)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if len(result.Errors) > 0 {
		return errorList(result.Errors)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	app, source, err := loadApp(cmd, args)
	if err != nil {
		return err
	}
	g, errs, warnings := app.Check(source)

	out := cmd.OutOrStdout()
	for _, e := range errs {
		fmt.Fprintf(out, "error: %s\n", formatError(e))
	}
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", formatError(w))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d errors", len(errs))
	}
	fmt.Fprintf(out, "ok: %d nodes, %d brushes, %d warnings\n", g.NodeCount(), len(g.Brushes()), len(warnings))
	return nil
}

func toVec(name string, xs []float64) (v3.Vec, error) {
	if len(xs) != 3 {
		return v3.Vec{}, fmt.Errorf("--%s needs 3 components, got %d", name, len(xs))
	}
	return v3.Vec{X: xs[0], Y: xs[1], Z: xs[2]}, nil
}

func runPick(cmd *cobra.Command, args []string) error {
	origin, err := toVec("from", pickFrom)
	if err != nil {
		return err
	}
	dir, err := toVec("dir", pickDir)
	if err != nil {
		return err
	}
	if geom.IsZero(dir, geom.AlmostZero) {
		return fmt.Errorf("--dir must not be zero")
	}

	app, source, err := loadApp(cmd, args)
	if err != nil {
		return err
	}
	hit, ok, err := app.Pick(source, geom.NewRay(origin, dir))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "no hit")
		return nil
	}
	f := HitFace(hit)
	n := f.Normal()
	fmt.Fprintf(out, "brush %s face %d material %s\n", hit.Entry.Name, hit.Face, f.Attributes().MaterialName)
	fmt.Fprintf(out, "distance %g point %g,%g,%g normal %g,%g,%g\n",
		hit.Distance, hit.Point.X, hit.Point.Y, hit.Point.Z, n.X, n.Y, n.Z)
	return nil
}

func runSVG(cmd *cobra.Command, args []string) error {
	app, source, err := loadApp(cmd, args)
	if err != nil {
		return err
	}
	opts, err := app.ExportOptions()
	if err != nil {
		return err
	}
	if svgView != "" {
		if opts.View, err = export.ParseView(svgView); err != nil {
			return err
		}
	}
	parts, err := app.Parts(source)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if svgOut != "" {
		f, err := os.Create(svgOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", svgOut, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.WriteSVG(w, parts, opts); err != nil {
		return err
	}
	logger.Debug("wrote svg", zap.String("view", opts.View.String()), zap.Int("parts", len(parts)))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}
	if err := config.DefaultConfig().Save(cfgFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgFile)
	return nil
}
