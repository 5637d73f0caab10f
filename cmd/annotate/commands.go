package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/OCAP2/annotations/internal/annotation"
	"github.com/OCAP2/annotations/internal/colors"
	"github.com/OCAP2/annotations/internal/config"
	"github.com/OCAP2/annotations/internal/geo"
	"github.com/OCAP2/annotations/internal/project"
	"github.com/OCAP2/annotations/internal/render"
	"github.com/OCAP2/annotations/internal/richtext"
	"github.com/OCAP2/annotations/internal/storage"
	"github.com/OCAP2/annotations/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/spf13/pflag"
)

// extentMargin pads the extent derived from a project's anchors.
const extentMargin = 0.1

func newFlagSet(name string, a *app) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stdout)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errUsage
		}
		return fmt.Errorf("%s: %w", fs.Name(), err)
	}
	return nil
}

func required(fs *pflag.FlagSet, names ...string) error {
	for _, n := range names {
		if v, _ := fs.GetString(n); v == "" {
			return fmt.Errorf("%s: --%s is required", fs.Name(), n)
		}
	}
	return nil
}

// parseVector reads "x,y".
func parseVector(s string) (core.Vector, error) {
	p, err := geo.Position2DFromString(s)
	return core.Vector{X: p.X, Y: p.Y}, err
}

func runNewText(a *app, args []string) error {
	fs := newFlagSet("new-text", a)
	out := fs.StringP("out", "o", "", "project file, created if missing")
	title := fs.String("title", "", "title of a new project")
	crs := fs.Int("crs", geo.WGS84, "EPSG code of a new project")
	at := fs.String("at", "", "map position x,y")
	atCRS := fs.Int("at-crs", geo.WGS84, "EPSG code of --at")
	screen := fs.String("screen", "", "relative screen position x,y in [0,1], instead of --at")
	pixel := fs.String("pixel", "", "image pixel x,y of the rendered project, instead of --at")
	rc := config.GetRenderConfig()
	width := fs.Int("width", rc.Width, "image width for --pixel")
	height := fs.Int("height", rc.Height, "image height for --pixel")
	extent := fs.String("extent", rc.Extent, "map extent of the image for --pixel")
	extentCRS := fs.Int("extent-crs", rc.CRS, "EPSG code of --extent")
	text := fs.String("text", "", "annotation text")
	markdown := fs.Bool("markdown", false, "read --text as Markdown")
	offset := fs.String("offset", "", "frame offset dx,dy in pixels")
	size := fs.String("size", "", "frame size w,h in pixels")
	fit := fs.Bool("fit", false, "size the frame to its text")
	margin := fs.Float64("margin", annotation.DefaultContentsMargin, "contents margin in pixels")
	fill := fs.String("fill", "", "frame fill colour #rrggbb")
	stroke := fs.String("stroke", "", "frame stroke colour #rrggbb")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, "out"); err != nil {
		return err
	}
	anchors := 0
	for _, v := range []string{*at, *screen, *pixel} {
		if v != "" {
			anchors++
		}
	}
	if anchors != 1 {
		return errors.New("new-text: exactly one of --at, --screen and --pixel is required")
	}

	p, err := a.loadFile(*out)
	switch {
	case errors.Is(err, os.ErrNotExist):
		p = project.New(*title)
		p.CRS = *crs
	case err != nil:
		return err
	}

	t := annotation.NewText()
	b := t.Common()
	switch {
	case *at != "":
		pos, err := geo.Position2DFromString(*at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		b.SetMapPositionCRS(*atCRS)
		b.SetMapPosition(pos)
	case *pixel != "":
		px, err := geo.Position2DFromString(*pixel)
		if err != nil {
			return fmt.Errorf("--pixel: %w", err)
		}
		env, envCRS, err := renderExtent(p, fs.Changed("extent") || fs.Changed("extent-crs"), *extent, *extentCRS)
		if err != nil {
			return err
		}
		tr, err := geo.NewMapTransform(env, envCRS, core.Size{Width: float64(*width), Height: float64(*height)})
		if err != nil {
			return err
		}
		b.SetMapPositionCRS(tr.CRS())
		b.SetMapPosition(tr.Unproject(core.Point{X: px.X, Y: px.Y}))
	default:
		rel, err := geo.Position2DFromString(*screen)
		if err != nil {
			return fmt.Errorf("--screen: %w", err)
		}
		b.SetAnchorMode(core.FixedScreenOffset)
		b.SetRelativePosition(core.Point{X: rel.X, Y: rel.Y})
	}
	if *offset != "" {
		v, err := parseVector(*offset)
		if err != nil {
			return fmt.Errorf("--offset: %w", err)
		}
		b.SetFrameOffset(v)
	}
	if *size != "" {
		v, err := parseVector(*size)
		if err != nil {
			return fmt.Errorf("--size: %w", err)
		}
		b.SetFrameSize(core.Size{Width: v.X, Height: v.Y})
	}
	if *fit {
		b.SetFrameSizing(core.SizeToContent)
	}
	b.SetContentsMargin(*margin)

	style := b.FrameStyle()
	if err := setColor("--fill", *fill, &style.Fill); err != nil {
		return err
	}
	if err := setColor("--stroke", *stroke, &style.Stroke); err != nil {
		return err
	}
	b.SetFrameStyle(style)

	if *markdown {
		t.SetDocument(richtext.FromMarkdown([]byte(*text)))
	} else {
		t.SetDocument(richtext.FromPlainText(*text))
	}

	p.Add(t)
	if err := saveFile(*out, p); err != nil {
		return fmt.Errorf("save %s: %w", *out, err)
	}
	a.log.Info("Added text annotation", "file", *out, "id", b.ID(), "annotations", p.Len())
	fmt.Fprintln(a.stdout, b.ID())
	return nil
}

// setColor parses value into dst keeping its alpha. Empty values leave dst
// unchanged.
func setColor(flag, value string, dst *color.NRGBA) error {
	if value == "" {
		return nil
	}
	c, err := colors.Parse(value, dst.A)
	if err != nil {
		return fmt.Errorf("%s: %w", flag, err)
	}
	*dst = c
	return nil
}

func runRender(a *app, args []string) error {
	rc := config.GetRenderConfig()
	fs := newFlagSet("render", a)
	in := fs.StringP("in", "i", "", "project file")
	out := fs.StringP("out", "o", "", "PNG file")
	width := fs.Int("width", rc.Width, "image width")
	height := fs.Int("height", rc.Height, "image height")
	background := fs.String("background", rc.Background, "background colour #rrggbb")
	extent := fs.String("extent", rc.Extent, "map extent minX,minY,maxX,maxY; defaults to the project's anchors")
	crs := fs.Int("crs", rc.CRS, "EPSG code of --extent")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, "in", "out"); err != nil {
		return err
	}

	p, err := a.loadFile(*in)
	if err != nil {
		return err
	}
	bg, err := colors.Parse(*background, 255)
	if err != nil {
		return fmt.Errorf("--background: %w", err)
	}

	env, envCRS, err := renderExtent(p, fs.Changed("extent") || fs.Changed("crs"), *extent, *crs)
	if err != nil {
		return err
	}
	size := core.Size{Width: float64(*width), Height: float64(*height)}
	tr, err := geo.NewMapTransform(env, envCRS, size)
	if err != nil {
		return err
	}

	canvas := render.NewCanvas(tr)
	canvas.Fill(bg)
	p.Render(canvas, size)

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := canvas.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.Info("Rendered project", "file", *in, "out", *out, "crs", envCRS, "extent", env.AsGeometry().AsText())
	return nil
}

// renderExtent picks the map extent: the given one when explicit, else the
// project's padded anchor extent, else the configured default.
func renderExtent(p *project.Project, explicit bool, extent string, crs int) (geom.Envelope, int, error) {
	if !explicit {
		anchors, err := p.MapExtent()
		if err != nil {
			return geom.Envelope{}, 0, err
		}
		if padded, ok := geo.PadExtent(anchors, extentMargin, 1); ok {
			return padded, p.CRS, nil
		}
	}
	env, err := geo.ExtentFromString(extent)
	if err != nil {
		return geom.Envelope{}, 0, err
	}
	return env, crs, nil
}

func projectName(fs *pflag.FlagSet, file string) string {
	if n, _ := fs.GetString("name"); n != "" {
		return n
	}
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

func runStore(a *app, args []string) error {
	fs := newFlagSet("store", a)
	in := fs.StringP("in", "i", "", "project file")
	fs.String("name", "", "name to store under, defaults to the file name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, "in"); err != nil {
		return err
	}
	p, err := a.loadFile(*in)
	if err != nil {
		return err
	}
	name := projectName(fs, *in)
	return a.withStorage(func(b storage.Backend) error {
		if err := b.SaveProject(name, p); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "stored %s (%d annotations)\n", name, p.Len())
		return nil
	})
}

func runFetch(a *app, args []string) error {
	fs := newFlagSet("fetch", a)
	name := fs.String("name", "", "stored project name")
	out := fs.StringP("out", "o", "-", "project file, - for stdout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, "name"); err != nil {
		return err
	}
	return a.withStorage(func(b storage.Backend) error {
		p, report, err := b.LoadProject(*name, a.loader)
		if err != nil {
			return err
		}
		a.report(*name, report)
		if *out == "-" {
			return p.Save(a.stdout)
		}
		return saveFile(*out, p)
	})
}

func runList(a *app, args []string) error {
	fs := newFlagSet("list", a)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	return a.withStorage(func(b storage.Backend) error {
		list, err := b.ListProjects()
		if err != nil {
			return err
		}
		return writeSummaries(a.stdout, list)
	})
}

func writeSummaries(w io.Writer, list []storage.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tCRS\tANNOTATIONS\tEXTENT\tUPDATED")
	for _, s := range list {
		extent := "-"
		if lo, hi, ok := s.Extent.MinMaxXYs(); ok {
			extent = fmt.Sprintf("%g,%g,%g,%g", lo.X, lo.Y, hi.X, hi.Y)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			s.Name, s.Title, s.CRS, s.Annotations, extent, s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func runDelete(a *app, args []string) error {
	fs := newFlagSet("delete", a)
	name := fs.String("name", "", "stored project name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := required(fs, "name"); err != nil {
		return err
	}
	return a.withStorage(func(b storage.Backend) error {
		return b.DeleteProject(*name)
	})
}
