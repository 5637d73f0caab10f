package annotation

import (
	"fmt"
	"image/color"
	"math"

	"github.com/OCAP2/annotations/internal/colors"
	"github.com/OCAP2/annotations/internal/geo"
	"github.com/OCAP2/annotations/internal/render"
	"github.com/OCAP2/annotations/internal/xmlnode"
	"github.com/OCAP2/annotations/pkg/core"
	"github.com/google/uuid"
)

// Defaults of a new annotation.
var (
	DefaultFrameOffset = core.Vector{X: 50, Y: -50}
	DefaultFrameSize   = core.Size{Width: 200, Height: 100}
	DefaultFrameStyle  = render.FrameStyle{
		Fill:        colors.White,
		Stroke:      colors.Black,
		StrokeWidth: 1,
	}
)

const DefaultContentsMargin = 2.0

// Element and attribute names of the persisted state.
const (
	ContentElement = "content"

	attrType        = "annotationType"
	attrID          = "id"
	attrAnchorMode  = "anchorMode"
	attrMapX        = "mapPositionX"
	attrMapY        = "mapPositionY"
	attrMapCRS      = "mapPositionCrs"
	attrRelX        = "relativePositionX"
	attrRelY        = "relativePositionY"
	attrOffsetX     = "frameOffsetX"
	attrOffsetY     = "frameOffsetY"
	attrWidth       = "frameWidth"
	attrHeight      = "frameHeight"
	attrSizing      = "frameSizing"
	attrMargin      = "contentsMargin"
	attrFill        = "frameBackgroundColor"
	attrFillAlpha   = "frameBackgroundColorAlpha"
	attrStroke      = "frameBorderColor"
	attrStrokeAlpha = "frameBorderColorAlpha"
	attrStrokeWidth = "frameBorderWidth"
	attrVisible     = "visible"
)

// Base holds the properties shared by all annotation kinds. Use NewBase to
// obtain one with defaults; the zero value is not a valid annotation.
type Base struct {
	id               uuid.UUID
	anchorMode       core.AnchorMode
	mapPosition      core.Position2D
	mapPositionCRS   int
	relativePosition core.Point
	frameOffset      core.Vector
	frameSize        core.Size
	frameSizing      core.FrameSizing
	contentsMargin   float64
	frameStyle       render.FrameStyle
	visible          bool
}

// NewBase returns a map anchored, visible base with a fresh id.
func NewBase() Base {
	b := defaults()
	b.id = uuid.New()
	return b
}

func defaults() Base {
	return Base{
		anchorMode:     core.MapPoint,
		mapPositionCRS: geo.WGS84,
		frameOffset:    DefaultFrameOffset,
		frameSize:      DefaultFrameSize,
		frameSizing:    core.FixedSize,
		contentsMargin: DefaultContentsMargin,
		frameStyle:     DefaultFrameStyle,
		visible:        true,
	}
}

func (b *Base) ID() uuid.UUID { return b.id }

func (b *Base) SetID(id uuid.UUID) { b.id = id }

func (b *Base) AnchorMode() core.AnchorMode { return b.anchorMode }

// SetAnchorMode switches between map and screen anchoring. The stored map
// position is kept and becomes effective again when switching back.
func (b *Base) SetAnchorMode(m core.AnchorMode) { b.anchorMode = m }

// MapPosition returns the map anchor. ok is false for screen anchored
// annotations, which have no meaningful map position.
func (b *Base) MapPosition() (pos core.Position2D, ok bool) {
	return b.mapPosition, b.anchorMode == core.MapPoint
}

// SetMapPosition moves the map anchor. It is ignored, and returns false,
// while the annotation is anchored to the screen.
func (b *Base) SetMapPosition(pos core.Position2D) bool {
	if b.anchorMode != core.MapPoint {
		return false
	}
	b.mapPosition = pos
	return true
}

// MapPositionCRS returns the EPSG code of the map position.
func (b *Base) MapPositionCRS() int { return b.mapPositionCRS }

func (b *Base) SetMapPositionCRS(crs int) { b.mapPositionCRS = crs }

// RelativePosition returns the screen anchor as a fraction of the target
// size.
func (b *Base) RelativePosition() core.Point { return b.relativePosition }

func (b *Base) SetRelativePosition(p core.Point) { b.relativePosition = p }

// FrameOffset returns the vector from the anchor to the frame's top-left
// corner.
func (b *Base) FrameOffset() core.Vector { return b.frameOffset }

func (b *Base) SetFrameOffset(v core.Vector) { b.frameOffset = v }

func (b *Base) FrameSize() core.Size { return b.frameSize }

func (b *Base) SetFrameSize(s core.Size) { b.frameSize = s }

func (b *Base) FrameSizing() core.FrameSizing { return b.frameSizing }

func (b *Base) SetFrameSizing(s core.FrameSizing) { b.frameSizing = s }

// ContentsMargin returns the inset from the frame to the content area.
func (b *Base) ContentsMargin() float64 { return b.contentsMargin }

func (b *Base) SetContentsMargin(m float64) { b.contentsMargin = max(m, 0) }

func (b *Base) FrameStyle() render.FrameStyle { return b.frameStyle }

func (b *Base) SetFrameStyle(s render.FrameStyle) { b.frameStyle = s }

func (b *Base) Visible() bool { return b.visible }

func (b *Base) SetVisible(v bool) { b.visible = v }

// FrameRect returns the screen rectangle of the frame on a target of the
// given size. ok is false if the anchor cannot be placed.
func (b *Base) FrameRect(ctx render.Context, size core.Size, c Content) (r core.Rect, ok bool) {
	var anchor core.Point
	switch b.anchorMode {
	case core.FixedScreenOffset:
		anchor = core.Point{
			X: b.relativePosition.X * size.Width,
			Y: b.relativePosition.Y * size.Height,
		}
	default:
		p, err := ctx.MapToScreen(b.mapPosition, b.mapPositionCRS)
		if err != nil {
			return core.Rect{}, false
		}
		anchor = p
	}
	return core.RectFrom(anchor.Add(b.frameOffset), b.effectiveSize(c)), true
}

func (b *Base) effectiveSize(c Content) core.Size {
	if b.frameSizing == core.SizeToContent {
		if s, ok := c.(ContentSizer); ok {
			cs := s.ContentSize()
			return core.Size{
				Width:  cs.Width + 2*b.contentsMargin,
				Height: cs.Height + 2*b.contentsMargin,
			}
		}
	}
	return b.frameSize
}

// RenderFrame draws the frame and then calls c with the interior
// rectangle. Hidden annotations and anchors that cannot be projected draw
// nothing.
func (b *Base) RenderFrame(ctx render.Context, size core.Size, c Content) {
	if !b.visible {
		return
	}
	frame, ok := b.FrameRect(ctx, size, c)
	if !ok || frame.Empty() {
		return
	}
	ctx.DrawRect(frame, b.frameStyle)
	interior := frame.Inset(b.contentsMargin)
	if interior.Empty() {
		return
	}
	c.RenderContent(ctx, interior)
}

// WriteBase stores the shared state in node under the discriminator typ
// and appends the content element written by c.
func (b *Base) WriteBase(node *xmlnode.Element, typ string, c Content) error {
	node.SetAttr(attrType, typ)
	node.SetAttr(attrID, b.id.String())
	node.SetAttr(attrAnchorMode, b.anchorMode.String())
	if b.anchorMode == core.MapPoint {
		node.SetFloat(attrMapX, b.mapPosition.X)
		node.SetFloat(attrMapY, b.mapPosition.Y)
		node.SetInt(attrMapCRS, b.mapPositionCRS)
	} else {
		node.SetFloat(attrRelX, b.relativePosition.X)
		node.SetFloat(attrRelY, b.relativePosition.Y)
	}
	node.SetFloat(attrOffsetX, b.frameOffset.X)
	node.SetFloat(attrOffsetY, b.frameOffset.Y)
	node.SetFloat(attrWidth, b.frameSize.Width)
	node.SetFloat(attrHeight, b.frameSize.Height)
	node.SetAttr(attrSizing, b.frameSizing.String())
	node.SetFloat(attrMargin, b.contentsMargin)
	node.SetAttr(attrFill, colors.Hex(b.frameStyle.Fill))
	node.SetInt(attrFillAlpha, int(b.frameStyle.Fill.A))
	node.SetAttr(attrStroke, colors.Hex(b.frameStyle.Stroke))
	node.SetInt(attrStrokeAlpha, int(b.frameStyle.Stroke.A))
	node.SetFloat(attrStrokeWidth, b.frameStyle.StrokeWidth)
	node.SetBool(attrVisible, b.visible)

	content := xmlnode.New(ContentElement)
	if err := c.WriteContent(content); err != nil {
		return fmt.Errorf("write %s content: %w", typ, err)
	}
	node.AppendChild(content)
	return nil
}

// ReadBase restores the shared state from node and hands the content
// element to c. Every property missing from node gets its default; the id
// is kept unless node carries a valid one.
func (b *Base) ReadBase(node *xmlnode.Element, c Content) error {
	id := b.id
	*b = defaults()
	b.id = id

	r := xmlnode.NewReader(node)
	if s, ok := node.Attr(attrID); ok {
		if id, err := uuid.Parse(s); err == nil {
			b.id = id
		} else {
			r.Malformed(attrID, s)
		}
	}
	if s, ok := node.Attr(attrAnchorMode); ok {
		if m, err := core.ParseAnchorMode(s); err == nil {
			b.anchorMode = m
		} else {
			r.Malformed(attrAnchorMode, s)
		}
	}

	b.mapPosition = core.Position2D{
		X: readFinite(r, attrMapX, 0),
		Y: readFinite(r, attrMapY, 0),
	}
	if crs := r.Int(attrMapCRS, b.mapPositionCRS); crs > 0 {
		b.mapPositionCRS = crs
	} else {
		r.Malformed(attrMapCRS, node.AttrOr(attrMapCRS, ""))
	}
	b.relativePosition = core.Point{
		X: readFinite(r, attrRelX, 0),
		Y: readFinite(r, attrRelY, 0),
	}
	b.frameOffset = core.Vector{
		X: readFinite(r, attrOffsetX, DefaultFrameOffset.X),
		Y: readFinite(r, attrOffsetY, DefaultFrameOffset.Y),
	}
	b.frameSize = core.Size{
		Width:  readNonNegative(r, attrWidth, DefaultFrameSize.Width),
		Height: readNonNegative(r, attrHeight, DefaultFrameSize.Height),
	}
	if s, ok := node.Attr(attrSizing); ok {
		if fs, err := core.ParseFrameSizing(s); err == nil {
			b.frameSizing = fs
		} else {
			r.Malformed(attrSizing, s)
		}
	}
	b.contentsMargin = readNonNegative(r, attrMargin, DefaultContentsMargin)
	b.frameStyle = render.FrameStyle{
		Fill:        readColor(r, node, attrFill, attrFillAlpha, DefaultFrameStyle.Fill),
		Stroke:      readColor(r, node, attrStroke, attrStrokeAlpha, DefaultFrameStyle.Stroke),
		StrokeWidth: readNonNegative(r, attrStrokeWidth, DefaultFrameStyle.StrokeWidth),
	}
	b.visible = r.Bool(attrVisible, true)

	r.Wrap(c.ReadContent(node.Child(ContentElement)), ContentElement)
	return r.Err()
}

func readFinite(r *xmlnode.Reader, name string, def float64) float64 {
	return r.FloatRange(name, def, -math.MaxFloat64, math.MaxFloat64)
}

func readNonNegative(r *xmlnode.Reader, name string, def float64) float64 {
	return r.FloatRange(name, def, 0, math.MaxFloat64)
}

func readColor(r *xmlnode.Reader, node *xmlnode.Element, name, alphaName string, def color.NRGBA) color.NRGBA {
	alpha := r.Int(alphaName, int(def.A))
	if alpha < 0 || alpha > 255 {
		r.Malformed(alphaName, node.AttrOr(alphaName, ""))
		alpha = int(def.A)
	}
	s, ok := node.Attr(name)
	if !ok {
		return color.NRGBA{R: def.R, G: def.G, B: def.B, A: uint8(alpha)}
	}
	c, err := colors.Parse(s, uint8(alpha))
	if err != nil {
		r.Malformed(name, s)
		return color.NRGBA{R: def.R, G: def.G, B: def.B, A: uint8(alpha)}
	}
	return c
}
