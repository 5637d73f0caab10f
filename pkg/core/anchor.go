// pkg/core/anchor.go
package core

import "fmt"

// AnchorMode selects what an annotation's position is pinned to.
type AnchorMode int

const (
	// MapPoint pins the annotation to a map coordinate. The anchor is
	// re-projected on every redraw.
	MapPoint AnchorMode = iota
	// FixedScreenOffset pins the annotation to a position relative to the
	// canvas, independent of the map extent.
	FixedScreenOffset
)

func (m AnchorMode) String() string {
	switch m {
	case MapPoint:
		return "mapPoint"
	case FixedScreenOffset:
		return "fixedScreen"
	default:
		return fmt.Sprintf("AnchorMode(%d)", int(m))
	}
}

// ParseAnchorMode is the inverse of AnchorMode.String.
func ParseAnchorMode(s string) (AnchorMode, error) {
	switch s {
	case "mapPoint":
		return MapPoint, nil
	case "fixedScreen":
		return FixedScreenOffset, nil
	default:
		return MapPoint, fmt.Errorf("unknown anchor mode %q", s)
	}
}

// FrameSizing selects whether the frame keeps its configured size or grows
// and shrinks with its content.
type FrameSizing int

const (
	FixedSize FrameSizing = iota
	SizeToContent
)

func (s FrameSizing) String() string {
	switch s {
	case FixedSize:
		return "fixed"
	case SizeToContent:
		return "content"
	default:
		return fmt.Sprintf("FrameSizing(%d)", int(s))
	}
}

// ParseFrameSizing is the inverse of FrameSizing.String.
func ParseFrameSizing(s string) (FrameSizing, error) {
	switch s {
	case "fixed":
		return FixedSize, nil
	case "content":
		return SizeToContent, nil
	default:
		return FixedSize, fmt.Errorf("unknown frame sizing %q", s)
	}
}
