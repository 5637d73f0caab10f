package richtext

import (
	"fmt"
	"sync"

	"github.com/OCAP2/annotations/internal/cache"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FaceSource resolves a character format to a font face.
type FaceSource interface {
	Face(f CharFormat) font.Face
}

// Faces is a FaceSource backed by the Go font family. Sizes are in points
// at 72 DPI, so one point is one pixel. Faces are shared between callers
// and must not be used from several goroutines at once.
type Faces struct {
	cache *cache.FaceCache
}

// NewFaces returns a FaceSource storing its faces in c.
func NewFaces(c *cache.FaceCache) *Faces {
	return &Faces{cache: c}
}

var (
	defaultFaces     *Faces
	defaultFacesOnce sync.Once
)

// DefaultFaces returns the process wide FaceSource.
func DefaultFaces() *Faces {
	defaultFacesOnce.Do(func() {
		defaultFaces = NewFaces(cache.NewFaceCache())
	})
	return defaultFaces
}

// Face implements FaceSource. If the font cannot be loaded the 7x13 bitmap
// face is returned.
func (fs *Faces) Face(f CharFormat) font.Face {
	key := cache.FaceKey{
		Family: f.FamilyName(),
		Size:   f.PointSize(),
		Bold:   f.Bold,
		Italic: f.Italic,
	}
	face, err := fs.cache.GetOrCreate(key, func() (font.Face, error) {
		return newFace(key)
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

type fontKey struct {
	family       string
	bold, italic bool
}

var fontData = map[fontKey][]byte{
	{FamilySans, false, false}: goregular.TTF,
	{FamilySans, true, false}:  gobold.TTF,
	{FamilySans, false, true}:  goitalic.TTF,
	{FamilySans, true, true}:   gobolditalic.TTF,
	{FamilyMono, false, false}: gomono.TTF,
	{FamilyMono, true, false}:  gomonobold.TTF,
	{FamilyMono, false, true}:  gomonoitalic.TTF,
	{FamilyMono, true, true}:   gomonobolditalic.TTF,
}

var (
	parsedMu sync.Mutex
	parsed   = map[fontKey]*opentype.Font{}
)

func newFace(key cache.FaceKey) (font.Face, error) {
	fk := fontKey{family: key.Family, bold: key.Bold, italic: key.Italic}
	data, ok := fontData[fk]
	if !ok {
		fk.family = FamilySans
		data = fontData[fk]
	}

	parsedMu.Lock()
	f, ok := parsed[fk]
	if !ok {
		var err error
		f, err = opentype.Parse(data)
		if err != nil {
			parsedMu.Unlock()
			return nil, fmt.Errorf("parse %s font: %w", fk.family, err)
		}
		parsed[fk] = f
	}
	parsedMu.Unlock()

	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    key.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
