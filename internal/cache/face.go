package cache

import (
	"sync"

	"golang.org/x/image/font"
)

// FaceKey identifies a font face by family, point size and style.
type FaceKey struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// FaceCache maps face keys to loaded font faces. Faces are expensive to
// build from font data and cheap to share, so every text layout goes
// through one cache.
type FaceCache struct {
	mu    sync.RWMutex
	faces map[FaceKey]font.Face
}

// NewFaceCache creates a new FaceCache
func NewFaceCache() *FaceCache {
	return &FaceCache{
		faces: make(map[FaceKey]font.Face),
	}
}

// Get retrieves a face by key
func (c *FaceCache) Get(key FaceKey) (font.Face, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.faces[key]
	return f, ok
}

// GetOrCreate returns the cached face for key, calling create and storing
// its result on a miss. A failed create is not cached.
func (c *FaceCache) GetOrCreate(key FaceKey, create func() (font.Face, error)) (font.Face, error) {
	if f, ok := c.Get(key); ok {
		return f, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	f, err := create()
	if err != nil {
		return nil, err
	}
	c.faces[key] = f
	return f, nil
}
