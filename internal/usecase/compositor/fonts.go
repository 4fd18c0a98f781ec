package compositor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// FontBook resolves CSS-ish font family names to parsed TrueType fonts.
// Parsed fonts are shared. Faces are not safe for concurrent use, so each
// render builds its own through newFaceCache.
type FontBook struct {
	mu       sync.RWMutex
	families map[string]*truetype.Font
	fallback *truetype.Font
}

var builtinFamilies = map[string][]byte{
	"arial":         goregular.TTF,
	"helvetica":     goregular.TTF,
	"sans-serif":    goregular.TTF,
	"go":            goregular.TTF,
	"arial black":   gobold.TTF,
	"impact":        gobold.TTF,
	"georgia":       goitalic.TTF,
	"serif":         gomedium.TTF,
	"comic sans ms": gosmallcaps.TTF,
}

// NewFontBook returns a book with the built-in Go fonts registered.
func NewFontBook() (*FontBook, error) {
	fb := &FontBook{families: make(map[string]*truetype.Font)}

	parsed := make(map[*byte]*truetype.Font)
	for name, ttf := range builtinFamilies {
		key := &ttf[0]
		f, ok := parsed[key]
		if !ok {
			var err error
			f, err = truetype.Parse(ttf)
			if err != nil {
				return nil, fmt.Errorf("failed to parse builtin font %s: %w", name, err)
			}
			parsed[key] = f
		}
		fb.families[name] = f
	}
	fb.fallback = fb.families["arial"]

	return fb, nil
}

// LoadFontBook builds the built-in book and adds the .ttf files of dir when
// dir is set. It returns how many extra families were registered.
func LoadFontBook(dir string) (*FontBook, int, error) {
	fb, err := NewFontBook()
	if err != nil {
		return nil, 0, err
	}
	if dir == "" {
		return fb, 0, nil
	}
	n, err := fb.LoadDir(dir)
	return fb, n, err
}

// Register adds or replaces a family from raw TTF bytes.
func (fb *FontBook) Register(family string, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("failed to parse font %s: %w", family, err)
	}
	fb.mu.Lock()
	fb.families[normalizeFamily(family)] = f
	fb.mu.Unlock()
	return nil
}

// LoadDir registers every .ttf file in dir, named after the file without
// its extension.
func (fb *FontBook) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read font dir: %w", err)
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".ttf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, fmt.Errorf("failed to read font %s: %w", e.Name(), err)
		}
		if err := fb.Register(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())), data); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Lookup returns the font for family, or the fallback.
func (fb *FontBook) Lookup(family string) *truetype.Font {
	fb.mu.RLock()
	defer fb.mu.RUnlock()

	// "Arial, sans-serif" style lists pick the first known family.
	for _, name := range strings.Split(family, ",") {
		if f, ok := fb.families[normalizeFamily(name)]; ok {
			return f
		}
	}
	return fb.fallback
}

func normalizeFamily(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`))
}

type faceKey struct {
	font *truetype.Font
	size float64
}

// faceCache holds the faces of one render.
type faceCache struct {
	book  *FontBook
	faces map[faceKey]font.Face
}

func newFaceCache(book *FontBook) *faceCache {
	return &faceCache{book: book, faces: make(map[faceKey]font.Face)}
}

func (fc *faceCache) face(family string, size float64) font.Face {
	k := faceKey{font: fc.book.Lookup(family), size: size}
	if f, ok := fc.faces[k]; ok {
		return f
	}
	f := truetype.NewFace(k.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	fc.faces[k] = f
	return f
}

func (fc *faceCache) measurer(family string) familyMeasurer {
	return familyMeasurer{cache: fc, family: family}
}

// familyMeasurer adapts one family to textlayout.Measurer.
type familyMeasurer struct {
	cache  *faceCache
	family string
}

func (m familyMeasurer) Advance(text string, size float64) float64 {
	if size <= 0 {
		return 0
	}
	return float64(font.MeasureString(m.cache.face(m.family, size), text)) / 64
}

func (m familyMeasurer) Metrics(size float64) (float64, float64) {
	if size <= 0 {
		return 0, 0
	}
	met := m.cache.face(m.family, size).Metrics()
	return float64(met.Ascent) / 64, float64(met.Descent) / 64
}

func (fc *faceCache) close() {
	for _, f := range fc.faces {
		f.Close()
	}
}
