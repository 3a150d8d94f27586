// Package chart renders forecast line charts and tracks the lifetime of the
// rendered chart instances.
package chart

import (
	"encoding/base64"
	"sync"
)

// Color is an RGBA color for a series line; the area below the line uses the
// same color at FillAlpha.
type Color struct {
	R, G, B uint8
}

// FillAlpha is the opacity of the area fill below a series (0.1 of 255).
const FillAlpha = 26

// Palette used by the dashboard sections.
var (
	ColorAdmissions  = Color{R: 78, G: 141, B: 242}
	ColorBeds        = Color{R: 54, G: 162, B: 235}
	ColorStaff       = Color{R: 255, G: 159, B: 64}
	ColorICU         = Color{R: 75, G: 192, B: 192}
	ColorEmergency   = Color{R: 255, G: 99, B: 132}
	ColorDepartments = Color{R: 153, G: 102, B: 255}
)

// Series is one line of a chart.
type Series struct {
	Name   string
	Values []float64
	Color  Color
}

// Spec describes a chart bound to a target canvas. Labels form the X domain
// shared by all series.
type Spec struct {
	ID     string
	Title  string
	Labels []string
	Series []Series
}

// Renderer creates chart instances.
type Renderer interface {
	Render(spec Spec) (Handle, error)
}

// Handle is a live chart instance. Release frees the rendered content; a
// released handle must not be displayed again.
type Handle interface {
	ID() string
	ContentType() string
	Bytes() []byte
	DataURI() string
	Release()
	Released() bool
}

type image struct {
	mu          sync.Mutex
	id          string
	contentType string
	data        []byte
	released    bool
}

// NewHandle wraps rendered chart content in a Handle.
func NewHandle(id, contentType string, data []byte) Handle {
	return &image{id: id, contentType: contentType, data: data}
}

func (i *image) ID() string {
	return i.id
}

func (i *image) ContentType() string {
	return i.contentType
}

func (i *image) Bytes() []byte {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.data
}

// DataURI returns the content inline as a data: URI, or "" when released or
// empty.
func (i *image) DataURI() string {
	data := i.Bytes()
	if len(data) == 0 {
		return ""
	}
	return "data:" + i.contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (i *image) Release() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.data = nil
	i.released = true
}

func (i *image) Released() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.released
}

// HandleSet is the ordered collection of live chart handles owned by one
// render target. It is not safe for concurrent use.
type HandleSet struct {
	handles []Handle
}

// Add appends a handle.
func (s *HandleSet) Add(h Handle) {
	s.handles = append(s.handles, h)
}

// ReleaseAll releases every held handle and empties the set. It returns the
// number of handles released.
func (s *HandleSet) ReleaseAll() int {
	n := len(s.handles)
	for _, h := range s.handles {
		if h != nil {
			h.Release()
		}
	}
	s.handles = nil
	return n
}

// Len returns the number of held handles.
func (s *HandleSet) Len() int {
	return len(s.handles)
}

// Get returns the held handle with the given id.
func (s *HandleSet) Get(id string) (Handle, bool) {
	for _, h := range s.handles {
		if h.ID() == id {
			return h, true
		}
	}
	return nil, false
}
