package model

import (
	"sync"

	"github.com/google/uuid"
)

// PreviewHandle identifies a locally held preview of an attached file.
type PreviewHandle string

// Upload is a file attached to a form value.
type Upload struct {
	Name        string        `json:"name"`
	ContentType string        `json:"content_type,omitempty"`
	Data        []byte        `json:"-"`
	Preview     PreviewHandle `json:"preview,omitempty"`
}

// Previews tracks preview handles for attached files. Every handle handed out
// by Acquire stays open until Release is called for it.
type Previews struct {
	mu        sync.Mutex
	open      map[PreviewHandle]string
	onRelease func(PreviewHandle)
}

// PreviewOption configures Previews.
type PreviewOption func(*Previews)

// WithReleaseHook registers a callback invoked once per released handle.
func WithReleaseHook(fn func(PreviewHandle)) PreviewOption {
	return func(p *Previews) {
		p.onRelease = fn
	}
}

// NewPreviews returns an empty preview registry.
func NewPreviews(opts ...PreviewOption) *Previews {
	p := &Previews{open: make(map[PreviewHandle]string)}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Acquire assigns a fresh preview handle to upload.
func (p *Previews) Acquire(upload Upload) Upload {
	handle := PreviewHandle("preview:" + uuid.NewString())
	p.mu.Lock()
	p.open[handle] = upload.Name
	p.mu.Unlock()
	upload.Preview = handle
	return upload
}

// Release closes handle. Releasing an unknown or already released handle is
// a no-op and reports false.
func (p *Previews) Release(handle PreviewHandle) bool {
	if handle == "" {
		return false
	}
	p.mu.Lock()
	_, ok := p.open[handle]
	delete(p.open, handle)
	hook := p.onRelease
	p.mu.Unlock()
	if ok && hook != nil {
		hook(handle)
	}
	return ok
}

// ReleaseValue releases every preview held by value.
func (p *Previews) ReleaseValue(value any) {
	for _, handle := range handlesOf(value) {
		p.Release(handle)
	}
}

// ReleaseReplaced releases previews held by old that are not carried into
// next.
func (p *Previews) ReleaseReplaced(old, next any) {
	keep := make(map[PreviewHandle]struct{})
	for _, handle := range handlesOf(next) {
		keep[handle] = struct{}{}
	}
	for _, handle := range handlesOf(old) {
		if _, ok := keep[handle]; ok {
			continue
		}
		p.Release(handle)
	}
}

// ReleaseAll releases every preview held by values.
func (p *Previews) ReleaseAll(values Values) {
	for _, value := range values {
		p.ReleaseValue(value)
	}
}

// Open reports how many handles are still held.
func (p *Previews) Open() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.open)
}

func handlesOf(value any) []PreviewHandle {
	switch typed := value.(type) {
	case Upload:
		if typed.Preview != "" {
			return []PreviewHandle{typed.Preview}
		}
	case *Upload:
		if typed != nil && typed.Preview != "" {
			return []PreviewHandle{typed.Preview}
		}
	case []Upload:
		out := make([]PreviewHandle, 0, len(typed))
		for _, upload := range typed {
			if upload.Preview != "" {
				out = append(out, upload.Preview)
			}
		}
		return out
	}
	return nil
}
