package render

import (
	"context"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

// Renderer draws a sub-category form into a byte representation (HTML,
// terminal answers serialised as JSON, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form Form, options Options) ([]byte, error)
}

// Form is the schema slice a renderer draws: one sub-category of one
// category.
type Form struct {
	Category    taxonomy.Category
	SubCategory taxonomy.SubCategory
}

// Fields returns the sub-category fields in schema order.
func (f Form) Fields() []taxonomy.FormField {
	return f.SubCategory.Fields
}
