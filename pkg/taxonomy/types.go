package taxonomy

import (
	"strings"
	"time"
)

// FieldType enumerates the controls a sub-category form can ask for.
type FieldType string

const (
	FieldText          FieldType = "text"
	FieldNumber        FieldType = "number"
	FieldSelect        FieldType = "select"
	FieldRadio         FieldType = "radio"
	FieldCheckbox      FieldType = "checkbox"
	FieldMultiSelect   FieldType = "multiselect"
	FieldSectionHeader FieldType = "section_header"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldSelect, FieldRadio, FieldCheckbox, FieldMultiSelect, FieldSectionHeader:
		return true
	}
	return false
}

// HasOptions reports whether values of t are drawn from an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldRadio || t == FieldMultiSelect
}

// Width is a layout hint for the field column span.
type Width string

const (
	WidthFull  Width = "full"
	WidthHalf  Width = "half"
	WidthThird Width = "third"
)

// Conditional hides a field unless values[Field] equals Value.
type Conditional struct {
	Field string `json:"field" yaml:"field"`
	Value any    `json:"value" yaml:"value"`
}

// FormField describes one input of a sub-category form.
type FormField struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Type        FieldType    `json:"type"`
	Options     []string     `json:"options,omitempty"`
	Required    bool         `json:"required,omitempty"`
	Conditional *Conditional `json:"conditional,omitempty"`
	Width       Width        `json:"width,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate shared schema.
func (f FormField) Clone() FormField {
	out := f
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.Conditional != nil {
		cond := *f.Conditional
		out.Conditional = &cond
	}
	return out
}

// HasOption reports whether value is one of the field's options.
func (f FormField) HasOption(value string) bool {
	for _, option := range f.Options {
		if option == value {
			return true
		}
	}
	return false
}

// SubCategory owns the field list rendered for one kind of property.
type SubCategory struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Fields []FormField `json:"fields"`
}

// Field looks up a field by name.
func (s SubCategory) Field(name string) (FormField, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FormField{}, false
}

// Clone returns a deep copy of the sub-category.
func (s SubCategory) Clone() SubCategory {
	out := s
	if s.Fields != nil {
		out.Fields = make([]FormField, len(s.Fields))
		for i, field := range s.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	return out
}

func (s SubCategory) matches(key string) bool {
	return key != "" && (s.ID == key || s.Name == key || s.Label == key)
}

// Category groups sub-categories under a top-level property class.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Label         string        `json:"label"`
	Icon          string        `json:"icon,omitempty"`
	SubCategories []SubCategory `json:"sub_categories"`
}

// Clone returns a deep copy of the category.
func (c Category) Clone() Category {
	out := c
	if c.SubCategories != nil {
		out.SubCategories = make([]SubCategory, len(c.SubCategories))
		for i, sub := range c.SubCategories {
			out.SubCategories[i] = sub.Clone()
		}
	}
	return out
}

// SubCategory resolves a sub-category by id, name or label.
func (c Category) SubCategory(key string) (SubCategory, bool) {
	key = strings.TrimSpace(key)
	for _, sub := range c.SubCategories {
		if sub.matches(key) {
			return sub.Clone(), true
		}
	}
	return SubCategory{}, false
}

func (c Category) matches(key string) bool {
	return key != "" && (c.ID == key || c.Name == key || c.Label == key)
}

// Origin records where a snapshot's identities came from.
type Origin string

const (
	OriginStatic Origin = "static"
	OriginRemote Origin = "remote"
)

// Snapshot is an immutable view of the taxonomy at one point in time.
type Snapshot struct {
	Categories []Category `json:"categories"`
	Origin     Origin     `json:"origin"`
	LoadedAt   time.Time  `json:"loaded_at"`
}

// Category resolves a category by id, name or label.
func (s Snapshot) Category(key string) (Category, bool) {
	key = strings.TrimSpace(key)
	for _, cat := range s.Categories {
		if cat.matches(key) {
			return cat.Clone(), true
		}
	}
	return Category{}, false
}

// Lookup resolves a category and one of its sub-categories.
func (s Snapshot) Lookup(categoryKey, subKey string) (Category, SubCategory, error) {
	cat, ok := s.Category(categoryKey)
	if !ok {
		return Category{}, SubCategory{}, wrapNotFound(ErrCategoryNotFound, CategoryKey, categoryKey)
	}
	sub, ok := cat.SubCategory(subKey)
	if !ok {
		return Category{}, SubCategory{}, wrapNotFound(ErrSubCategoryNotFound, SubCategoryKey, subKey)
	}
	return cat, sub, nil
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Categories != nil {
		out.Categories = make([]Category, len(s.Categories))
		for i, cat := range s.Categories {
			out.Categories[i] = cat.Clone()
		}
	}
	return out
}

// RemoteCategory is a category row as returned by the backend.
type RemoteCategory struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// RemoteSubCategory is a sub-category row as returned by the backend.
type RemoteSubCategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Label      string `json:"label"`
}
