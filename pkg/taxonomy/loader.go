package taxonomy

import (
	"bytes"
	_ "embed"
	"os"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed data/form_config.yaml
var defaultConfig []byte

var (
	defaultOnce       sync.Once
	defaultCategories []Category
	defaultErr        error
)

// Default returns the built-in taxonomy. The embedded table is validated on
// first use; a malformed table is a build defect and panics.
func Default() []Category {
	defaultOnce.Do(func() {
		defaultCategories, defaultErr = Parse(defaultConfig)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	out := make([]Category, len(defaultCategories))
	for i, cat := range defaultCategories {
		out[i] = cat.Clone()
	}
	return out
}

// LoadFile parses a taxonomy document from disk.
func LoadFile(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read taxonomy file", goerr.V("path", path))
	}
	cats, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse taxonomy file", goerr.V("path", path))
	}
	return cats, nil
}

type document struct {
	Options    map[string][]string   `yaml:"options"`
	Groups     map[string][]fieldDoc `yaml:"groups"`
	Categories []categoryDoc         `yaml:"categories"`
}

type categoryDoc struct {
	Name          string           `yaml:"name"`
	Label         string           `yaml:"label"`
	Icon          string           `yaml:"icon"`
	SubCategories []subCategoryDoc `yaml:"subcategories"`
}

type subCategoryDoc struct {
	Name   string     `yaml:"name"`
	Label  string     `yaml:"label"`
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Include     string       `yaml:"include"`
	Name        string       `yaml:"name"`
	Label       string       `yaml:"label"`
	Type        string       `yaml:"type"`
	Options     []string     `yaml:"options"`
	OptionsFrom string       `yaml:"options_from"`
	Required    bool         `yaml:"required"`
	Conditional *Conditional `yaml:"conditional"`
	Width       string       `yaml:"width"`
}

// Parse decodes and validates a taxonomy document, expanding shared option
// lists and field groups.
func Parse(data []byte) ([]Category, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, goerr.Wrap(ErrInvalidTaxonomy, "failed to decode yaml", goerr.V("error", err.Error()))
	}
	if len(doc.Categories) == 0 {
		return nil, goerr.Wrap(ErrInvalidTaxonomy, "no categories defined")
	}

	exp := expander{doc: doc}
	seenCats := make(map[string]struct{}, len(doc.Categories))
	out := make([]Category, 0, len(doc.Categories))
	for _, cd := range doc.Categories {
		name := strings.TrimSpace(cd.Name)
		if name == "" || strings.TrimSpace(cd.Label) == "" {
			return nil, goerr.Wrap(ErrInvalidTaxonomy, "category name and label are required", goerr.V(CategoryKey, cd.Name))
		}
		if _, dup := seenCats[name]; dup {
			return nil, goerr.Wrap(ErrInvalidTaxonomy, "duplicate category", goerr.V(CategoryKey, name))
		}
		seenCats[name] = struct{}{}

		cat := Category{ID: name, Name: name, Label: cd.Label, Icon: cd.Icon}
		for _, sd := range cd.SubCategories {
			sub, err := exp.subCategory(sd)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid sub-category", goerr.V(CategoryKey, name))
			}
			cat.SubCategories = append(cat.SubCategories, sub)
		}
		out = append(out, cat)
	}
	return out, nil
}

type expander struct {
	doc document
}

func (e expander) subCategory(sd subCategoryDoc) (SubCategory, error) {
	name := strings.TrimSpace(sd.Name)
	if name == "" || strings.TrimSpace(sd.Label) == "" {
		return SubCategory{}, goerr.Wrap(ErrInvalidTaxonomy, "sub-category name and label are required", goerr.V(SubCategoryKey, sd.Name))
	}

	fields, err := e.expand(sd.Fields, nil)
	if err != nil {
		return SubCategory{}, goerr.Wrap(err, "failed to expand fields", goerr.V(SubCategoryKey, name))
	}

	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, dup := seen[field.Name]; dup {
			return SubCategory{}, goerr.Wrap(ErrDuplicateField, "field declared twice", goerr.V(SubCategoryKey, name), goerr.V(FieldKey, field.Name))
		}
		seen[field.Name] = struct{}{}
	}
	for _, field := range fields {
		if field.Conditional == nil {
			continue
		}
		if _, ok := seen[field.Conditional.Field]; !ok {
			return SubCategory{}, goerr.Wrap(ErrDanglingConditional, "invalid conditional",
				goerr.V(SubCategoryKey, name), goerr.V(FieldKey, field.Name), goerr.V("depends_on", field.Conditional.Field))
		}
	}

	return SubCategory{ID: name, Name: name, Label: sd.Label, Fields: fields}, nil
}

func (e expander) expand(docs []fieldDoc, stack []string) ([]FormField, error) {
	var out []FormField
	for _, fd := range docs {
		if group := strings.TrimSpace(fd.Include); group != "" {
			for _, open := range stack {
				if open == group {
					return nil, goerr.Wrap(ErrGroupCycle, "cyclic include", goerr.V(GroupKey, group))
				}
			}
			members, ok := e.doc.Groups[group]
			if !ok {
				return nil, goerr.Wrap(ErrUnknownGroup, "include failed", goerr.V(GroupKey, group))
			}
			expanded, err := e.expand(members, append(stack, group))
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}

		field, err := e.field(fd)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

func (e expander) field(fd fieldDoc) (FormField, error) {
	name := strings.TrimSpace(fd.Name)
	if name == "" {
		return FormField{}, goerr.Wrap(ErrInvalidTaxonomy, "field name is required", goerr.V("label", fd.Label))
	}
	typ := FieldType(strings.TrimSpace(fd.Type))
	if !typ.Valid() {
		return FormField{}, goerr.Wrap(ErrUnknownFieldType, "invalid field", goerr.V(FieldKey, name), goerr.V(FieldTypeKey, fd.Type))
	}

	options := fd.Options
	if ref := strings.TrimSpace(fd.OptionsFrom); ref != "" {
		list, ok := e.doc.Options[ref]
		if !ok {
			return FormField{}, goerr.Wrap(ErrUnknownOptionList, "invalid field", goerr.V(FieldKey, name), goerr.V(OptionListKey, ref))
		}
		options = list
	}
	if typ.HasOptions() && len(options) == 0 {
		return FormField{}, goerr.Wrap(ErrMissingOptions, "invalid field", goerr.V(FieldKey, name), goerr.V(FieldTypeKey, typ))
	}

	width := Width(strings.TrimSpace(fd.Width))
	switch width {
	case "":
		width = WidthFull
	case WidthFull, WidthHalf, WidthThird:
	default:
		return FormField{}, goerr.Wrap(ErrInvalidTaxonomy, "unknown width", goerr.V(FieldKey, name), goerr.V("width", fd.Width))
	}

	field := FormField{
		Name:     name,
		Label:    fd.Label,
		Type:     typ,
		Required: fd.Required && typ != FieldSectionHeader,
		Width:    width,
	}
	if len(options) > 0 {
		field.Options = append([]string(nil), options...)
	}
	if fd.Conditional != nil {
		cond := *fd.Conditional
		field.Conditional = &cond
	}
	return field, nil
}
