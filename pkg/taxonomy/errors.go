package taxonomy

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidTaxonomy     = goerr.New("invalid taxonomy")
	ErrUnknownFieldType    = goerr.New("unknown field type")
	ErrMissingOptions      = goerr.New("option field requires at least one option")
	ErrDuplicateField      = goerr.New("duplicate field name")
	ErrUnknownGroup        = goerr.New("unknown field group")
	ErrUnknownOptionList   = goerr.New("unknown option list")
	ErrGroupCycle          = goerr.New("field group includes itself")
	ErrDanglingConditional = goerr.New("conditional references unknown field")
	ErrCategoryNotFound    = goerr.New("category not found")
	ErrSubCategoryNotFound = goerr.New("sub-category not found")
)

const (
	CategoryKey    = "category"
	SubCategoryKey = "subcategory"
	FieldKey       = "field"
	FieldTypeKey   = "field_type"
	GroupKey       = "group"
	OptionListKey  = "option_list"
)

func wrapNotFound(sentinel error, key, value string) error {
	return goerr.Wrap(sentinel, "lookup failed", goerr.V(key, value))
}
