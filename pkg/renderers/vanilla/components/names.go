package components

import "github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"

// Canonical component names used by the vanilla renderer and default registry.
const (
	NameText        = string(render.ControlText)
	NameNumber      = string(render.ControlNumber)
	NameSelect      = string(render.ControlSelect)
	NameRadio       = string(render.ControlRadio)
	NameCheckbox    = string(render.ControlCheckbox)
	NameMultiSelect = string(render.ControlMultiSelect)
	NameDivider     = string(render.ControlDivider)
)
