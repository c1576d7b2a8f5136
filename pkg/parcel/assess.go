package parcel

import (
	"fmt"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

const (
	MsgUPIRequired = "UPI is required."
	MsgDuplicate   = "This UPI has already been uploaded by you — re-upload is not allowed."
	MsgAllowed     = "Parcel OK for upload."
)

// Outcome is the verdict of a UPI verification.
type Outcome struct {
	Verification *Verification
	// Verified and Allowed are both true only for a parcel that may be
	// uploaded.
	Verified bool
	Allowed  bool
	Message  string
	// Warning is a non-blocking land-use mismatch notice that the user has to
	// confirm before submitting.
	Warning string
	// Fields holds the owner, location and coordinate values to merge into
	// the form.
	Fields model.Values
}

// Assess turns a parsed parcel into a verdict for category. A duplicate
// upload is rejected regardless of the parcel flags.
func Assess(v *Verification, category taxonomy.Category, duplicate bool) Outcome {
	out := Outcome{Verification: v}
	if duplicate {
		out.Message = MsgDuplicate
		return out
	}
	if reasons := v.Blocked(); len(reasons) > 0 {
		out.Message = fmt.Sprintf("Upload blocked: %s.", strings.Join(reasons, ", "))
		return out
	}

	out.Verified = true
	out.Allowed = true
	out.Message = MsgAllowed
	out.Fields = v.Fields()
	out.Warning = LandUseWarning(v.LandUse, categoryName(category))
	return out
}

// Fields returns the form values a verified parcel fills in. Empty parcel
// attributes are left out so they do not overwrite user input.
func (v *Verification) Fields() model.Values {
	out := model.Values{}
	if v.Owner.ID != "" {
		out["owner_id"] = v.Owner.ID
		out["owner_name"] = v.Owner.Name
	}
	for name, value := range map[string]string{
		"district": v.Location.District,
		"sector":   v.Location.Sector,
		"cell":     v.Location.Cell,
		"village":  v.Location.Village,
	} {
		if value != "" {
			out[name] = value
		}
	}
	if v.Latitude != nil {
		out["latitude"] = *v.Latitude
	}
	if v.Longitude != nil {
		out["longitude"] = *v.Longitude
	}
	return out
}

// LandUseWarning compares the parcel land use with the category name after
// reducing both to lowercase letters. It returns an empty string when either
// side is blank or one contains the other.
func LandUseWarning(landUse, category string) string {
	p := lettersOnly(landUse)
	c := lettersOnly(category)
	if p == "" || c == "" || strings.Contains(p, c) || strings.Contains(c, p) {
		return ""
	}
	return fmt.Sprintf("Parcel land use (%s) does not match selected category (%s). Your property may not be approved.",
		orNA(landUse), orNA(category))
}

// Duplicate reports whether one of the caller's existing properties already
// carries upi.
func Duplicate(items []map[string]any, upi string) bool {
	want := strings.TrimSpace(upi)
	if want == "" {
		return false
	}
	for _, item := range items {
		got := text(item["upi"])
		if got == "" {
			got = text(item["UPI"])
		}
		if strings.TrimSpace(got) == want {
			return true
		}
	}
	return false
}

// PlotSize resolves the plot area used to cap built-up inputs: the form's
// size value, then the parcel size, then its area, then the planned land use
// total. It reports false when none is positive.
func PlotSize(values model.Values, v *Verification) (float64, bool) {
	if n, ok := values.Number("size"); ok && n > 0 {
		return n, true
	}
	if v == nil {
		return 0, false
	}
	for _, n := range []float64{v.Size, v.Area, v.PlannedArea()} {
		if n > 0 {
			return n, true
		}
	}
	return 0, false
}

func categoryName(category taxonomy.Category) string {
	if category.Label != "" {
		return category.Label
	}
	return category.Name
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
