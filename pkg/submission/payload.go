package submission

import (
	"strconv"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/parcel"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/m-mizutani/goerr/v2"
)

// topLevel lists the value keys promoted out of details. images and video_3d
// travel as uploads.
var topLevel = map[string]struct{}{
	"upi":              {},
	"owner_id":         {},
	"owner_name":       {},
	"category_id":      {},
	"subcategory_id":   {},
	"estimated_amount": {},
	"latitude":         {},
	"longitude":        {},
	"images":           {},
	"video_link":       {},
	"video_3d":         {},
}

// Payload is a create-property request ready to send.
type Payload struct {
	Body map[string]any
	// Images are uploaded one by one once the property exists.
	Images []model.Upload
	// Model3D is the optional 3D walkthrough attached to video_3d.
	Model3D *model.Upload
}

// BuildPayload assembles the create-property body. Category and
// sub-category ids must be the numeric backend ids. Every value that is not
// a top-level key lands in details.
func BuildPayload(cat taxonomy.Category, sub taxonomy.SubCategory, values model.Values, v *parcel.Verification) (Payload, error) {
	categoryID, err := numericID(cat.ID)
	if err != nil {
		return Payload{}, goerr.Wrap(ErrNonNumericID, "category has no backend id", goerr.V(CategoryKey, cat.ID))
	}
	subID, err := numericID(sub.ID)
	if err != nil {
		return Payload{}, goerr.Wrap(ErrNonNumericID, "sub-category has no backend id", goerr.V(SubCategoryKey, sub.ID))
	}

	body := map[string]any{
		"upi":                strings.TrimSpace(values.Text("upi")),
		"owner_id":           values.Text("owner_id"),
		"owner_name":         values.Text("owner_name"),
		"category_id":        categoryID,
		"subcategory_id":     subID,
		"estimated_amount":   numberOrNull(values["estimated_amount"]),
		"latitude":           numberOrNull(values["latitude"]),
		"longitude":          numberOrNull(values["longitude"]),
		"size":               sizeOf(values, v),
		"video_link":         textOrNull(values["video_link"]),
		"parcel_raw":         nil,
		"planned_land_uses":  []any{},
		"isUnderMortgage":    false,
		"isUnderRestriction": false,
		"inProcess":          false,
	}
	if v != nil {
		body["parcel_raw"] = v.RawValue()
		body["planned_land_uses"] = v.PlannedLandUses
		body["isUnderMortgage"] = v.UnderMortgage
		body["isUnderRestriction"] = v.UnderRestriction
		body["inProcess"] = v.InProcess
	}

	details := make(map[string]any)
	for key, value := range values.Clone() {
		if _, ok := topLevel[key]; ok {
			continue
		}
		details[key] = value
	}
	body["details"] = details

	payload := Payload{Body: body}
	payload.Images = uploadsOf(values["images"])
	if models := uploadsOf(values["video_3d"]); len(models) > 0 {
		payload.Model3D = &models[0]
	}
	return payload, nil
}

// Keys returns every form value key the payload carries, at the top level,
// in details or as an upload.
func (p Payload) Keys() []string {
	var out []string
	for key := range p.Body {
		if key == "details" {
			continue
		}
		out = append(out, key)
	}
	if details, ok := p.Body["details"].(map[string]any); ok {
		for key := range details {
			out = append(out, key)
		}
	}
	if len(p.Images) > 0 {
		out = append(out, "images")
	}
	if p.Model3D != nil {
		out = append(out, "video_3d")
	}
	return out
}

func numericID(id string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(id), 10, 64)
}

// sizeOf prefers the form size, then the parcel size, then the planned land
// use total.
func sizeOf(values model.Values, v *parcel.Verification) any {
	if n, ok := values.Number("size"); ok && n != 0 {
		return n
	}
	if v == nil {
		return nil
	}
	if v.Size != 0 {
		return v.Size
	}
	if len(v.PlannedLandUses) > 0 {
		return v.PlannedArea()
	}
	return nil
}

func numberOrNull(value any) any {
	if !model.Truthy(value) {
		return nil
	}
	if n, ok := model.Number(value); ok {
		return n
	}
	return value
}

func textOrNull(value any) any {
	if !model.Truthy(value) {
		return nil
	}
	return model.Text(value)
}

func uploadsOf(value any) []model.Upload {
	switch v := value.(type) {
	case []model.Upload:
		return append([]model.Upload(nil), v...)
	case model.Upload:
		return []model.Upload{v}
	case *model.Upload:
		if v != nil {
			return []model.Upload{*v}
		}
	}
	return nil
}
