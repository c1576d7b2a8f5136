package intake

import "github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"

const (
	FieldUPI             = "upi"
	FieldOwnerID         = "owner_id"
	FieldOwnerName       = "owner_name"
	FieldImages          = "images"
	FieldVideoLink       = "video_link"
	FieldModel3D         = "video_3d"
	FieldEstimatedAmount = "estimated_amount"
	FieldLatitude        = "latitude"
	FieldLongitude       = "longitude"
)

// IdentityFields precede every sub-category form. They stay editable while
// the rest of the form is locked.
var IdentityFields = []taxonomy.FormField{
	{Name: FieldUPI, Label: "UPI", Type: taxonomy.FieldText, Required: true, Width: taxonomy.WidthHalf},
	{Name: FieldOwnerID, Label: "Owner ID", Type: taxonomy.FieldText, Required: true, Width: taxonomy.WidthHalf},
	{Name: FieldOwnerName, Label: "Owner Name", Type: taxonomy.FieldText, Width: taxonomy.WidthFull},
}

// MediaFields are the scalar inputs of step 2. Images and the 3D model are
// attached through AttachImages and AttachModel.
var MediaFields = []taxonomy.FormField{
	{Name: FieldVideoLink, Label: "Video Link (YouTube/URL)", Type: taxonomy.FieldText, Required: true, Width: taxonomy.WidthFull},
	{Name: FieldLatitude, Label: "Latitude", Type: taxonomy.FieldNumber, Required: true, Width: taxonomy.WidthHalf},
	{Name: FieldLongitude, Label: "Longitude", Type: taxonomy.FieldNumber, Required: true, Width: taxonomy.WidthHalf},
	{Name: FieldEstimatedAmount, Label: "Estimated Amount", Type: taxonomy.FieldNumber, Required: true, Width: taxonomy.WidthFull},
}

func identityField(name string) (taxonomy.FormField, bool) {
	return findField(IdentityFields, name)
}

func mediaField(name string) (taxonomy.FormField, bool) {
	return findField(MediaFields, name)
}

func findField(fields []taxonomy.FormField, name string) (taxonomy.FormField, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field, true
		}
	}
	return taxonomy.FormField{}, false
}
