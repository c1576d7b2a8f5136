package validation_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/validation"
)

func validPayload() map[string]any {
	return map[string]any{
		"upi":                "1/02/03/04/5678",
		"owner_id":           "1199880012345678",
		"owner_name":         "Aline Uwase",
		"category_id":        7,
		"subcategory_id":     71,
		"estimated_amount":   25000000.0,
		"latitude":           -1.9441,
		"longitude":          30.0619,
		"size":               500.0,
		"video_link":         "https://youtu.be/abc",
		"parcel_raw":         map[string]any{"upi": "1/02/03/04/5678"},
		"planned_land_uses":  []any{map[string]any{"area": 500}},
		"isUnderMortgage":    false,
		"isUnderRestriction": false,
		"inProcess":          false,
		"details":            map[string]any{"bedrooms": 3.0, "condition": "New"},
	}
}

func TestPropertySchemaLoads(t *testing.T) {
	schema, err := validation.PropertySchema()
	gt.NoError(t, err).Required()
	gt.Map(t, schema.Properties).HasKey("details")
}

func TestValidatePayloadAcceptsCompletePayload(t *testing.T) {
	result := validation.ValidatePayload(validPayload())
	gt.Bool(t, result.Valid).True()
	gt.Array(t, result.Issues).Length(0)
}

func TestValidatePayloadAcceptsNullOptionals(t *testing.T) {
	payload := validPayload()
	for _, key := range []string{"estimated_amount", "latitude", "longitude", "size", "video_link", "parcel_raw"} {
		payload[key] = nil
	}
	result := validation.ValidatePayload(payload)
	gt.Bool(t, result.Valid).True()
}

func TestValidatePayloadReportsIssues(t *testing.T) {
	testCases := map[string]struct {
		mutate func(map[string]any)
		field  string
	}{
		"missing upi": {
			mutate: func(p map[string]any) { delete(p, "upi") },
			field:  "upi",
		},
		"blank upi": {
			mutate: func(p map[string]any) { p["upi"] = "   " },
			field:  "upi",
		},
		"fractional category id": {
			mutate: func(p map[string]any) { p["category_id"] = 7.5 },
			field:  "category_id",
		},
		"latitude out of range": {
			mutate: func(p map[string]any) { p["latitude"] = 120.0 },
			field:  "latitude",
		},
		"details not an object": {
			mutate: func(p map[string]any) { p["details"] = "bedrooms=3" },
			field:  "details",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			payload := validPayload()
			tc.mutate(payload)

			result := validation.ValidatePayload(payload)
			gt.Bool(t, result.Valid).False()
			gt.Array(t, result.Issues).Length(1).Required()
			gt.Value(t, result.Issues[0].Field).Equal(tc.field)
			gt.Value(t, result.Issues[0].Path).Equal("/" + tc.field)
			gt.Value(t, result.Issues[0].Message).NotEqual("")
		})
	}
}

func TestValidatePayloadCollectsEveryIssue(t *testing.T) {
	payload := validPayload()
	payload["latitude"] = 120.0
	payload["longitude"] = "east"

	result := validation.ValidatePayload(payload)
	gt.Bool(t, result.Valid).False()
	gt.Array(t, result.Issues).Length(2).Required()
	gt.Value(t, result.Issues[0].Field).Equal("latitude")
	gt.Value(t, result.Issues[1].Field).Equal("longitude")
}
