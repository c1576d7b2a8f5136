package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

func TestMapErrorPayload(t *testing.T) {
	fields := []taxonomy.FormField{
		{Name: "built_area", Type: taxonomy.FieldNumber},
		{Name: "rent_price", Type: taxonomy.FieldNumber},
		{Name: "amenities", Type: taxonomy.FieldMultiSelect},
	}

	payload := map[string][]string{
		"/details/built_area":     {"Must be positive"},
		"body.details.rent_price": {"Too high", " Too high "},
		"$.details.amenities[2]":  {"Unknown amenity"},
		"upi":                     {"UPI already registered"},
		"non_field_errors":        {"Form level error"},
		"details/unknown_field":   {"Falls back to form"},
		"":                        {"Unscoped"},
	}

	mapped := render.MapErrorPayload(fields, payload)

	wantFields := map[string][]string{
		"built_area": {"Must be positive"},
		"rent_price": {"Too high"},
		"amenities":  {"Unknown amenity"},
		"upi":        {"UPI already registered"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Falls back to form", "Form level error", "Unscoped"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	if diff := cmp.Diff([]string{"First", "Second", "third"}, merged); diff != "" {
		t.Fatalf("merged errors mismatch (-want +got):\n%s", diff)
	}
}
