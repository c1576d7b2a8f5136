package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
)

// Parcel returns a parcel lookup body for upi with no blocking flags. Callers
// override members for the case under test.
func Parcel(upi string) map[string]any {
	return map[string]any{
		"upi":                upi,
		"landUseNameEnglish": "Residential",
		"size":               500,
		"isUnderMortgage":    false,
		"isUnderRestriction": false,
		"inProcess":          false,
		"representative": map[string]any{
			"idNo":      "1199880012345678",
			"foreNames": "Aline",
			"surname":   "Uwase",
		},
		"parcelLocation": map[string]any{
			"district": map[string]any{"districtName": "Gasabo"},
			"sector":   map[string]any{"sectorName": "Kimironko"},
			"cell":     map[string]any{"cellName": "Bibare"},
			"village":  map[string]any{"villageName": "Amahoro"},
		},
		"coordinates": []any{
			map[string]any{"lat": -1.9441, "lon": 30.0619},
		},
		"plannedLandUses": []any{
			map[string]any{"landUseName": "Residential", "area": 500},
		},
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
