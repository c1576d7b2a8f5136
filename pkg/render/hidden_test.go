package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("_csrf", "token123"),
		render.SessionField("c0ffee"),
		render.Hidden("size", 450.5),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing":   "keep",
		"_csrf":      "token123",
		"session_id": "c0ffee",
		"size":       "450.5",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "existing", Value: "keep"},
		{Name: "session_id", Value: "c0ffee"},
		{Name: "size", Value: "450.5"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentityFieldsSkipsEmptyValues(t *testing.T) {
	fields := render.IdentityFields(model.Values{"upi": "1/02/03/04/567", "owner_id": "", "district": "Gasabo"})
	want := []render.HiddenField{{Name: "upi", Value: "1/02/03/04/567"}}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("identity fields mismatch (-want +got):\n%s", diff)
	}
}
