package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m-mizutani/gt"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/intake"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/server"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

func newServer(t *testing.T, opts ...server.Options) *server.Server {
	t.Helper()
	srv, err := server.New(taxonomy.NewStore(), opts...)
	gt.NoError(t, err).Required()
	return srv
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndTaxonomy(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains(`"ok"`)

	rec = do(t, srv, http.MethodGet, "/api/taxonomy", "")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var snap taxonomy.Snapshot
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap)).Required()
	gt.Value(t, snap.Origin).Equal(taxonomy.OriginStatic)
	gt.Array(t, snap.Categories).Length(len(taxonomy.Default()))
}

func TestFormPreviewPrefillsFromQuery(t *testing.T) {
	srv := newServer(t, server.WithAppearance("dark", "en"))

	rec := do(t, srv, http.MethodGet, "/forms/residential/condo_unit?upi=1/02/03/04/5678&built_area=120&bedrooms=abc&floor_level=", "")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Header().Get("Content-Type")).Contains("text/html")

	body := rec.Body.String()
	for _, fragment := range []string{
		`data-theme="dark"`,
		"Condominium Unit",
		`id="sl-built_area"`,
		`value="120"`,
		`<ul class="safeland-field-errors" id="sl-bedrooms-errors" role="alert"><li>Invalid value</li>`,
		`type="hidden" name="upi"`,
		`action="/forms/residential/condo_unit"`,
	} {
		gt.String(t, body).Contains(fragment)
	}
}

func TestFormPreviewCarriesHiddenFields(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodGet, "/forms/residential/condo_unit?upi=1/02/03/04/5678&owner_id=1199880012345678&size=450&session_id=c0ffee", "")
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	body := rec.Body.String()
	var positions []int
	for _, fragment := range []string{
		`<input type="hidden" name="owner_id" value="1199880012345678">`,
		`<input type="hidden" name="session_id" value="c0ffee">`,
		`<input type="hidden" name="size" value="450">`,
		`<input type="hidden" name="upi"`,
	} {
		idx := strings.Index(body, fragment)
		gt.Bool(t, idx >= 0).True()
		positions = append(positions, idx)
	}
	for i := 1; i < len(positions); i++ {
		gt.Bool(t, positions[i-1] < positions[i]).True()
	}
}

func TestFormPreviewUnknownSubCategory(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodGet, "/forms/residential/castle", "")
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	gt.String(t, rec.Body.String()).Contains("sub-category not found")

	rec = do(t, srv, http.MethodGet, "/forms/lunar/condo_unit", "")
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestValidateEndpoint(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/api/forms/residential/condo_unit/validate",
		`{"upi":"1/02/03/04/5678","owner_id":"1199880012345678","condition":"Good","built_area":120,"floor_level":2,"bedrooms":3}`)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var report intake.Report
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report)).Required()
	gt.Bool(t, report.Valid).False()
	if diff := cmp.Diff([]string{"bathrooms"}, report.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsMalformedBody(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/api/forms/residential/condo_unit/validate", `{"upi":`)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	gt.String(t, rec.Body.String()).Contains("bad request")
}

func TestAssetsServed(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodGet, "/assets/safeland.css", "")
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains(".safeland-grid")
}
