package testsupport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

const (
	BackendUsername = "frontend"
	BackendPassword = "frontend-secret"
)

// Upload is a multipart file received by the fake backend.
type Upload struct {
	Path     string
	Fields   map[string]string
	FileName string
	Size     int
}

// Request is one call observed by the fake backend.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
}

type failure struct {
	status int
	body   any
}

// Backend is an in-memory stand-in for the property REST API.
type Backend struct {
	Server *httptest.Server

	mu            sync.Mutex
	categories    []taxonomy.RemoteCategory
	subCategories []taxonomy.RemoteSubCategory
	parcels       map[string]map[string]any
	mine          []map[string]any
	properties    []map[string]any
	uploads       []Upload
	agencies      []api.Agency
	users         []api.User
	roleCalls     []api.RoleAssignment
	statusCalls   map[int64]string
	requests      []Request
	failures      map[string]failure

	accessToken  string
	refreshToken string
	issued       int
	nextID       int64
}

// NewBackend starts a fake backend and stops it when t finishes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		parcels:     make(map[string]map[string]any),
		statusCalls: make(map[int64]string),
		failures:    make(map[string]failure),
		nextID:      100,
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL of the fake backend.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Client returns an api client logged in with the fake credentials.
func (b *Backend) Client(t *testing.T, opts ...api.Option) *api.Client {
	t.Helper()

	opts = append([]api.Option{api.WithCredentials(BackendUsername, BackendPassword)}, opts...)
	client, err := api.New(b.URL(), opts...)
	if err != nil {
		t.Fatalf("new api client: %v", err)
	}
	return client
}

// SetTaxonomy replaces the remote categories and sub-categories.
func (b *Backend) SetTaxonomy(cats []taxonomy.RemoteCategory, subs []taxonomy.RemoteSubCategory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.categories = append([]taxonomy.RemoteCategory(nil), cats...)
	b.subCategories = append([]taxonomy.RemoteSubCategory(nil), subs...)
}

// SetParcel registers the lookup result for upi.
func (b *Backend) SetParcel(upi string, doc map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parcels[upi] = doc
}

// SetMine replaces the caller's existing properties.
func (b *Backend) SetMine(items ...map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mine = items
}

// SetUsers replaces the account list.
func (b *Backend) SetUsers(users ...api.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = users
}

// SetAgencies replaces the agency list.
func (b *Backend) SetAgencies(agencies ...api.Agency) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.agencies = agencies
}

// Fail makes every request matching method and path answer with status and
// body. A string body is sent as {"detail": body}.
func (b *Backend) Fail(method, path string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, body: body}
}

// ExpireAccessToken rotates the accepted token so the next call sees a 401.
func (b *Backend) ExpireAccessToken() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessToken = "expired-" + b.accessToken
}

// RevokeRefreshToken makes refresh attempts fail, forcing a full login.
func (b *Backend) RevokeRefreshToken() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshToken = "revoked"
}

// Properties returns the created property payloads.
func (b *Backend) Properties() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.properties...)
}

// Uploads returns the multipart files received.
func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Agencies returns the stored agencies.
func (b *Backend) Agencies() []api.Agency {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.Agency(nil), b.agencies...)
}

// RoleCalls returns the role assignments received.
func (b *Backend) RoleCalls() []api.RoleAssignment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.RoleAssignment(nil), b.roleCalls...)
}

// UserStatus returns the last status set for userID.
func (b *Backend) UserStatus(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.statusCalls[userID]
}

// Categories returns the stored remote categories.
func (b *Backend) Categories() []taxonomy.RemoteCategory {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]taxonomy.RemoteCategory(nil), b.categories...)
}

// Requests returns every request observed, in order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Count returns how many requests hit method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, req := range b.Requests() {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/api/frontend/login", b.login)
	r.Post("/api/frontend/refresh", b.refresh)

	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)
		r.Use(b.injectFailures)

		r.Get("/api/property/categories", b.listCategories)
		r.Post("/api/property/categories", b.saveCategory)
		r.Put("/api/property/categories/{id}", b.saveCategory)
		r.Delete("/api/property/categories/{id}", b.deleteCategory)
		r.Get("/api/property/subcategories", b.listSubCategories)
		r.Post("/api/property/subcategories", b.saveSubCategory)
		r.Put("/api/property/subcategories/{id}", b.saveSubCategory)
		r.Delete("/api/property/subcategories/{id}", noContent)

		r.Post("/api/external/parcel", b.lookupParcel)
		r.Get("/api/property/properties/mine", b.listMine)
		r.Post("/api/property/properties", b.createProperty)
		r.Post("/api/property/properties/{id}/images", b.receiveUpload)

		r.Get("/api/agency/agencies-brokers", b.listAgencies)
		r.Post("/api/agency/agencies-brokers", b.saveAgency)
		r.Put("/api/agency/agencies-brokers/{id}", b.saveAgency)
		r.Delete("/api/agency/agencies-brokers/{id}", b.deleteAgency)
		r.Put("/api/agency/agencies-brokers/{id}/approve", b.approveAgency)
		r.Post("/api/agency/agencies-brokers/{id}/logo", b.receiveUpload)
		r.Post("/api/agency/rdb-certificate/upload", b.receiveUpload)

		r.Get("/api/admin/users", b.listUsers)
		r.Put("/api/admin/users/{id}/status", b.setStatus)
		r.Put("/api/user/role", b.assignRoles)
	})
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		want := "Bearer " + b.accessToken
		ok := b.accessToken != "" && r.Header.Get("Authorization") == want
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		f, ok := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if s, isString := f.body.(string); isString {
			writeJSON(w, f.status, map[string]any{"detail": s})
			return
		}
		writeJSON(w, f.status, f.body)
	})
}

func (b *Backend) issue(w http.ResponseWriter) {
	b.issued++
	b.accessToken = "access-" + strconv.Itoa(b.issued)
	b.refreshToken = "refresh-" + strconv.Itoa(b.issued)
	writeJSON(w, http.StatusOK, api.Tokens{AccessToken: b.accessToken, RefreshToken: b.refreshToken})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Username != BackendUsername || body.Password != BackendPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issue(w)
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	defer b.mu.Unlock()
	if body.RefreshToken == "" || body.RefreshToken != b.refreshToken {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid refresh token"})
		return
	}
	b.issue(w)
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": b.categories, "total": len(b.categories)})
}

func (b *Backend) listSubCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": b.subCategories, "total": len(b.subCategories)})
}

func (b *Backend) saveCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
		return
	}
	cat := taxonomy.RemoteCategory{Name: r.FormValue("name"), Label: r.FormValue("label")}
	if _, header, err := r.FormFile("icon"); err == nil {
		cat.Icon = "/icons/" + header.Filename
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if id := chi.URLParam(r, "id"); id != "" {
		cat.ID, _ = strconv.ParseInt(id, 10, 64)
		for i, existing := range b.categories {
			if existing.ID == cat.ID {
				b.categories[i] = cat
			}
		}
	} else {
		b.nextID++
		cat.ID = b.nextID
		b.categories = append(b.categories, cat)
	}
	writeJSON(w, http.StatusOK, cat)
}

func (b *Backend) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.categories[:0]
	for _, cat := range b.categories {
		if cat.ID != id {
			kept = append(kept, cat)
		}
	}
	b.categories = kept
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) saveSubCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
		return
	}
	sub := taxonomy.RemoteSubCategory{Name: r.FormValue("name"), Label: r.FormValue("label")}
	sub.CategoryID, _ = strconv.ParseInt(r.FormValue("category_id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub.ID = b.nextID
	b.subCategories = append(b.subCategories, sub)
	writeJSON(w, http.StatusOK, sub)
}

func (b *Backend) lookupParcel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UPI     string `json:"upi"`
		OwnerID string `json:"owner_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	doc, ok := b.parcels[body.UPI]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Parcel not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (b *Backend) listMine(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": b.mine})
}

func (b *Backend) createProperty(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	payload["id"] = b.nextID
	b.properties = append(b.properties, payload)
	writeJSON(w, http.StatusCreated, map[string]any{"id": b.nextID})
}

func (b *Backend) receiveUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
		return
	}
	up := Upload{Path: r.URL.Path, Fields: make(map[string]string)}
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			up.Fields[key] = values[0]
		}
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "file is required"})
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)
	up.FileName = header.Filename
	up.Size = len(data)

	b.mu.Lock()
	b.uploads = append(b.uploads, up)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"path": up.Path + "/" + up.FileName})
}

func (b *Backend) listAgencies(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.agencies)
}

func (b *Backend) saveAgency(w http.ResponseWriter, r *http.Request) {
	var agency api.Agency
	if err := json.NewDecoder(r.Body).Decode(&agency); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if id := chi.URLParam(r, "id"); id != "" {
		agency.ID, _ = strconv.ParseInt(id, 10, 64)
		for i, existing := range b.agencies {
			if existing.ID == agency.ID {
				b.agencies[i] = agency
			}
		}
	} else {
		b.nextID++
		agency.ID = b.nextID
		if agency.Status == "" {
			agency.Status = "pending"
		}
		b.agencies = append(b.agencies, agency)
	}
	writeJSON(w, http.StatusOK, agency)
}

func (b *Backend) deleteAgency(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.agencies[:0]
	for _, agency := range b.agencies {
		if agency.ID != id {
			kept = append(kept, agency)
		}
	}
	b.agencies = kept
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) approveAgency(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, agency := range b.agencies {
		if agency.ID == id {
			b.agencies[i].Status = "active"
			writeJSON(w, http.StatusOK, b.agencies[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"detail": fmt.Sprintf("Agency %d not found", id)})
}

func (b *Backend) listUsers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": b.users})
}

func (b *Backend) setStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var body api.StatusInput
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusCalls[id] = body.Status
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": body.Status})
}

func (b *Backend) assignRoles(w http.ResponseWriter, r *http.Request) {
	var body api.RoleAssignment
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roleCalls = append(b.roleCalls, body)
	writeJSON(w, http.StatusOK, map[string]any{"user_id": body.UserID, "roles": strings.Join(body.Roles, ",")})
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
