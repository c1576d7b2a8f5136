package intake_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m-mizutani/gt"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/intake"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/parcel"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/testsupport"
)

const (
	upi     = "1/02/03/04/5678"
	ownerID = "1199880012345678"
)

type harness struct {
	backend  *testsupport.Backend
	previews *model.Previews
	machine  *intake.Machine
}

type options struct {
	verifier  intake.Verifier
	submitter intake.Submitter
	extra     []intake.Option
}

func newHarness(t *testing.T, opts options) *harness {
	t.Helper()
	backend := testsupport.NewBackend(t)
	backend.SetTaxonomy(
		[]taxonomy.RemoteCategory{{ID: 7, Name: "residential", Label: "Residential"}},
		[]taxonomy.RemoteSubCategory{
			{ID: 71, CategoryID: 7, Name: "condo_unit", Label: "Condominium Unit"},
			{ID: 72, CategoryID: 7, Name: "garage", Label: "Garage"},
		},
	)
	backend.SetParcel(upi, testsupport.Parcel(upi))

	client := backend.Client(t)
	store := taxonomy.NewStore(taxonomy.WithSource(client))
	store.Load(context.Background())
	gt.NoError(t, store.LastError()).Required()

	if opts.verifier == nil {
		opts.verifier = parcel.NewVerifier(client)
	}
	if opts.submitter == nil {
		opts.submitter = submission.NewPipeline(client)
	}
	previews := model.NewPreviews()
	machineOpts := append([]intake.Option{intake.WithPreviews(previews)}, opts.extra...)
	return &harness{
		backend:  backend,
		previews: previews,
		machine:  intake.New(store, opts.verifier, opts.submitter, machineOpts...),
	}
}

func mustSet(t *testing.T, m *intake.Machine, name string, raw any) {
	t.Helper()
	_, err := m.Set(name, raw)
	gt.NoError(t, err).Required()
}

func selectCondo(t *testing.T, m *intake.Machine) {
	t.Helper()
	gt.NoError(t, m.SelectCategory("residential")).Required()
	gt.NoError(t, m.SelectSubCategory("condo_unit")).Required()
	mustSet(t, m, "upi", upi)
	mustSet(t, m, "owner_id", ownerID)
}

func fillCondo(t *testing.T, m *intake.Machine) {
	t.Helper()
	mustSet(t, m, "condition", "Good")
	mustSet(t, m, "built_area", "120")
	mustSet(t, m, "floor_level", "4")
	mustSet(t, m, "bedrooms", "3")
	mustSet(t, m, "bathrooms", "2")
}

func fillMedia(t *testing.T, m *intake.Machine) {
	t.Helper()
	gt.NoError(t, m.AttachImages(
		model.Upload{Name: "front.jpg", ContentType: "image/jpeg", Data: []byte("front")},
		model.Upload{Name: "kitchen.jpg", ContentType: "image/jpeg", Data: []byte("kitchen")},
	)).Required()
	mustSet(t, m, "video_link", "https://youtu.be/tour")
	mustSet(t, m, "estimated_amount", "85000000")
}

// reachStep2 walks the condo unit form up to a submittable step 2.
func reachStep2(t *testing.T, h *harness) {
	t.Helper()
	m := h.machine
	selectCondo(t, m)
	_, err := m.VerifyUPI(context.Background())
	gt.NoError(t, err).Required()
	fillCondo(t, m)
	gt.NoError(t, m.Advance()).Required()
	fillMedia(t, m)
}

func TestCondoUnitEndToEnd(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine
	ctx := context.Background()

	gt.Value(t, m.State()).Equal(intake.StateNoCategory)
	gt.NoError(t, m.SelectCategory("residential")).Required()
	gt.Value(t, m.State()).Equal(intake.StateCategorySelected)
	gt.NoError(t, m.SelectSubCategory("condo_unit")).Required()
	gt.Value(t, m.State()).Equal(intake.StateStep1)
	gt.Bool(t, m.Locked()).True()

	_, err := m.Set("condition", "Good")
	gt.Error(t, err).Is(intake.ErrLocked)

	mustSet(t, m, "upi", upi)
	mustSet(t, m, "owner_id", ownerID)
	outcome, err := m.VerifyUPI(ctx)
	gt.NoError(t, err).Required()
	gt.Bool(t, outcome.Allowed).True()
	gt.Value(t, outcome.Message).Equal(parcel.MsgAllowed)
	gt.Bool(t, m.Locked()).False()

	values := m.Values()
	gt.Value(t, values["owner_name"]).Equal(any("Aline Uwase"))
	gt.Value(t, values["latitude"]).Equal(any(-1.9441))
	gt.Value(t, values["district"]).Equal(any("Gasabo"))

	change, err := m.Set("built_area", "600")
	gt.NoError(t, err).Required()
	gt.Bool(t, change.Clamped).True()
	gt.Value(t, change.Value).Equal(any(500.0))
	gt.Value(t, m.Status().FieldErrors["built_area"]).Equal("Cannot exceed 500")

	mustSet(t, m, "condition", "Good")
	err = m.Advance()
	gt.Error(t, err).Is(intake.ErrStepInvalid)
	var stepErr *intake.StepError
	gt.Bool(t, errors.As(err, &stepErr)).True()
	if diff := cmp.Diff([]string{"floor_level", "bedrooms", "bathrooms"}, stepErr.Missing); diff != "" {
		t.Fatalf("missing fields mismatch (-want +got):\n%s", diff)
	}

	mustSet(t, m, "floor_level", "4")
	mustSet(t, m, "bedrooms", "3")
	mustSet(t, m, "bathrooms", "2")
	gt.Value(t, m.State()).Equal(intake.StateStep1Valid)
	gt.NoError(t, m.Advance()).Required()
	gt.Value(t, m.State()).Equal(intake.StateStep2)

	_, err = m.Submit(ctx)
	gt.Error(t, err).Is(intake.ErrStepInvalid)
	gt.Bool(t, m.Step2Valid()).False()

	fillMedia(t, m)
	gt.Bool(t, m.Step2Valid()).True()
	gt.Number(t, m.OpenPreviews()).Equal(2)

	result, err := m.Submit(ctx)
	gt.NoError(t, err).Required()
	gt.String(t, result.PropertyID).NotEqual("")
	gt.Number(t, result.Uploaded).Equal(2)
	gt.Value(t, m.State()).Equal(intake.StateSuccess)
	gt.Number(t, m.OpenPreviews()).Equal(0)
	gt.Number(t, len(m.Values())).Equal(0)

	kept, ok := m.Result()
	gt.Bool(t, ok).True()
	gt.Value(t, kept.PropertyID).Equal(result.PropertyID)

	props := h.backend.Properties()
	gt.Array(t, props).Length(1).Required()
	gt.Value(t, props[0]["category_id"]).Equal(any(7.0))
	gt.Value(t, props[0]["subcategory_id"]).Equal(any(71.0))
	gt.Value(t, props[0]["estimated_amount"]).Equal(any(85000000.0))
	details, _ := props[0]["details"].(map[string]any)
	gt.Value(t, details["built_area"]).Equal(any(500.0))
	gt.Value(t, details["condition"]).Equal(any("Good"))
	gt.Array(t, h.backend.Uploads()).Length(2)
}

func TestVerifyBlockedParcelKeepsFormLocked(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(doc map[string]any)
		message string
	}{
		{
			name:    "mortgage",
			mutate:  func(doc map[string]any) { doc["isUnderMortgage"] = true },
			message: "Upload blocked: Under mortgage.",
		},
		{
			name: "restriction and in process",
			mutate: func(doc map[string]any) {
				doc["isUnderRestriction"] = true
				doc["inProcess"] = true
			},
			message: "Upload blocked: Under restriction, Parcel currently in process.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, options{})
			doc := testsupport.Parcel(upi)
			tc.mutate(doc)
			h.backend.SetParcel(upi, doc)
			m := h.machine

			selectCondo(t, m)
			outcome, err := m.VerifyUPI(context.Background())
			gt.NoError(t, err).Required()
			gt.Bool(t, outcome.Allowed).False()
			gt.Value(t, outcome.Message).Equal(tc.message)

			st := m.Status()
			gt.Bool(t, st.Verified).False()
			gt.Bool(t, st.Locked).True()
			gt.Value(t, st.Message).Equal(tc.message)
			_, ok := m.Values()["owner_name"]
			gt.Bool(t, ok).False()

			_, err = m.Set("condition", "Good")
			gt.Error(t, err).Is(intake.ErrLocked)
		})
	}
}

func TestVerifyRejectsDuplicateUpload(t *testing.T) {
	h := newHarness(t, options{})
	doc := testsupport.Parcel(upi)
	doc["isUnderMortgage"] = true
	h.backend.SetParcel(upi, doc)
	h.backend.SetMine(map[string]any{"id": 3, "upi": " " + upi + " "})
	m := h.machine

	selectCondo(t, m)
	outcome, err := m.VerifyUPI(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, outcome.Message).Equal(parcel.MsgDuplicate)
	gt.Bool(t, outcome.Verified).False()
	gt.Bool(t, m.Locked()).True()
}

func TestVerifyRequiresUPI(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine
	gt.NoError(t, m.SelectCategory("residential")).Required()
	gt.NoError(t, m.SelectSubCategory("condo_unit")).Required()

	_, err := m.VerifyUPI(context.Background())
	gt.Error(t, err).Is(parcel.ErrUPIRequired)
	gt.Value(t, m.Status().Message).Equal(parcel.MsgUPIRequired)
}

func TestVerifyLookupFailureRecordsMessage(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine
	gt.NoError(t, m.SelectCategory("residential")).Required()
	gt.NoError(t, m.SelectSubCategory("condo_unit")).Required()
	mustSet(t, m, "upi", "9/99/99/99/9999")

	_, err := m.VerifyUPI(context.Background())
	gt.Error(t, err).Is(parcel.ErrLookupFailed)
	st := m.Status()
	gt.Value(t, st.Message).Equal("Parcel not found")
	gt.Bool(t, st.Verified).False()
}

func TestChangingUPIInvalidatesVerification(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine
	selectCondo(t, m)
	_, err := m.VerifyUPI(context.Background())
	gt.NoError(t, err).Required()
	gt.Bool(t, m.Locked()).False()

	mustSet(t, m, "upi", upi)
	gt.Bool(t, m.Locked()).False()

	mustSet(t, m, "upi", "1/02/03/04/9999")
	st := m.Status()
	gt.Bool(t, st.Locked).True()
	gt.Bool(t, st.Verified).False()
	gt.Value(t, st.Message).Equal("")
}

func TestSelectSubCategoryCarriesIdentityAndVerification(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine
	selectCondo(t, m)
	_, err := m.VerifyUPI(context.Background())
	gt.NoError(t, err).Required()
	mustSet(t, m, "condition", "Good")

	gt.NoError(t, m.SelectSubCategory("garage")).Required()
	values := m.Values()
	gt.Value(t, values["upi"]).Equal(any(upi))
	gt.Value(t, values["owner_id"]).Equal(any(ownerID))
	gt.Value(t, values["latitude"]).Equal(any(-1.9441))
	_, ok := values["condition"]
	gt.Bool(t, ok).False()
	gt.Bool(t, m.Locked()).False()

	gt.NoError(t, m.SelectCategory("residential")).Required()
	gt.Bool(t, m.Locked()).True()
	want := model.Values{"upi": upi, "owner_id": ownerID, "owner_name": "Aline Uwase"}
	if diff := cmp.Diff(want, m.Values()); diff != "" {
		t.Fatalf("values after new category (-want +got):\n%s", diff)
	}
}

func TestSelectCategoryCarriesIdentityFields(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine
	selectCondo(t, m)
	_, err := m.VerifyUPI(context.Background())
	gt.NoError(t, err).Required()
	mustSet(t, m, "built_area", "120")
	gt.NoError(t, m.AttachImages(model.Upload{Name: "front.jpg", ContentType: "image/jpeg"})).Required()
	gt.Number(t, m.OpenPreviews()).Equal(1)

	gt.NoError(t, m.SelectCategory("commercial")).Required()
	gt.Value(t, m.State()).Equal(intake.StateCategorySelected)
	want := model.Values{"upi": upi, "owner_id": ownerID, "owner_name": "Aline Uwase"}
	if diff := cmp.Diff(want, m.Values()); diff != "" {
		t.Fatalf("values after new category (-want +got):\n%s", diff)
	}
	gt.Number(t, m.OpenPreviews()).Equal(0)
	gt.Bool(t, m.Status().Verified).False()
}

func TestLandUseWarningNeedsConfirmation(t *testing.T) {
	h := newHarness(t, options{})
	doc := testsupport.Parcel(upi)
	doc["landUseNameEnglish"] = "Agriculture"
	h.backend.SetParcel(upi, doc)
	m := h.machine
	ctx := context.Background()

	gt.Error(t, m.ConfirmWarning()).Is(intake.ErrNoWarning)
	reachStep2(t, h)
	st := m.Status()
	gt.String(t, st.Warning).Contains("Parcel land use (Agriculture) does not match selected category (Residential)")
	gt.Bool(t, st.Locked).False()

	_, err := m.Submit(ctx)
	gt.Error(t, err).Is(intake.ErrWarningUnconfirmed)
	gt.Array(t, h.backend.Properties()).Length(0)

	gt.NoError(t, m.ConfirmWarning()).Required()
	_, err = m.Submit(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, m.State()).Equal(intake.StateSuccess)
}

func TestSubmitFailureReturnsToStep2(t *testing.T) {
	var transitions []intake.State
	h := newHarness(t, options{extra: []intake.Option{
		intake.WithTransitionHook(func(_, to intake.State) {
			transitions = append(transitions, to)
		}),
	}})
	h.backend.Fail(http.MethodPost, "/api/property/properties", http.StatusBadRequest, map[string]any{
		"detail": map[string]any{
			"non_serializable_fields": []any{map[string]any{"key": "images", "type": "File"}},
		},
	})
	m := h.machine
	reachStep2(t, h)
	transitions = nil

	_, err := m.Submit(context.Background())
	gt.Value(t, err).NotNil()
	gt.Value(t, m.State()).Equal(intake.StateStep2)
	gt.Value(t, m.Status().Message).Equal("Failed to create property: Non-serializable fields: images(File)")
	gt.Number(t, m.OpenPreviews()).Equal(2)
	gt.Value(t, m.Values()["video_link"]).Equal(any("https://youtu.be/tour"))
	gt.Value(t, transitions).Equal([]intake.State{intake.StateSubmitting, intake.StateFailed, intake.StateStep2})
}

func TestSubmitFailureMapsFieldErrors(t *testing.T) {
	h := newHarness(t, options{})
	h.backend.Fail(http.MethodPost, "/api/property/properties", http.StatusUnprocessableEntity, map[string]any{
		"detail": []any{
			map[string]any{"loc": []any{"body", "details", "built_area"}, "msg": "must be at most 5000"},
			map[string]any{"loc": []any{"body", "listing"}, "msg": "listing window closed"},
		},
	})
	m := h.machine
	reachStep2(t, h)

	_, err := m.Submit(context.Background())
	gt.Value(t, err).NotNil()
	gt.Value(t, m.State()).Equal(intake.StateStep2)

	st := m.Status()
	gt.Value(t, st.FieldErrors["built_area"]).Equal("must be at most 5000")
	gt.Value(t, st.FormErrors).Equal([]string{"listing window closed"})
	opts := m.RenderOptions()
	gt.Value(t, opts.Errors["built_area"]).Equal([]string{"must be at most 5000"})
	gt.Value(t, opts.FormErrors).Equal([]string{"listing window closed"})

	mustSet(t, m, "built_area", "130")
	_, ok := m.Status().FieldErrors["built_area"]
	gt.Bool(t, ok).False()
}

func TestSubmitRechecksStep1(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine
	reachStep2(t, h)
	mustSet(t, m, "floor_level", "")

	_, err := m.Submit(context.Background())
	gt.Error(t, err).Is(intake.ErrStepInvalid)
	var stepErr *intake.StepError
	gt.Bool(t, errors.As(err, &stepErr)).True()
	gt.Number(t, stepErr.Step).Equal(1)
	gt.Value(t, stepErr.Missing).Equal([]string{"floor_level"})
	gt.Value(t, m.State()).Equal(intake.StateStep2)
	gt.Array(t, h.backend.Properties()).Length(0)

	mustSet(t, m, "floor_level", "4")
	_, err = m.Submit(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, m.State()).Equal(intake.StateSuccess)
}

func TestImagesAcquireAndReleasePreviews(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine
	reachStep2(t, h)
	gt.Number(t, m.OpenPreviews()).Equal(2)

	gt.NoError(t, m.AttachModel(model.Upload{Name: "tour.glb"})).Required()
	gt.NoError(t, m.AttachModel(model.Upload{Name: "tour-v2.glb"})).Required()
	gt.Number(t, m.OpenPreviews()).Equal(3)

	gt.NoError(t, m.RemoveImage(0)).Required()
	images, _ := m.Values()["images"].([]model.Upload)
	gt.Array(t, images).Length(1).Required()
	gt.Value(t, images[0].Name).Equal("kitchen.jpg")
	gt.Error(t, m.RemoveImage(5)).Is(intake.ErrImageIndexOutOfRange)

	gt.NoError(t, m.RemoveModel()).Required()
	gt.Number(t, m.OpenPreviews()).Equal(1)

	gt.NoError(t, m.Back()).Required()
	gt.Value(t, m.State()).Equal(intake.StateStep1Valid)
	gt.NoError(t, m.Cancel()).Required()
	gt.Value(t, m.State()).Equal(intake.StateNoCategory)
	gt.Number(t, h.previews.Open()).Equal(0)
}

type blockingSubmitter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSubmitter) Submit(ctx context.Context, _ submission.Payload) (submission.Result, error) {
	close(b.started)
	<-b.release
	return submission.Result{PropertyID: "42"}, nil
}

func TestSubmitRejectsReentry(t *testing.T) {
	sub := &blockingSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	h := newHarness(t, options{submitter: sub})
	m := h.machine
	reachStep2(t, h)

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background())
		done <- err
	}()
	<-sub.started

	gt.Value(t, m.State()).Equal(intake.StateSubmitting)
	_, err := m.Submit(context.Background())
	gt.Error(t, err).Is(intake.ErrSubmitInFlight)
	_, err = m.Set("video_link", "https://youtu.be/other")
	gt.Error(t, err).Is(intake.ErrSubmitInFlight)
	gt.Error(t, m.Cancel()).Is(intake.ErrSubmitInFlight)

	close(sub.release)
	gt.NoError(t, <-done).Required()
	gt.Value(t, m.State()).Equal(intake.StateSuccess)
}

type blockingVerifier struct {
	started chan struct{}
	release chan struct{}
	inner   intake.Verifier
}

func (b *blockingVerifier) Verify(ctx context.Context, req parcel.Request) (parcel.Outcome, error) {
	close(b.started)
	<-b.release
	return b.inner.Verify(ctx, req)
}

func TestVerificationDiscardedWhenUPIChanges(t *testing.T) {
	backend := testsupport.NewBackend(t)
	backend.SetParcel(upi, testsupport.Parcel(upi))
	verifier := &blockingVerifier{
		started: make(chan struct{}),
		release: make(chan struct{}),
		inner:   parcel.NewVerifier(backend.Client(t)),
	}
	h := newHarness(t, options{verifier: verifier})
	m := h.machine
	selectCondo(t, m)

	done := make(chan error, 1)
	go func() {
		_, err := m.VerifyUPI(context.Background())
		done <- err
	}()
	<-verifier.started
	mustSet(t, m, "upi", "1/02/03/04/9999")
	close(verifier.release)

	gt.Error(t, <-done).Is(intake.ErrStaleVerification)
	gt.Bool(t, m.Locked()).True()
}

func TestTransitionsRejectedOutOfOrder(t *testing.T) {
	h := newHarness(t, options{})
	m := h.machine

	gt.Error(t, m.SelectSubCategory("condo_unit")).Is(intake.ErrNoCategory)
	_, err := m.Set("upi", upi)
	gt.Error(t, err).Is(intake.ErrNoCategory)
	gt.Error(t, m.SelectCategory("spaceport")).Is(taxonomy.ErrCategoryNotFound)

	gt.NoError(t, m.SelectCategory("residential")).Required()
	gt.Error(t, m.SelectSubCategory("castle")).Is(taxonomy.ErrSubCategoryNotFound)
	gt.Error(t, m.Advance()).Is(intake.ErrInvalidTransition)

	gt.NoError(t, m.SelectSubCategory("condo_unit")).Required()
	gt.Error(t, m.Back()).Is(intake.ErrInvalidTransition)
	_, err = m.Set("swimming_pool_depth", "3")
	gt.Error(t, err).Is(intake.ErrUnknownField)
	_, err = m.Submit(context.Background())
	gt.Error(t, err).Is(intake.ErrInvalidTransition)
}
