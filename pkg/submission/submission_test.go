package submission_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/m-mizutani/gt"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/parcel"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/testsupport"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/validation"
)

const upi = "1/02/03/04/5678"

var (
	condoCategory = taxonomy.Category{ID: "7", Name: "residential", Label: "Residential"}
	condoSub      = taxonomy.SubCategory{ID: "71", Name: "condo_unit", Label: "Condo Unit"}
)

func verification(t *testing.T) *parcel.Verification {
	t.Helper()
	data, err := json.Marshal(testsupport.Parcel(upi))
	gt.NoError(t, err).Required()
	v, err := parcel.Parse(upi, data)
	gt.NoError(t, err).Required()
	return v
}

func condoValues() model.Values {
	return model.Values{
		"upi":              upi,
		"owner_id":         "1199880012345678",
		"owner_name":       "Aline Uwase",
		"condition":        "New",
		"built_area":       120.0,
		"floor_level":      4.0,
		"bedrooms":         3.0,
		"bathrooms":        2.0,
		"amenities":        []string{"Garden"},
		"district":         "Gasabo",
		"estimated_amount": "85000000",
		"latitude":         -1.9441,
		"longitude":        30.0619,
		"video_link":       "https://youtu.be/tour",
		"images": []model.Upload{
			{Name: "front.jpg", ContentType: "image/jpeg", Data: []byte("a")},
			{Name: "kitchen.jpg", ContentType: "image/jpeg", Data: []byte("b")},
		},
	}
}

func TestBuildPayloadCondoUnit(t *testing.T) {
	payload, err := submission.BuildPayload(condoCategory, condoSub, condoValues(), verification(t))
	gt.NoError(t, err).Required()

	body := payload.Body
	gt.Value(t, body["category_id"]).Equal(any(int64(7)))
	gt.Value(t, body["subcategory_id"]).Equal(any(int64(71)))
	gt.Value(t, body["estimated_amount"]).Equal(any(85000000.0))
	gt.Value(t, body["size"]).Equal(any(500.0))
	gt.Value(t, body["video_link"]).Equal(any("https://youtu.be/tour"))
	gt.Value(t, body["isUnderMortgage"]).Equal(any(false))
	gt.Value(t, body["parcel_raw"]).NotNil()

	wantDetails := map[string]any{
		"condition":   "New",
		"built_area":  120.0,
		"floor_level": 4.0,
		"bedrooms":    3.0,
		"bathrooms":   2.0,
		"amenities":   []string{"Garden"},
		"district":    "Gasabo",
	}
	if diff := cmp.Diff(wantDetails, body["details"]); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}
	gt.Array(t, payload.Images).Length(2)
}

func TestBuildPayloadDropsNoKey(t *testing.T) {
	values := condoValues()
	values["video_3d"] = model.Upload{Name: "walkthrough.glb"}
	values["custom_note"] = "corner unit"

	payload, err := submission.BuildPayload(condoCategory, condoSub, values, verification(t))
	gt.NoError(t, err).Required()

	keys := make(map[string]struct{})
	for _, key := range payload.Keys() {
		keys[key] = struct{}{}
	}
	for key := range values {
		if _, ok := keys[key]; !ok {
			t.Errorf("value %q missing from payload", key)
		}
	}
	gt.Value(t, payload.Model3D.Name).Equal("walkthrough.glb")
}

func TestBuildPayloadSizeFallbacks(t *testing.T) {
	v := verification(t)

	values := condoValues()
	values["size"] = "640"
	payload, err := submission.BuildPayload(condoCategory, condoSub, values, v)
	gt.NoError(t, err).Required()
	gt.Value(t, payload.Body["size"]).Equal(any(640.0))

	v.Size = 0
	payload, err = submission.BuildPayload(condoCategory, condoSub, condoValues(), v)
	gt.NoError(t, err).Required()
	gt.Value(t, payload.Body["size"]).Equal(any(500.0))

	v.PlannedLandUses = nil
	payload, err = submission.BuildPayload(condoCategory, condoSub, condoValues(), v)
	gt.NoError(t, err).Required()
	gt.Value(t, payload.Body["size"]).Nil()
}

func TestBuildPayloadRequiresNumericIDs(t *testing.T) {
	_, err := submission.BuildPayload(taxonomy.Category{ID: "residential"}, condoSub, condoValues(), nil)
	gt.Error(t, err).Is(submission.ErrNonNumericID)

	_, err = submission.BuildPayload(condoCategory, taxonomy.SubCategory{ID: "condo_unit"}, condoValues(), nil)
	gt.Error(t, err).Is(submission.ErrNonNumericID)
}

func TestErrorMessage(t *testing.T) {
	testCases := map[string]struct {
		err  error
		want string
	}{
		"string detail": {
			err:  &api.Error{StatusCode: 400, Detail: json.RawMessage(`"UPI already registered"`)},
			want: "UPI already registered",
		},
		"non serializable": {
			err:  &api.Error{StatusCode: 422, Detail: json.RawMessage(`{"non_serializable_fields":[{"key":"images","type":"File"},{"key":"video_3d","type":"Blob"}]}`)},
			want: "Non-serializable fields: images(File), video_3d(Blob)",
		},
		"object detail": {
			err:  &api.Error{StatusCode: 422, Detail: json.RawMessage(`{"size": "must be positive"}`)},
			want: `{"size":"must be positive"}`,
		},
		"plain error": {
			err:  errors.New("connection refused"),
			want: "connection refused",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Value(t, submission.ErrorMessage(tc.err)).Equal(tc.want)
		})
	}
	gt.Value(t, submission.FailureMessage(errors.New("boom"))).Equal("Failed to create property: boom")
}

func TestFieldErrors(t *testing.T) {
	testCases := map[string]struct {
		err  error
		want map[string][]string
	}{
		"validation list": {
			err: &api.Error{StatusCode: 422, Detail: json.RawMessage(`[{"loc":["body","details","built_area"],"msg":"must be at most 5000"},{"loc":["body","size"],"msg":"required"}]`)},
			want: map[string][]string{
				"body.details.built_area": {"must be at most 5000"},
				"body.size":               {"required"},
			},
		},
		"object detail": {
			err:  &api.Error{StatusCode: 422, Detail: json.RawMessage(`{"size": "must be positive", "bedrooms": ["too many", "not a number"]}`)},
			want: map[string][]string{"size": {"must be positive"}, "bedrooms": {"too many", "not a number"}},
		},
		"non serializable only": {
			err: &api.Error{StatusCode: 422, Detail: json.RawMessage(`{"non_serializable_fields":[{"key":"images","type":"File"}]}`)},
		},
		"string detail": {
			err: &api.Error{StatusCode: 400, Detail: json.RawMessage(`"UPI already registered"`)},
		},
		"invalid payload": {
			err: &submission.InvalidPayloadError{Issues: []validation.SchemaIssue{
				{Field: "size", Message: "must be greater than 0"},
			}},
			want: map[string][]string{"size": {"must be greater than 0"}},
		},
		"plain error": {
			err: errors.New("connection refused"),
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, submission.FieldErrors(tc.err)); diff != "" {
				t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPipelineCreatesPropertyAndUploadsImages(t *testing.T) {
	backend := testsupport.NewBackend(t)
	pipeline := submission.NewPipeline(backend.Client(t))

	payload, err := submission.BuildPayload(condoCategory, condoSub, condoValues(), verification(t))
	gt.NoError(t, err).Required()

	result, err := pipeline.Submit(context.Background(), payload)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Uploaded).Equal(2)
	gt.Array(t, result.Warnings).Length(0)

	props := backend.Properties()
	gt.Array(t, props).Length(1).Required()
	gt.Value(t, props[0]["upi"]).Equal(any(upi))
	gt.Map(t, props[0]["details"].(map[string]any)).HasKey("bedrooms")

	uploads := backend.Uploads()
	names := []string{uploads[0].FileName, uploads[1].FileName}
	sort.Strings(names)
	gt.Value(t, names).Equal([]string{"front.jpg", "kitchen.jpg"})
	gt.Value(t, uploads[0].Fields["category"]).Equal("gallery")
}

func TestPipelineImageFailureIsAWarning(t *testing.T) {
	backend := testsupport.NewBackend(t)
	backend.Fail(http.MethodPost, "/api/property/properties/101/images", http.StatusRequestEntityTooLarge, "File too large")
	pipeline := submission.NewPipeline(backend.Client(t))

	payload, err := submission.BuildPayload(condoCategory, condoSub, condoValues(), verification(t))
	gt.NoError(t, err).Required()

	result, err := pipeline.Submit(context.Background(), payload)
	gt.NoError(t, err).Required()
	gt.Value(t, result.PropertyID).Equal("101")
	gt.Value(t, result.Uploaded).Equal(0)
	gt.Array(t, result.Warnings).Length(2).Required()
	gt.String(t, result.Warnings[0]).Contains("File too large")
}

func TestPipelineCreateFailure(t *testing.T) {
	backend := testsupport.NewBackend(t)
	backend.Fail(http.MethodPost, "/api/property/properties", http.StatusBadRequest, "UPI already registered")
	pipeline := submission.NewPipeline(backend.Client(t))

	payload, err := submission.BuildPayload(condoCategory, condoSub, condoValues(), verification(t))
	gt.NoError(t, err).Required()

	_, err = pipeline.Submit(context.Background(), payload)
	gt.Value(t, err).NotNil()
	gt.Value(t, submission.FailureMessage(err)).Equal("Failed to create property: UPI already registered")
	gt.Number(t, backend.Count(http.MethodPost, "/api/property/properties/101/images")).Equal(0)
}

func TestPipelineRejectsInvalidPayloadWithoutCalling(t *testing.T) {
	backend := testsupport.NewBackend(t)
	pipeline := submission.NewPipeline(backend.Client(t))

	values := condoValues()
	values["latitude"] = 120.0
	payload, err := submission.BuildPayload(condoCategory, condoSub, values, verification(t))
	gt.NoError(t, err).Required()

	_, err = pipeline.Submit(context.Background(), payload)
	gt.Error(t, err).Is(submission.ErrInvalidPayload)
	gt.String(t, submission.ErrorMessage(err)).Contains("latitude")
	gt.Array(t, backend.Requests()).Length(0)
}
