package taxonomy_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/m-mizutani/gt"
)

func TestDefaultTaxonomyShape(t *testing.T) {
	cats := taxonomy.Default()
	gt.Array(t, cats).Length(6)

	total := 0
	for _, cat := range cats {
		total += len(cat.SubCategories)
	}
	gt.Number(t, total).Equal(20)

	snap := taxonomy.Snapshot{Categories: cats}
	_, condo, err := snap.Lookup("Residential", "Condominium Unit")
	gt.NoError(t, err).Required()

	var required []string
	for _, field := range condo.Fields {
		if field.Required {
			required = append(required, field.Name)
		}
	}
	want := []string{"condition", "built_area", "floor_level", "bedrooms", "bathrooms"}
	if diff := cmp.Diff(want, required); diff != "" {
		t.Fatalf("required fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultExpandsGroups(t *testing.T) {
	snap := taxonomy.Snapshot{Categories: taxonomy.Default()}
	_, office, err := snap.Lookup("commercial", "office_block")
	gt.NoError(t, err).Required()

	year, ok := office.Field("construction_year")
	gt.Bool(t, ok).True()
	gt.Value(t, year.Conditional).NotNil()
	gt.Value(t, year.Conditional.Field).Equal("under_construction")
	gt.Value(t, year.Conditional.Value).Equal(any("No"))

	roof, ok := office.Field("roof_type")
	gt.Bool(t, ok).True()
	gt.Array(t, roof.Options).Length(4)
	gt.Value(t, roof.Width).Equal(taxonomy.WidthHalf)
}

func TestDefaultReturnsCopies(t *testing.T) {
	first := taxonomy.Default()
	first[0].SubCategories[0].Fields[0].Options[0] = "mutated"

	second := taxonomy.Default()
	gt.Value(t, second[0].SubCategories[0].Fields[0].Options[0]).NotEqual("mutated")
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"unknown type": {
			doc: `
categories:
  - name: a
    label: A
    subcategories:
      - name: s
        label: S
        fields:
          - { name: x, label: X, type: slider }
`,
			want: taxonomy.ErrUnknownFieldType,
		},
		"select without options": {
			doc: `
categories:
  - name: a
    label: A
    subcategories:
      - name: s
        label: S
        fields:
          - { name: x, label: X, type: select }
`,
			want: taxonomy.ErrMissingOptions,
		},
		"dangling conditional": {
			doc: `
categories:
  - name: a
    label: A
    subcategories:
      - name: s
        label: S
        fields:
          - { name: x, label: X, type: text, conditional: { field: y, value: "Yes" } }
`,
			want: taxonomy.ErrDanglingConditional,
		},
		"group cycle": {
			doc: `
groups:
  loop:
    - include: loop
categories:
  - name: a
    label: A
    subcategories:
      - name: s
        label: S
        fields:
          - include: loop
`,
			want: taxonomy.ErrGroupCycle,
		},
		"duplicate field": {
			doc: `
categories:
  - name: a
    label: A
    subcategories:
      - name: s
        label: S
        fields:
          - { name: x, label: X, type: text }
          - { name: x, label: X again, type: number }
`,
			want: taxonomy.ErrDuplicateField,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := taxonomy.Parse([]byte(tc.doc))
			gt.Error(t, err).Is(tc.want)
		})
	}
}

type stubSource struct {
	cats   []taxonomy.RemoteCategory
	subs   []taxonomy.RemoteSubCategory
	catErr error
	subErr error
	calls  atomic.Int32
}

func (s *stubSource) Categories(context.Context) ([]taxonomy.RemoteCategory, error) {
	s.calls.Add(1)
	return s.cats, s.catErr
}

func (s *stubSource) SubCategories(context.Context) ([]taxonomy.RemoteSubCategory, error) {
	s.calls.Add(1)
	return s.subs, s.subErr
}

func TestJoinRemapsMatchedIdentities(t *testing.T) {
	static := taxonomy.Default()
	cats := []taxonomy.RemoteCategory{
		{ID: 3, Name: "residential", Label: "Residential", Icon: "<svg></svg>"},
		{ID: 9, Name: "Forest", Label: "Forestry"},
		{ID: 12, Name: "marina", Label: "Marina"},
	}
	subs := []taxonomy.RemoteSubCategory{
		{ID: 31, CategoryID: 3, Name: "condo_unit", Label: "Condominium Unit"},
		{ID: 32, CategoryID: 3, Name: "houseboat", Label: "Houseboat"},
		{ID: 33, CategoryID: 3, Name: "other", Label: "Garage"},
	}

	joined := taxonomy.Join(static, cats, subs)
	gt.Array(t, joined).Length(len(static))

	snap := taxonomy.Snapshot{Categories: joined}
	res, ok := snap.Category("residential")
	gt.Bool(t, ok).True()
	gt.Value(t, res.ID).Equal("3")
	gt.Value(t, res.Icon).Equal("<svg></svg>")
	gt.Array(t, res.SubCategories).Length(2)
	gt.Value(t, res.SubCategories[0].ID).Equal("31")
	gt.Value(t, res.SubCategories[1].ID).Equal("33")
	gt.Value(t, res.SubCategories[1].Name).Equal("garage")

	// case-sensitive: "Forest" is not "forest" and "Forestry" is not "Forest"
	forest, ok := snap.Category("forest")
	gt.Bool(t, ok).True()
	gt.Value(t, forest.ID).Equal("forest")
	gt.Array(t, forest.SubCategories).Length(0)
	gt.Value(t, forest.Icon).Equal("TreePine")
	_, _, err := snap.Lookup("forest", "forest_plot")
	gt.Error(t, err).Is(taxonomy.ErrSubCategoryNotFound)

	_, ok = snap.Category("marina")
	gt.Bool(t, ok).False()
}

func TestJoinIsDeterministic(t *testing.T) {
	static := taxonomy.Default()
	cats := []taxonomy.RemoteCategory{{ID: 1, Name: "commercial", Label: "Commercial"}}
	subs := []taxonomy.RemoteSubCategory{{ID: 5, CategoryID: 1, Name: "garage_x", Label: "Office Building"}}

	a := taxonomy.Join(static, cats, subs)
	b := taxonomy.Join(static, cats, subs)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("join not deterministic:\n%s", diff)
	}
}

func TestStoreLoadFetchesBothLists(t *testing.T) {
	src := &stubSource{
		cats: []taxonomy.RemoteCategory{{ID: 4, Name: "industrial", Label: "Industrial"}},
		subs: []taxonomy.RemoteSubCategory{{ID: 41, CategoryID: 4, Name: "ind_plot", Label: "Land for industrial building"}},
	}
	store := taxonomy.NewStore(taxonomy.WithSource(src))

	snap := store.Load(context.Background())
	gt.Number(t, int(src.calls.Load())).Equal(2)
	gt.Value(t, snap.Origin).Equal(taxonomy.OriginRemote)
	gt.NoError(t, store.LastError()).Required()

	ind, ok := snap.Category("Industrial")
	gt.Bool(t, ok).True()
	gt.Value(t, ind.ID).Equal("4")
	gt.Array(t, ind.SubCategories).Length(1)
}

func TestStoreLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	src := &stubSource{
		cats: []taxonomy.RemoteCategory{{ID: 4, Name: "industrial", Label: "Industrial"}},
	}
	store := taxonomy.NewStore(taxonomy.WithSource(src))
	first := store.Load(context.Background())

	src.subErr = errors.New("connection reset")
	second := store.Load(context.Background())

	if diff := cmp.Diff(first.Categories, second.Categories); diff != "" {
		t.Fatalf("snapshot changed after failed load:\n%s", diff)
	}
	gt.Value(t, store.LastError()).NotNil()
}

func TestStoreWithoutSourceServesStatic(t *testing.T) {
	store := taxonomy.NewStore()
	snap := store.Load(context.Background())
	gt.Value(t, snap.Origin).Equal(taxonomy.OriginStatic)
	gt.Array(t, snap.Categories).Length(6)
}

func TestLookupErrors(t *testing.T) {
	snap := taxonomy.NewStore().Snapshot()

	_, _, err := snap.Lookup("spaceport", "")
	gt.Error(t, err).Is(taxonomy.ErrCategoryNotFound)

	_, _, err = snap.Lookup("public", "hangar")
	gt.Error(t, err).Is(taxonomy.ErrSubCategoryNotFound)
}
