// Package intake drives one property-intake session from category selection
// to submission.
package intake

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/parcel"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/visibility"
	"github.com/m-mizutani/goerr/v2"
)

// State is a stage of the intake session.
type State string

const (
	StateNoCategory       State = "no_category"
	StateCategorySelected State = "category_selected"
	StateStep1            State = "step1"
	StateStep1Valid       State = "step1_valid"
	StateStep2            State = "step2"
	StateSubmitting       State = "submitting"
	StateSuccess          State = "success"
	StateFailed           State = "failed"
)

// Taxonomy supplies the active category tree. *taxonomy.Store satisfies it.
type Taxonomy interface {
	Snapshot() taxonomy.Snapshot
}

// Verifier checks a UPI. *parcel.Verifier satisfies it.
type Verifier interface {
	Verify(ctx context.Context, req parcel.Request) (parcel.Outcome, error)
}

// Submitter sends a finished payload. *submission.Pipeline satisfies it.
type Submitter interface {
	Submit(ctx context.Context, payload submission.Payload) (submission.Result, error)
}

// Machine holds the state of one intake session. Every method is safe for
// concurrent use; network calls run without holding the lock.
type Machine struct {
	mu sync.Mutex

	id        string
	taxonomy  Taxonomy
	verifier  Verifier
	submitter Submitter
	previews  *model.Previews
	logger    *slog.Logger
	onChange  func(from, to State)

	state    State
	category *taxonomy.Category
	sub      *taxonomy.SubCategory
	values   model.Values

	outcome     parcel.Outcome
	verifiedUPI string
	confirmed   bool
	// epoch changes whenever a verification in flight would go stale.
	epoch    uint64
	inFlight bool

	message     string
	notice      string
	fieldErrors map[string]string
	formErrors  []string
	result      *submission.Result
}

// Option configures a Machine.
type Option func(*Machine)

// WithPreviews shares a preview registry with the caller.
func WithPreviews(previews *model.Previews) Option {
	return func(m *Machine) {
		if previews != nil {
			m.previews = previews
		}
	}
}

// WithLogger overrides the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTransitionHook registers fn to observe every state change. fn runs with
// the machine locked and must not call back into it.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(m *Machine) {
		m.onChange = fn
	}
}

// New starts a session in NoCategory.
func New(tax Taxonomy, verifier Verifier, submitter Submitter, opts ...Option) *Machine {
	m := &Machine{
		id:          uuid.NewString(),
		taxonomy:    tax,
		verifier:    verifier,
		submitter:   submitter,
		state:       StateNoCategory,
		values:      model.Values{},
		fieldErrors: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.previews == nil {
		m.previews = model.NewPreviews()
	}
	return m
}

// ID identifies the session in logs.
func (m *Machine) ID() string {
	return m.id
}

// State reports the current stage. Step1 is reported as Step1Valid once no
// required field is missing.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentState()
}

func (m *Machine) currentState() State {
	if m.state == StateStep1 && len(m.missingRequired()) == 0 {
		return StateStep1Valid
	}
	return m.state
}

func (m *Machine) transition(to State) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	m.log(context.Background()).Debug("intake transition", "from", from, "to", to)
	if m.onChange != nil {
		m.onChange(from, to)
	}
}

// SelectCategory starts a new form under the category identified by key
// (id, name or label). The UPI and owner fields carry over; every other
// value, its preview and the verification are dropped. The parcel is
// assessed against the category, so it has to be verified again.
func (m *Machine) SelectCategory(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrSubmitInFlight
	}

	cat, ok := m.taxonomy.Snapshot().Category(key)
	if !ok {
		return goerr.Wrap(taxonomy.ErrCategoryNotFound, "cannot select category", goerr.V(taxonomy.CategoryKey, key))
	}

	carried := m.identityValues()
	m.previews.ReleaseAll(m.values)
	m.values = carried
	m.category = &cat
	m.sub = nil
	m.resetVerification()
	m.resetMessages()
	m.result = nil
	m.transition(StateCategorySelected)
	return nil
}

// SelectSubCategory picks the form to fill. The UPI and owner fields carry
// over, and so does a verification of that same UPI.
func (m *Machine) SelectSubCategory(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrSubmitInFlight
	}
	if m.category == nil {
		return ErrNoCategory
	}

	sub, ok := m.category.SubCategory(key)
	if !ok {
		return goerr.Wrap(taxonomy.ErrSubCategoryNotFound, "cannot select sub-category",
			goerr.V(taxonomy.CategoryKey, m.category.Name), goerr.V(taxonomy.SubCategoryKey, key))
	}

	carried := m.identityValues()
	m.previews.ReleaseAll(m.values)
	m.values = carried
	m.sub = &sub
	m.resetMessages()

	if m.isVerified() && strings.TrimSpace(m.values.Text(FieldUPI)) == m.verifiedUPI {
		m.mergeParcelFields()
		m.message = m.outcome.Message
	} else {
		m.resetVerification()
	}
	m.transition(StateStep1)
	return nil
}

func (m *Machine) identityValues() model.Values {
	carried := model.Values{}
	for _, field := range IdentityFields {
		if v := m.values[field.Name]; !model.IsEmpty(v) {
			carried[field.Name] = v
		}
	}
	return carried
}

// Cancel discards the session and returns to NoCategory.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrSubmitInFlight
	}
	m.previews.ReleaseAll(m.values)
	m.values = model.Values{}
	m.category = nil
	m.sub = nil
	m.resetVerification()
	m.resetMessages()
	m.result = nil
	m.transition(StateNoCategory)
	return nil
}

// Advance moves from step 1 to step 2 when no visible required field is
// empty. Otherwise it returns a *StepError listing them.
func (m *Machine) Advance() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrSubmitInFlight
	}
	if m.state != StateStep1 {
		return goerr.Wrap(ErrInvalidTransition, "cannot advance", goerr.V(StateKey, m.currentState()))
	}
	if missing := m.missingRequired(); len(missing) > 0 {
		return &StepError{Step: 1, Missing: missing}
	}
	m.transition(StateStep2)
	return nil
}

// Back returns from step 2 to step 1 keeping every value.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrSubmitInFlight
	}
	if m.state != StateStep2 {
		return goerr.Wrap(ErrInvalidTransition, "cannot go back", goerr.V(StateKey, m.currentState()))
	}
	m.transition(StateStep1)
	return nil
}

// MissingRequired lists visible required fields of the selected form that
// have no value.
func (m *Machine) MissingRequired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.missingRequired()
}

// Step1Valid reports whether step 1 can be completed.
func (m *Machine) Step1Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sub != nil && len(m.missingRequired()) == 0
}

func (m *Machine) missingRequired() []string {
	if m.sub == nil {
		return nil
	}
	return visibility.MissingRequired(m.sub.Fields, m.values)
}

// Step2Valid reports whether the media step is complete and the UPI is
// verified.
func (m *Machine) Step2Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sub != nil && len(m.missingStep2()) == 0
}

func (m *Machine) missingStep2() []string {
	var missing []string
	if images, _ := m.values[FieldImages].([]model.Upload); len(images) == 0 {
		missing = append(missing, FieldImages)
	}
	for _, field := range MediaFields {
		if model.IsEmpty(m.values[field.Name]) {
			missing = append(missing, field.Name)
		}
	}
	if strings.TrimSpace(m.values.Text(FieldUPI)) == "" {
		missing = append(missing, FieldUPI)
	}
	if !m.isVerified() {
		missing = append(missing, "verification")
	}
	return missing
}

// Locked reports whether non-identity fields reject edits.
func (m *Machine) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.isVerified()
}

func (m *Machine) isVerified() bool {
	return m.outcome.Verified && m.outcome.Allowed && m.verifiedUPI != ""
}

func (m *Machine) resetVerification() {
	m.outcome = parcel.Outcome{}
	m.verifiedUPI = ""
	m.confirmed = false
	m.epoch++
}

func (m *Machine) resetMessages() {
	m.message = ""
	m.notice = ""
	m.fieldErrors = make(map[string]string)
	m.formErrors = nil
}

func (m *Machine) mergeParcelFields() {
	for name, value := range m.outcome.Fields {
		m.values[name] = value
	}
}

// Values returns a copy of the current values.
func (m *Machine) Values() model.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Clone()
}

// Form returns the selected form, if any.
func (m *Machine) Form() (render.Form, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.category == nil || m.sub == nil {
		return render.Form{}, false
	}
	return render.Form{Category: m.category.Clone(), SubCategory: m.sub.Clone()}, true
}

// RenderOptions describes the current values, errors and lock state for a
// renderer.
func (m *Machine) RenderOptions() render.Options {
	m.mu.Lock()
	defer m.mu.Unlock()

	opts := render.Options{
		Values:   m.values.Clone(),
		Disabled: !m.isVerified(),
		PlotSize: m.plotSize(),
	}
	if len(m.fieldErrors) > 0 {
		opts.Errors = make(map[string][]string, len(m.fieldErrors))
		for name, msg := range m.fieldErrors {
			opts.Errors[name] = []string{msg}
		}
	}
	if m.message != "" && !m.isVerified() {
		opts.FormErrors = []string{m.message}
	}
	opts.FormErrors = render.MergeFormErrors(opts.FormErrors, m.formErrors...)
	if m.outcome.Warning != "" {
		opts.Warnings = append(opts.Warnings, m.outcome.Warning)
	}
	if m.notice != "" {
		opts.Warnings = append(opts.Warnings, m.notice)
	}
	return opts
}

func (m *Machine) plotSize() float64 {
	size, _ := parcel.PlotSize(m.values, m.outcome.Verification)
	return size
}

// Status is a read-only summary of the session.
type Status struct {
	Session          string             `json:"session"`
	State            State              `json:"state"`
	Category         string             `json:"category,omitempty"`
	SubCategory      string             `json:"subcategory,omitempty"`
	Verified         bool               `json:"verified"`
	Allowed          bool               `json:"allowed"`
	Locked           bool               `json:"locked"`
	Message          string             `json:"message,omitempty"`
	Warning          string             `json:"warning,omitempty"`
	WarningConfirmed bool               `json:"warning_confirmed"`
	Notice           string             `json:"notice,omitempty"`
	FieldErrors      map[string]string  `json:"field_errors,omitempty"`
	FormErrors       []string           `json:"form_errors,omitempty"`
	Missing          []string           `json:"missing,omitempty"`
	Result           *submission.Result `json:"result,omitempty"`
}

// Status summarises the session.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		Session:          m.id,
		State:            m.currentState(),
		Verified:         m.outcome.Verified,
		Allowed:          m.outcome.Allowed,
		Locked:           !m.isVerified(),
		Message:          m.message,
		Warning:          m.outcome.Warning,
		WarningConfirmed: m.confirmed,
		Notice:           m.notice,
		Missing:          m.missingRequired(),
	}
	if m.category != nil {
		st.Category = m.category.Name
	}
	if m.sub != nil {
		st.SubCategory = m.sub.Name
	}
	if len(m.fieldErrors) > 0 {
		st.FieldErrors = make(map[string]string, len(m.fieldErrors))
		for name, msg := range m.fieldErrors {
			st.FieldErrors[name] = msg
		}
	}
	if len(m.formErrors) > 0 {
		st.FormErrors = append([]string(nil), m.formErrors...)
	}
	if m.result != nil {
		res := *m.result
		st.Result = &res
	}
	return st
}

// Result returns the outcome of the last successful submit.
func (m *Machine) Result() (submission.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.result == nil {
		return submission.Result{}, false
	}
	return *m.result, true
}

func (m *Machine) log(ctx context.Context) *slog.Logger {
	if m.logger != nil {
		return m.logger.With(SessionKey, m.id)
	}
	return logging.From(ctx).With(SessionKey, m.id)
}
