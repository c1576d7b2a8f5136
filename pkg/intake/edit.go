package intake

import (
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/m-mizutani/goerr/v2"
)

// Set validates raw for the named field and stores it. Until the UPI is
// verified only the identity fields accept input. Changing the UPI drops
// the verification.
func (m *Machine) Set(name string, raw any) (render.Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.editable(); err != nil {
		return render.Change{}, err
	}

	field, err := m.field(name)
	if err != nil {
		return render.Change{}, err
	}
	_, identity := identityField(name)
	if !identity && !m.isVerified() {
		return render.Change{}, goerr.Wrap(ErrLocked, "field is read-only", goerr.V(FieldKey, name))
	}

	change, err := render.Apply(field, raw, m.plotSize())
	if err != nil {
		return render.Change{}, err
	}

	if name == FieldUPI && strings.TrimSpace(model.Text(change.Value)) != strings.TrimSpace(m.values.Text(FieldUPI)) {
		m.resetVerification()
		m.message = ""
	}
	m.previews.ReleaseReplaced(m.values[name], change.Value)
	m.values[name] = change.Value

	if change.FieldError != "" {
		m.fieldErrors[name] = change.FieldError
	} else {
		delete(m.fieldErrors, name)
	}
	m.notice = change.Warning
	return change, nil
}

func (m *Machine) editable() error {
	if m.inFlight {
		return ErrSubmitInFlight
	}
	if m.category == nil {
		return ErrNoCategory
	}
	if m.sub == nil {
		return ErrNoSubCategory
	}
	if m.state != StateStep1 && m.state != StateStep2 {
		return goerr.Wrap(ErrInvalidTransition, "form is not editable", goerr.V(StateKey, m.state))
	}
	return nil
}

func (m *Machine) field(name string) (taxonomy.FormField, error) {
	if field, ok := identityField(name); ok {
		return field, nil
	}
	if field, ok := mediaField(name); ok {
		return field, nil
	}
	if field, ok := m.sub.Field(name); ok {
		return field, nil
	}
	return taxonomy.FormField{}, goerr.Wrap(ErrUnknownField, "field not in form",
		goerr.V(FieldKey, name), goerr.V(taxonomy.SubCategoryKey, m.sub.Name))
}

// AttachImages adds files to the gallery, acquiring a preview for each.
func (m *Machine) AttachImages(files ...model.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.editableMedia(); err != nil {
		return err
	}

	images, _ := m.values[FieldImages].([]model.Upload)
	next := make([]model.Upload, 0, len(images)+len(files))
	next = append(next, images...)
	for _, file := range files {
		next = append(next, m.previews.Acquire(file))
	}
	m.values[FieldImages] = next
	return nil
}

// RemoveImage drops the gallery image at index and releases its preview.
func (m *Machine) RemoveImage(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.editableMedia(); err != nil {
		return err
	}

	images, _ := m.values[FieldImages].([]model.Upload)
	if index < 0 || index >= len(images) {
		return goerr.Wrap(ErrImageIndexOutOfRange, "cannot remove image", goerr.V(IndexKey, index))
	}
	m.previews.Release(images[index].Preview)
	next := make([]model.Upload, 0, len(images)-1)
	next = append(next, images[:index]...)
	next = append(next, images[index+1:]...)
	m.values[FieldImages] = next
	return nil
}

// AttachModel sets the optional 3D walkthrough, replacing any previous one.
func (m *Machine) AttachModel(file model.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.editableMedia(); err != nil {
		return err
	}
	m.previews.ReleaseValue(m.values[FieldModel3D])
	m.values[FieldModel3D] = m.previews.Acquire(file)
	return nil
}

// RemoveModel clears the 3D walkthrough.
func (m *Machine) RemoveModel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.editableMedia(); err != nil {
		return err
	}
	m.previews.ReleaseValue(m.values[FieldModel3D])
	delete(m.values, FieldModel3D)
	return nil
}

func (m *Machine) editableMedia() error {
	if err := m.editable(); err != nil {
		return err
	}
	if !m.isVerified() {
		return goerr.Wrap(ErrLocked, "media is read-only")
	}
	return nil
}

// ConfirmWarning records that the user accepts the land-use mismatch.
func (m *Machine) ConfirmWarning() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcome.Warning == "" {
		return ErrNoWarning
	}
	m.confirmed = true
	return nil
}

// OpenPreviews reports how many attached-file previews are held.
func (m *Machine) OpenPreviews() int {
	return m.previews.Open()
}
