package panel

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/product"
)

// FormState is the lifecycle state of a Form.
type FormState int

const (
	FormClosed FormState = iota
	FormOpen
	FormSubmitting
	FormSuccess
)

func (s FormState) String() string {
	switch s {
	case FormOpen:
		return "open"
	case FormSubmitting:
		return "submitting"
	case FormSuccess:
		return "success"
	}
	return "closed"
}

// FormMode says whether a form creates a product or edits one.
type FormMode int

const (
	ModeCreate FormMode = iota
	ModeEdit
)

// SaveFunc persists a submitted draft.
type SaveFunc func(ctx context.Context, d product.Draft) error

// UploadFunc stores an image and returns its hosted URL.
type UploadFunc func(ctx context.Context, filename string, r io.Reader, productID *uuid.UUID) (string, error)

// Form is the create/edit form over one product's editable fields. The draft
// is a local copy; nothing reaches the store until Submit.
type Form struct {
	mode      FormMode
	productID *uuid.UUID
	save      SaveFunc
	upload    UploadFunc
	delay     time.Duration

	mu         sync.Mutex
	state      FormState
	draft      product.Draft
	err        string
	uploading  bool
	uploadErr  string
	gen        uint64
	closeTimer *time.Timer
	done       chan struct{}
	doneOnce   sync.Once
}

// NewForm opens a standalone form. productID is nil when creating.
func NewForm(mode FormMode, productID *uuid.UUID, initial product.Draft, save SaveFunc, upload UploadFunc) *Form {
	return newForm(mode, productID, initial, save, upload, SuccessCloseDelay)
}

func newForm(mode FormMode, productID *uuid.UUID, initial product.Draft, save SaveFunc, upload UploadFunc, delay time.Duration) *Form {
	initial.Features = slices.Clone(initial.Features)
	if initial.Features == nil {
		initial.Features = []string{}
	}
	return &Form{
		mode:      mode,
		productID: productID,
		save:      save,
		upload:    upload,
		delay:     delay,
		state:     FormOpen,
		draft:     initial,
		done:      make(chan struct{}),
	}
}

// Mode returns whether the form creates or edits.
func (f *Form) Mode() FormMode { return f.mode }

// ProductID returns the edited product's id, or nil when creating.
func (f *Form) ProductID() *uuid.UUID { return f.productID }

// State returns the lifecycle state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the draft.
func (f *Form) Draft() product.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.draft
	d.Features = slices.Clone(f.draft.Features)
	return d
}

// Preview is the image URL currently shown, "" when there is none.
func (f *Form) Preview() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.ImageURL
}

// Error is the inline submit error, "" when there is none.
func (f *Form) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// UploadError is the inline image upload error.
func (f *Form) UploadError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadErr
}

// Uploading reports whether an image upload is pending.
func (f *Form) Uploading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploading
}

// CanSubmit reports whether the submit affordance is enabled.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == FormOpen && !f.uploading
}

// Done is closed when the form closes.
func (f *Form) Done() <-chan struct{} {
	return f.done
}

// edit applies fn to the draft while the form is open.
func (f *Form) edit(fn func(d *product.Draft)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FormOpen {
		return false
	}
	fn(&f.draft)
	return true
}

func (f *Form) SetName(v string)            { f.edit(func(d *product.Draft) { d.Name = v }) }
func (f *Form) SetDescription(v string)     { f.edit(func(d *product.Draft) { d.Description = v }) }
func (f *Form) SetImageURL(v string)        { f.edit(func(d *product.Draft) { d.ImageURL = v }) }
func (f *Form) SetCurrentStatus(v string)   { f.edit(func(d *product.Draft) { d.CurrentStatus = v }) }
func (f *Form) SetGitRepoURL(v string)      { f.edit(func(d *product.Draft) { d.GitRepoURL = v }) }
func (f *Form) SetVercelURL(v string)       { f.edit(func(d *product.Draft) { d.VercelURL = v }) }
func (f *Form) SetVercelProjectID(v string) { f.edit(func(d *product.Draft) { d.VercelProjectID = v }) }
func (f *Form) SetVercelTeamID(v string)    { f.edit(func(d *product.Draft) { d.VercelTeamID = v }) }
func (f *Form) SetProductURL(v string)      { f.edit(func(d *product.Draft) { d.ProductURL = v }) }

// AddFeature appends the trimmed text. Empty and duplicate entries are
// ignored; the result reports whether the feature was added.
func (f *Form) AddFeature(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	added := false
	f.edit(func(d *product.Draft) {
		if slices.Contains(d.Features, text) {
			return
		}
		d.Features = append(d.Features, text)
		added = true
	})
	return added
}

// RemoveFeature removes the entry at index i. Out-of-range indexes are ignored.
func (f *Form) RemoveFeature(i int) bool {
	removed := false
	f.edit(func(d *product.Draft) {
		if i < 0 || i >= len(d.Features) {
			return
		}
		d.Features = slices.Delete(d.Features, i, i+1)
		removed = true
	})
	return removed
}

// RemoveImage clears the image without contacting the store.
func (f *Form) RemoveImage() {
	f.edit(func(d *product.Draft) { d.ImageURL = "" })
}

// UploadImage sends an image to the uploader. On success the draft's image
// URL is replaced; on failure the previous image is kept and the message is
// set as the upload error.
func (f *Form) UploadImage(ctx context.Context, filename string, r io.Reader) error {
	f.mu.Lock()
	if f.state != FormOpen {
		f.mu.Unlock()
		return ErrFormNotOpen
	}
	if f.uploading {
		f.mu.Unlock()
		return ErrUploadInProgress
	}
	f.uploading = true
	f.uploadErr = ""
	gen := f.gen
	f.mu.Unlock()

	url, err := f.upload(ctx, filename, r, f.productID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return ErrClosed
	}
	f.uploading = false
	if err != nil {
		ce := &CollaboratorError{Op: "upload image", Err: err}
		f.uploadErr = ce.Message()
		return ce
	}
	f.draft.ImageURL = url
	return nil
}

// Submit validates the draft and saves it. A blank name fails validation
// without calling save. On success the form enters FormSuccess and closes
// after the success delay; on failure it returns to FormOpen with the draft
// intact and Error set.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.state == FormSubmitting:
		f.mu.Unlock()
		return ErrAlreadySubmitting
	case f.state != FormOpen:
		f.mu.Unlock()
		return ErrFormNotOpen
	case f.uploading:
		f.mu.Unlock()
		return ErrUploadInProgress
	}

	name := strings.TrimSpace(f.draft.Name)
	if name == "" {
		ve := &ValidationError{Field: "name", Message: "Name is required"}
		f.err = ve.Message
		f.mu.Unlock()
		return ve
	}
	f.draft.Name = name
	f.err = ""
	f.state = FormSubmitting
	gen := f.gen
	d := f.draft
	d.Features = slices.Clone(f.draft.Features)
	f.mu.Unlock()

	err := f.save(ctx, d)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return ErrClosed
	}
	if err != nil {
		f.state = FormOpen
		var ve *ValidationError
		if errors.As(err, &ve) {
			f.err = ve.Message
			return ve
		}
		ce := &CollaboratorError{Op: "save product", Err: err}
		f.err = ce.Message()
		return ce
	}

	f.state = FormSuccess
	f.closeTimer = time.AfterFunc(f.delay, func() { f.closeGen(gen) })
	return nil
}

// Close discards the draft. Pending upload and save responses are ignored.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
}

func (f *Form) closeGen(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen == f.gen {
		f.closeLocked()
	}
}

func (f *Form) closeLocked() {
	f.gen++
	f.state = FormClosed
	f.draft = product.Draft{}
	f.err = ""
	f.uploadErr = ""
	f.uploading = false
	if f.closeTimer != nil {
		f.closeTimer.Stop()
		f.closeTimer = nil
	}
	f.doneOnce.Do(func() { close(f.done) })
}
