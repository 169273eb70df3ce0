package entry

import (
	"context"
	"errors"

	"github.com/trackwise/trackwise-go/internal/api"
	"github.com/trackwise/trackwise-go/internal/logger"
	"github.com/trackwise/trackwise-go/internal/models"
)

// User-facing messages for submission failures. Validation messages live on
// ValidationError.
const (
	msgServerRejected   = "Submission failed."
	msgTransportFailure = "Something went wrong."
)

// Submitter posts one normalized entry to the backend.
type Submitter interface {
	SubmitEntry(ctx context.Context, payload api.EntryPayload) error
}

// Form is the entry form state machine: a draft, the currently selected
// entry type, and a single user-facing error message that each submission
// attempt replaces wholesale. A Form is not safe for concurrent use.
type Form struct {
	submitter Submitter
	draft     Draft
	errMsg    string
}

// NewForm creates an entry form defaulting to the income type.
func NewForm(submitter Submitter) *Form {
	return &Form{
		submitter: submitter,
		draft:     Draft{Type: models.TypeIncome},
	}
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft {
	return f.draft
}

// Err returns the current user-facing error message, empty when the last
// attempt succeeded or nothing was attempted yet.
func (f *Form) Err() string {
	return f.errMsg
}

// SetType switches the entry type. A selected category that does not apply
// to the new type is reset.
func (f *Form) SetType(entryType string) {
	f.draft.Type = entryType
	if !models.CategoryApplies(entryType, f.draft.Category) {
		f.draft.Category = ""
	}
}

// SetAmount sets the raw amount field.
func (f *Form) SetAmount(amount string) { f.draft.Amount = amount }

// SetDate sets the raw year/month/day fields.
func (f *Form) SetDate(year, month, day string) {
	f.draft.Year, f.draft.Month, f.draft.Day = year, month, day
}

// SetCategory sets the category field.
func (f *Form) SetCategory(category string) { f.draft.Category = category }

// SetDescription sets the description field.
func (f *Form) SetDescription(description string) { f.draft.Description = description }

// SetVendor sets the optional vendor field.
func (f *Form) SetVendor(vendor string) { f.draft.Vendor = vendor }

// Submit validates the draft and posts it to the backend. Exactly one
// network write happens per successful validation pass; a draft failing
// validation is never submitted. On success the mutable fields reset to
// their initial empty state and the selected type is preserved.
func (f *Form) Submit(ctx context.Context) error {
	payload, err := Normalize(f.draft)
	if err != nil {
		f.errMsg = err.Error()
		return err
	}

	if err := f.submitter.SubmitEntry(ctx, payload); err != nil {
		f.errMsg = submissionMessage(err)
		logger.Log.Error().Err(err).Str("type", payload.Type).Msg("Manual entry submission failed")
		return err
	}

	f.errMsg = ""
	f.draft = Draft{Type: f.draft.Type}
	return nil
}

// submissionMessage renders a failed submission for the user: the server's
// own message when it sent one, a generic rejection otherwise, and a
// distinct generic message when no response arrived at all.
func submissionMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Kind == api.ErrServerRejected {
		return api.ServerMessage(err, msgServerRejected)
	}
	return msgTransportFailure
}
