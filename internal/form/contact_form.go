package form

import (
	"context"
	"log/slog"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/query"
	"jobby-backend/pkg/validation"
)

// ContactForm edits the address fields of the same profile record.
type ContactForm struct {
	binding[ContactValues]

	api ProfileAPI
}

func NewContactForm(q *query.Query[*domain.CandidateProfile], api ProfileAPI, notifier Notifier, log *slog.Logger) *ContactForm {
	f := &ContactForm{api: api}
	f.binding = binding[ContactValues]{
		name:     "contact",
		query:    q,
		notifier: notifier,
		log:      log,
		seedFrom: ContactValuesFrom,
	}
	f.init()
	return f
}

func (f *ContactForm) Load(ctx context.Context) error {
	return f.load(ctx)
}

func (f *ContactForm) Submit(ctx context.Context) error {
	return f.submit(ctx,
		func(v ContactValues, id int64) error {
			return validation.Check(v.Update(id))
		},
		func(ctx context.Context, v ContactValues, id int64) error {
			return f.api.UpdateContact(ctx, v.Update(id))
		},
		"Contact Updated", "Contact update failed",
	)
}

func (f *ContactForm) SetCity(s string) { f.Update(func(v *ContactValues) { v.City = s }) }
func (f *ContactForm) SetState(s string) { f.Update(func(v *ContactValues) { v.State = s }) }
func (f *ContactForm) SetCountry(s string) { f.Update(func(v *ContactValues) { v.Country = s }) }
func (f *ContactForm) SetPincode(s string) { f.Update(func(v *ContactValues) { v.Pincode = s }) }
