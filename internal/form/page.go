package form

import (
	"context"
	"errors"
	"log/slog"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/query"
)

// Page is the profile page: three independent forms over one shared read.
type Page struct {
	Query    *query.Query[*domain.CandidateProfile]
	Profile  *ProfileForm
	Contact  *ContactForm
	Password PasswordForm
}

func NewPage(client *query.Client, api ProfileAPI, uploader ImageUploader, notifier Notifier, log *slog.Logger) *Page {
	q := NewProfileQuery(client, api)
	return &Page{
		Query:   q,
		Profile: NewProfileForm(q, api, uploader, notifier, log),
		Contact: NewContactForm(q, api, notifier, log),
	}
}

// Load seeds both data-bound forms. The profile is fetched once.
func (p *Page) Load(ctx context.Context) error {
	return errors.Join(p.Profile.Load(ctx), p.Contact.Load(ctx))
}

// Current returns the cached profile, or nil if the user has none.
func (p *Page) Current(ctx context.Context) (*domain.CandidateProfile, error) {
	return p.Query.Get(ctx)
}

func (p *Page) Close() {
	p.Profile.Close()
	p.Contact.Close()
}
