package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/query"
	"jobby-backend/pkg/validation"
)

// ProfileForm edits identity and professional fields. The profile image is
// saved on its own, outside the form's submit.
type ProfileForm struct {
	binding[ProfileValues]

	api      ProfileAPI
	uploader ImageUploader

	// guarded by binding.mu
	image      *string
	imageBusy  bool
	isComplete bool
}

func NewProfileForm(q *query.Query[*domain.CandidateProfile], api ProfileAPI, uploader ImageUploader, notifier Notifier, log *slog.Logger) *ProfileForm {
	f := &ProfileForm{api: api, uploader: uploader}
	f.binding = binding[ProfileValues]{
		name:     "profile",
		query:    q,
		notifier: notifier,
		log:      log,
		seedFrom: ProfileValuesFrom,
	}
	f.onSeed = func(p *domain.CandidateProfile) {
		f.image = p.Image
		f.isComplete = p.IsComplete
	}
	f.init()
	return f
}

// Load requests the current profile and seeds the form.
func (f *ProfileForm) Load(ctx context.Context) error {
	return f.load(ctx)
}

// Submit sends every current field value with the profile id.
func (f *ProfileForm) Submit(ctx context.Context) error {
	return f.submit(ctx,
		func(v ProfileValues, id int64) error {
			return validation.Check(v.Update(id))
		},
		func(ctx context.Context, v ProfileValues, id int64) error {
			return f.api.UpdateProfile(ctx, v.Update(id))
		},
		"Profile Updated", "Profile update failed",
	)
}

// Validate runs the schema over the current values without submitting.
func (f *ProfileForm) Validate() validation.FieldErrors {
	v := f.Values()
	err := validation.Check(v.Update(f.ProfileID()))
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// UploadImage hands the file to the uploader and saves the returned URL
// immediately, whatever else is pending in the form.
func (f *ProfileForm) UploadImage(ctx context.Context, filename string, r io.Reader) error {
	id, err := f.beginImage()
	if err != nil {
		return err
	}

	res, err := f.uploader.Upload(ctx, filename, r)
	if err != nil {
		f.endImage()
		f.log.Error("Image upload failed", "profile_id", id, "error", err)
		f.notifier.Notify(failure("Image upload failed", err))
		return err
	}
	if res == nil || res.SecureURL == "" {
		f.endImage()
		err := errors.New("upload returned no image url")
		f.notifier.Notify(failure("Image upload failed", err))
		return err
	}

	url := res.SecureURL
	return f.saveImage(ctx, id, &url)
}

// RemoveImage clears the profile image.
func (f *ProfileForm) RemoveImage(ctx context.Context) error {
	id, err := f.beginImage()
	if err != nil {
		return err
	}
	return f.saveImage(ctx, id, nil)
}

func (f *ProfileForm) beginImage() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.seeded {
		return 0, ErrNoProfile
	}
	if f.imageBusy {
		return 0, fmt.Errorf("image update already in progress: %w", ErrNotReady)
	}
	f.imageBusy = true
	return f.profileID, nil
}

func (f *ProfileForm) endImage() {
	f.mu.Lock()
	f.imageBusy = false
	f.mu.Unlock()
}

func (f *ProfileForm) saveImage(ctx context.Context, id int64, url *string) error {
	err := f.api.UpdateProfileImage(ctx, &domain.ImageUpdate{ID: id, ImageURL: url})
	f.endImage()
	if err != nil {
		f.log.Error("Profile image update failed", "profile_id", id, "error", err)
		f.notifier.Notify(failure("Profile image update failed", err))
		return err
	}

	f.notifier.Notify(success("Profile Image Updated"))
	f.invalidate(ctx)
	return nil
}

// ImageURL is the image to display, falling back to the placeholder.
func (f *ProfileForm) ImageURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.image == nil || *f.image == "" {
		return domain.PlaceholderImage
	}
	return *f.image
}

// ImageBusy reports whether an image save is in flight.
func (f *ProfileForm) ImageBusy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.imageBusy
}

// IsComplete mirrors the server-computed completeness of the last seed.
func (f *ProfileForm) IsComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.isComplete
}

func (f *ProfileForm) SetFullName(s string) { f.Update(func(v *ProfileValues) { v.FullName = s }) }
func (f *ProfileForm) SetJobTitle(s string) { f.Update(func(v *ProfileValues) { v.JobTitle = s }) }
func (f *ProfileForm) SetPhone(s string) { f.Update(func(v *ProfileValues) { v.Phone = s }) }
func (f *ProfileForm) SetEmail(s string) { f.Update(func(v *ProfileValues) { v.Email = s }) }
func (f *ProfileForm) SetWebsite(s string) { f.Update(func(v *ProfileValues) { v.Website = s }) }
func (f *ProfileForm) SetExperience(s string) { f.Update(func(v *ProfileValues) { v.ExperienceInYears = s }) }
func (f *ProfileForm) SetAge(s string) { f.Update(func(v *ProfileValues) { v.Age = s }) }
func (f *ProfileForm) SetBio(s string) { f.Update(func(v *ProfileValues) { v.Bio = s }) }
func (f *ProfileForm) SetShowInListings(b bool) { f.Update(func(v *ProfileValues) { v.ShowInListings = b }) }

// SetSkills replaces the skill tags. Tags are freeform; duplicates collapse.
func (f *ProfileForm) SetSkills(tags []string) {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	f.Update(func(v *ProfileValues) { v.Skills = out })
}
