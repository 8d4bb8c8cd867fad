package form

import (
	"context"
	"io"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/query"
)

// CurrentProfileKey is the query key every form of the profile page reads.
const CurrentProfileKey = "candidate.currentProfile"

// ProfileAPI is the remote side of the profile page.
type ProfileAPI interface {
	// CurrentProfile returns nil when the user has no profile yet.
	CurrentProfile(ctx context.Context) (*domain.CandidateProfile, error)
	UpdateProfile(ctx context.Context, req *domain.ProfileUpdate) error
	UpdateProfileImage(ctx context.Context, req *domain.ImageUpdate) error
	UpdateContact(ctx context.Context, req *domain.ContactUpdate) error
}

// ImageUploader stores an image and returns where it can be fetched from.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*domain.ImageUploadResult, error)
}

// NewProfileQuery registers the shared current-profile read on client.
func NewProfileQuery(client *query.Client, api ProfileAPI) *query.Query[*domain.CandidateProfile] {
	return query.New(client, CurrentProfileKey, api.CurrentProfile)
}
