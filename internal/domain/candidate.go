package domain

import (
	"context"
	"strings"
	"time"
)

// PlaceholderImage is shown wherever a candidate has no profile image.
const PlaceholderImage = "/placeholder-user-image.png"

type CandidateProfile struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"userId"`
	FullName          string    `json:"fullName"`
	JobTitle          *string   `json:"jobTitle"`
	Phone             *string   `json:"phone"`
	Email             string    `json:"email"`
	Website           *string   `json:"website"`
	ExperienceInYears *string   `json:"experienceInYears"`
	Age               *string   `json:"age"`
	Bio               *string   `json:"bio"`
	Skills            []string  `json:"skills"`
	ShowInListings    bool      `json:"showInListings"`
	Image             *string   `json:"image"`
	IsComplete        bool      `json:"isComplete"`
	City              *string   `json:"city"`
	State             *string   `json:"state"`
	Country           *string   `json:"country"`
	Pincode           *string   `json:"pincode"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the identity fields edited by the profile form.
// Numeric-looking fields stay text; the schema decides whether they parse.
type ProfileUpdate struct {
	ID                int64    `json:"id" validate:"required,gt=0"`
	FullName          string   `json:"fullName" validate:"required,not_blank,max=100,no_emoji"`
	JobTitle          string   `json:"jobTitle" validate:"max=100,no_emoji"`
	Phone             string   `json:"phone" validate:"valid_phone"`
	Email             string   `json:"email" validate:"required,email"`
	Website           string   `json:"website" validate:"omitempty,url"`
	ExperienceInYears string   `json:"experienceInYears" validate:"numeric_text=0 60"`
	Age               string   `json:"age" validate:"numeric_text=14 100"`
	Skills            []string `json:"skills" validate:"max=50,dive,required,max=50"`
	Bio               string   `json:"bio" validate:"max=500"`
	ShowInListings    bool     `json:"showInListings"`
}

// ContactUpdate carries the address fields edited by the contact form.
type ContactUpdate struct {
	ID      int64  `json:"id" validate:"required,gt=0"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
	Country string `json:"country" validate:"max=100"`
	Pincode string `json:"pincode" validate:"max=12"`
}

// ImageUpdate sets or clears the profile image. A nil ImageURL removes it.
type ImageUpdate struct {
	ID       int64   `json:"id" validate:"required,gt=0"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

// ImageUploadResult is what the upload service hands back to callers.
type ImageUploadResult struct {
	SecureURL string `json:"secure_url"`
}

type CandidateRepository interface {
	GetByUserID(ctx context.Context, userID string) (*CandidateProfile, error)
	UpdateProfile(ctx context.Context, userID string, profile *CandidateProfile) error
	UpdateImage(ctx context.Context, userID string, profileID int64, imageURL *string) error
	UpdateContact(ctx context.Context, userID string, profile *CandidateProfile) error
}

type CandidateUsecase interface {
	GetProfile(ctx context.Context, userID string) (*CandidateProfile, error)
	UpdateProfile(ctx context.Context, req *ProfileUpdate) (*CandidateProfile, error)
	UpdateProfileImage(ctx context.Context, req *ImageUpdate) (*CandidateProfile, error)
	UpdateContact(ctx context.Context, req *ContactUpdate) (*CandidateProfile, error)
}

type UploadUsecase interface {
	UploadProfileImage(ctx context.Context, userID, filename string, data []byte) (*ImageUploadResult, error)
}

// ProfileCache is the server-side read cache of current profiles.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*CandidateProfile, bool)
	Set(ctx context.Context, profile *CandidateProfile)
	Invalidate(ctx context.Context, userID string)
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// UploadLimiter bounds how often a user may upload.
type UploadLimiter interface {
	AllowUpload(ctx context.Context, ip, userID string) (bool, int, error)
}

// ProfileCompleteHint is shown next to an incomplete profile status.
const ProfileCompleteHint = "Complete your profile by filling every input"

// Complete reports whether every input of the profile page is filled.
// The image is not an input and does not count.
func (p *CandidateProfile) Complete() bool {
	filled := func(s *string) bool { return s != nil && strings.TrimSpace(*s) != "" }
	return strings.TrimSpace(p.FullName) != "" &&
		strings.TrimSpace(p.Email) != "" &&
		filled(p.JobTitle) &&
		filled(p.Phone) &&
		filled(p.Website) &&
		filled(p.ExperienceInYears) &&
		filled(p.Age) &&
		filled(p.Bio) &&
		len(p.Skills) > 0 &&
		filled(p.City) &&
		filled(p.State) &&
		filled(p.Country) &&
		filled(p.Pincode)
}
