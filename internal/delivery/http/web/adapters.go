package web

import (
	"context"
	"fmt"
	"io"

	"jobby-backend/internal/domain"
)

// usecaseAPI serves the profile forms in-process, as the session user.
type usecaseAPI struct {
	uc     domain.CandidateUsecase
	userID string
}

func (a usecaseAPI) CurrentProfile(ctx context.Context) (*domain.CandidateProfile, error) {
	return a.uc.GetProfile(ctx, a.userID)
}

func (a usecaseAPI) UpdateProfile(ctx context.Context, req *domain.ProfileUpdate) error {
	_, err := a.uc.UpdateProfile(ctx, req)
	return err
}

func (a usecaseAPI) UpdateProfileImage(ctx context.Context, req *domain.ImageUpdate) error {
	_, err := a.uc.UpdateProfileImage(ctx, req)
	return err
}

func (a usecaseAPI) UpdateContact(ctx context.Context, req *domain.ContactUpdate) error {
	_, err := a.uc.UpdateContact(ctx, req)
	return err
}

type usecaseUploader struct {
	uc       domain.UploadUsecase
	userID   string
	maxBytes int64
}

func (u usecaseUploader) Upload(ctx context.Context, filename string, r io.Reader) (*domain.ImageUploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return u.uc.UploadProfileImage(ctx, u.userID, filename, data)
}
