package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/apperror"
	"jobby-backend/pkg/audit"
	"jobby-backend/pkg/logger"
	"jobby-backend/pkg/metrics"
	"jobby-backend/pkg/validation"
)

type candidateUsecase struct {
	repo   domain.CandidateRepository
	cache  domain.ProfileCache
	events domain.EventPublisher
	audit  *audit.Logger
	now    func() time.Time
}

func NewCandidateUsecase(repo domain.CandidateRepository, cache domain.ProfileCache, events domain.EventPublisher, auditLog *audit.Logger) domain.CandidateUsecase {
	return &candidateUsecase{
		repo:   repo,
		cache:  cache,
		events: events,
		audit:  auditLog,
		now:    time.Now,
	}
}

// GetProfile returns the caller's profile, or nil if they have none yet.
func (u *candidateUsecase) GetProfile(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	// Security: Ownership Check
	ctxUserID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	if ctxUserID != userID {
		return nil, apperror.Forbidden("You can only view your own profile")
	}

	if p, ok := u.cache.Get(ctx, userID); ok {
		metrics.ProfileCacheLookups.WithLabelValues("hit").Inc()
		return p, nil
	}
	metrics.ProfileCacheLookups.WithLabelValues("miss").Inc()

	profile, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if profile == nil {
		return nil, nil
	}
	u.cache.Set(ctx, profile)
	return profile, nil
}

func (u *candidateUsecase) UpdateProfile(ctx context.Context, req *domain.ProfileUpdate) (*domain.CandidateProfile, error) {
	if err := u.validate(ctx, "profile", req); err != nil {
		return nil, err
	}
	return u.mutate(ctx, "profile", domain.EventProfileUpdated, req.ID,
		func(p *domain.CandidateProfile) {
			p.FullName = strings.TrimSpace(req.FullName)
			p.JobTitle = optional(req.JobTitle)
			p.Phone = optional(req.Phone)
			p.Email = strings.TrimSpace(req.Email)
			p.Website = optional(req.Website)
			p.ExperienceInYears = optional(req.ExperienceInYears)
			p.Age = optional(req.Age)
			p.Bio = optional(req.Bio)
			p.Skills = append([]string{}, req.Skills...)
			p.ShowInListings = req.ShowInListings
		},
		u.repo.UpdateProfile,
	)
}

// UpdateProfileImage sets or clears the image without touching other fields.
func (u *candidateUsecase) UpdateProfileImage(ctx context.Context, req *domain.ImageUpdate) (*domain.CandidateProfile, error) {
	if err := u.validate(ctx, "image", req); err != nil {
		return nil, err
	}
	image := req.ImageURL
	if image != nil && *image == "" {
		image = nil
	}
	return u.mutate(ctx, "image", domain.EventProfileImageUpdated, req.ID,
		func(p *domain.CandidateProfile) { p.Image = image },
		func(ctx context.Context, userID string, p *domain.CandidateProfile) error {
			return u.repo.UpdateImage(ctx, userID, p.ID, p.Image)
		},
	)
}

func (u *candidateUsecase) UpdateContact(ctx context.Context, req *domain.ContactUpdate) (*domain.CandidateProfile, error) {
	if err := u.validate(ctx, "contact", req); err != nil {
		return nil, err
	}
	return u.mutate(ctx, "contact", domain.EventContactUpdated, req.ID,
		func(p *domain.CandidateProfile) {
			p.City = optional(req.City)
			p.State = optional(req.State)
			p.Country = optional(req.Country)
			p.Pincode = optional(req.Pincode)
		},
		u.repo.UpdateContact,
	)
}

func (u *candidateUsecase) validate(ctx context.Context, kind string, req interface{}) error {
	err := validation.Check(req)
	if err == nil {
		return nil
	}
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		metrics.ProfileMutations.WithLabelValues(kind, "invalid").Inc()
		u.audit.Record(ctx, audit.Entry{
			Action:  audit.ActionValidationFailed,
			UserID:  userFrom(ctx),
			Details: map[string]interface{}{"kind": kind, "fields": fieldNames(fe)},
		})
		return apperror.Validation(err, fe)
	}
	return apperror.BadRequest(err.Error())
}

// mutate loads the caller's profile, checks that profileID is theirs, applies
// the change, recomputes completeness and persists it through write.
func (u *candidateUsecase) mutate(
	ctx context.Context,
	kind string,
	event domain.EventType,
	profileID int64,
	apply func(p *domain.CandidateProfile),
	write func(ctx context.Context, userID string, p *domain.CandidateProfile) error,
) (*domain.CandidateProfile, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}

	current, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		metrics.ProfileMutations.WithLabelValues(kind, "error").Inc()
		return nil, apperror.Internal(err)
	}
	if current == nil {
		return nil, apperror.NotFound("Candidate profile not found")
	}
	// Security: IDOR prevention, the id must be the caller's own profile
	if current.ID != profileID {
		metrics.ProfileMutations.WithLabelValues(kind, "forbidden").Inc()
		u.audit.Record(ctx, audit.Entry{
			Action:    audit.ActionOwnershipViolation,
			UserID:    userID,
			ProfileID: profileID,
			Details:   map[string]interface{}{"kind": kind},
		})
		return nil, apperror.Forbidden("You can only update your own profile")
	}

	updated := *current
	apply(&updated)
	updated.IsComplete = updated.Complete()

	if err := write(ctx, userID, &updated); err != nil {
		metrics.ProfileMutations.WithLabelValues(kind, "error").Inc()
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.Internal(err)
	}
	updated.UpdatedAt = u.now()

	u.cache.Invalidate(ctx, userID)
	metrics.ProfileMutations.WithLabelValues(kind, "success").Inc()
	u.audit.Record(ctx, audit.Entry{Action: auditAction(event), UserID: userID, ProfileID: updated.ID})

	evt := &domain.ProfileEvent{EventType: event, ProfileID: updated.ID, UserID: userID, Timestamp: updated.UpdatedAt.Unix()}
	if err := u.events.PublishProfileEvent(ctx, evt); err != nil {
		// The write already happened; a lost event is logged, not returned
		logger.Log.Error("Failed to publish profile event", "event_type", event, "profile_id", updated.ID, "error", err)
	}
	return &updated, nil
}

func sessionUser(ctx context.Context) (string, error) {
	id := userFrom(ctx)
	if id == "" {
		return "", apperror.Unauthorized("User not authenticated")
	}
	return id, nil
}

func userFrom(ctx context.Context) string {
	id, _ := ctx.Value(domain.KeyUserID).(string)
	return id
}

// optional stores blank inputs as NULL.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func auditAction(e domain.EventType) audit.Action {
	switch e {
	case domain.EventProfileImageUpdated:
		return audit.ActionImageUpdated
	case domain.EventContactUpdated:
		return audit.ActionContactUpdated
	default:
		return audit.ActionProfileUpdated
	}
}

func fieldNames(fe validation.FieldErrors) []string {
	out := make([]string, 0, len(fe))
	for f := range fe {
		out = append(out, f)
	}
	return out
}
