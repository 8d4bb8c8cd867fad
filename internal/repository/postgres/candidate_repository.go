package postgres

import (
	"context"
	"errors"
	"fmt"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type candidateRepository struct {
	db DBTX
}

func NewCandidateRepository(db DBTX) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

const candidateColumns = `
	id, user_id, full_name, job_title, phone, email, website,
	experience_in_years, age, bio, skills, show_in_listings, image, is_complete,
	city, state, country, pincode, created_at, updated_at`

func (r *candidateRepository) GetByUserID(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidate_profiles WHERE user_id = $1`

	var p domain.CandidateProfile
	var skills []string
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.JobTitle, &p.Phone, &p.Email, &p.Website,
		&p.ExperienceInYears, &p.Age, &p.Bio, pq.Array(&skills), &p.ShowInListings, &p.Image, &p.IsComplete,
		&p.City, &p.State, &p.Country, &p.Pincode, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch candidate profile: %w", err)
	}
	if skills == nil {
		skills = []string{}
	}
	p.Skills = skills
	return &p, nil
}

func (r *candidateRepository) UpdateProfile(ctx context.Context, userID string, p *domain.CandidateProfile) error {
	query := `
		UPDATE candidate_profiles SET
			full_name = $1, job_title = $2, phone = $3, email = $4, website = $5,
			experience_in_years = $6, age = $7, bio = $8, skills = $9,
			show_in_listings = $10, is_complete = $11, updated_at = NOW()
		WHERE id = $12 AND user_id = $13`

	tag, err := r.db.Exec(ctx, query,
		p.FullName, p.JobTitle, p.Phone, p.Email, p.Website,
		p.ExperienceInYears, p.Age, p.Bio, pq.Array(p.Skills),
		p.ShowInListings, p.IsComplete, p.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return expectOne(tag)
}

func (r *candidateRepository) UpdateImage(ctx context.Context, userID string, profileID int64, imageURL *string) error {
	query := `UPDATE candidate_profiles SET image = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`

	tag, err := r.db.Exec(ctx, query, imageURL, profileID, userID)
	if err != nil {
		return fmt.Errorf("failed to update profile image: %w", err)
	}
	return expectOne(tag)
}

func (r *candidateRepository) UpdateContact(ctx context.Context, userID string, p *domain.CandidateProfile) error {
	query := `
		UPDATE candidate_profiles SET
			city = $1, state = $2, country = $3, pincode = $4,
			is_complete = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7`

	tag, err := r.db.Exec(ctx, query, p.City, p.State, p.Country, p.Pincode, p.IsComplete, p.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return expectOne(tag)
}

// expectOne turns a write that matched no row into a 404. Rows are always
// matched on both id and owner, so a foreign id never updates anything.
func expectOne(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Candidate profile not found")
	}
	return nil
}
