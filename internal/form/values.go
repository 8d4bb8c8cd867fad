package form

import (
	"slices"

	"jobby-backend/internal/domain"
)

// ProfileValues is the editable state of the profile form. Every text field
// is a plain string so inputs never hold nil.
type ProfileValues struct {
	FullName          string
	JobTitle          string
	Phone             string
	Email             string
	Website           string
	ExperienceInYears string
	Age               string
	Skills            []string
	Bio               string
	ShowInListings    bool
}

// ContactValues is the editable state of the contact form.
type ContactValues struct {
	City    string
	State   string
	Country string
	Pincode string
}

// ProfileValuesFrom maps the entity to editable state, turning absent
// optional values into empty strings.
func ProfileValuesFrom(p *domain.CandidateProfile) ProfileValues {
	if p == nil {
		return ProfileValues{}
	}
	return ProfileValues{
		FullName:          p.FullName,
		JobTitle:          orEmpty(p.JobTitle),
		Phone:             orEmpty(p.Phone),
		Email:             p.Email,
		Website:           orEmpty(p.Website),
		ExperienceInYears: orEmpty(p.ExperienceInYears),
		Age:               orEmpty(p.Age),
		Skills:            slices.Clone(p.Skills),
		Bio:               orEmpty(p.Bio),
		ShowInListings:    p.ShowInListings,
	}
}

// ContactValuesFrom maps the entity's address fields to editable state.
func ContactValuesFrom(p *domain.CandidateProfile) ContactValues {
	if p == nil {
		return ContactValues{}
	}
	return ContactValues{
		City:    orEmpty(p.City),
		State:   orEmpty(p.State),
		Country: orEmpty(p.Country),
		Pincode: orEmpty(p.Pincode),
	}
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (v ProfileValues) Update(id int64) *domain.ProfileUpdate {
	skills := v.Skills
	if skills == nil {
		skills = []string{}
	}
	return &domain.ProfileUpdate{
		ID:                id,
		FullName:          v.FullName,
		JobTitle:          v.JobTitle,
		Phone:             v.Phone,
		Email:             v.Email,
		Website:           v.Website,
		ExperienceInYears: v.ExperienceInYears,
		Age:               v.Age,
		Skills:            slices.Clone(skills),
		Bio:               v.Bio,
		ShowInListings:    v.ShowInListings,
	}
}

func (v ContactValues) Update(id int64) *domain.ContactUpdate {
	return &domain.ContactUpdate{
		ID:      id,
		City:    v.City,
		State:   v.State,
		Country: v.Country,
		Pincode: v.Pincode,
	}
}

func (v ProfileValues) Equal(o ProfileValues) bool {
	return v.FullName == o.FullName &&
		v.JobTitle == o.JobTitle &&
		v.Phone == o.Phone &&
		v.Email == o.Email &&
		v.Website == o.Website &&
		v.ExperienceInYears == o.ExperienceInYears &&
		v.Age == o.Age &&
		slices.Equal(v.Skills, o.Skills) &&
		v.Bio == o.Bio &&
		v.ShowInListings == o.ShowInListings
}

func (v ProfileValues) Clone() ProfileValues {
	v.Skills = slices.Clone(v.Skills)
	return v
}

func (v ContactValues) Clone() ContactValues {
	return v
}

func (v ContactValues) Equal(o ContactValues) bool {
	return v == o
}

// Rebase moves edits made on top of old onto fresh: fields the user changed
// keep their value, untouched fields take the fresh one.
func (v ProfileValues) Rebase(old, fresh ProfileValues) ProfileValues {
	out := fresh
	keep(&out.FullName, v.FullName, old.FullName)
	keep(&out.JobTitle, v.JobTitle, old.JobTitle)
	keep(&out.Phone, v.Phone, old.Phone)
	keep(&out.Email, v.Email, old.Email)
	keep(&out.Website, v.Website, old.Website)
	keep(&out.ExperienceInYears, v.ExperienceInYears, old.ExperienceInYears)
	keep(&out.Age, v.Age, old.Age)
	keep(&out.Bio, v.Bio, old.Bio)
	keep(&out.ShowInListings, v.ShowInListings, old.ShowInListings)
	if !slices.Equal(v.Skills, old.Skills) {
		out.Skills = slices.Clone(v.Skills)
	}
	return out
}

func (v ContactValues) Rebase(old, fresh ContactValues) ContactValues {
	out := fresh
	keep(&out.City, v.City, old.City)
	keep(&out.State, v.State, old.State)
	keep(&out.Country, v.Country, old.Country)
	keep(&out.Pincode, v.Pincode, old.Pincode)
	return out
}

func keep[T comparable](dst *T, edited, old T) {
	if edited != old {
		*dst = edited
	}
}
