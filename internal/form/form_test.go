package form_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"jobby-backend/internal/domain"
	"jobby-backend/internal/form"
	"jobby-backend/pkg/apiclient"
	"jobby-backend/pkg/query"
	"jobby-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProfileAPI struct {
	mock.Mock
}

func (m *MockProfileAPI) CurrentProfile(ctx context.Context) (*domain.CandidateProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

func (m *MockProfileAPI) UpdateProfile(ctx context.Context, req *domain.ProfileUpdate) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockProfileAPI) UpdateProfileImage(ctx context.Context, req *domain.ImageUpdate) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockProfileAPI) UpdateContact(ctx context.Context, req *domain.ContactUpdate) error {
	return m.Called(ctx, req).Error(0)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, filename string, r io.Reader) (*domain.ImageUploadResult, error) {
	args := m.Called(ctx, filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImageUploadResult), args.Error(1)
}

type recorder struct {
	mu    sync.Mutex
	items []form.Notification
}

func (r *recorder) Notify(n form.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) titles(status form.Status) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.items {
		if n.Status == status {
			out = append(out, n.Title)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

func storedProfile() *domain.CandidateProfile {
	return &domain.CandidateProfile{
		ID:                7,
		UserID:            "user-1",
		FullName:          "Ada Lovelace",
		Email:             "ada@example.com",
		JobTitle:          nil,
		Phone:             strPtr("+441234567"),
		ExperienceInYears: nil,
		Age:               strPtr("36"),
		Skills:            []string{"go"},
		ShowInListings:    true,
		City:              strPtr("London"),
	}
}

type fixture struct {
	api      *MockProfileAPI
	uploader *MockUploader
	notes    *recorder
	client   *query.Client
	page     *form.Page
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		api:      new(MockProfileAPI),
		uploader: new(MockUploader),
		notes:    &recorder{},
		client:   query.NewClient(nil),
	}
	f.page = form.NewPage(f.client, f.api, f.uploader, f.notes, nil)
	t.Cleanup(f.page.Close)
	return f
}

func (f *fixture) invalidations() int {
	_, n := f.client.Stats(form.CurrentProfileKey)
	return n
}

func TestProfileFormSeeding(t *testing.T) {
	fx := newFixture(t)
	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()

	pf := fx.page.Profile
	assert.True(t, pf.Loading())

	require.NoError(t, fx.page.Load(context.Background()))
	fx.api.AssertNumberOfCalls(t, "CurrentProfile", 1)

	assert.Equal(t, form.StateReady, pf.State())
	v := pf.Values()
	assert.Equal(t, "", v.JobTitle, "nil optional seeds as empty string")
	assert.Equal(t, "", v.ExperienceInYears)
	assert.Equal(t, "36", v.Age)
	assert.Equal(t, "Ada Lovelace", v.FullName)
	assert.Equal(t, []string{"go"}, v.Skills)
	assert.Equal(t, domain.PlaceholderImage, pf.ImageURL())

	c := fx.page.Contact.Values()
	assert.Equal(t, "London", c.City)
	assert.Equal(t, "", c.State)
}

func TestProfileFormWithoutProfile(t *testing.T) {
	fx := newFixture(t)
	fx.api.On("CurrentProfile", mock.Anything).Return(nil, nil).Once()

	require.NoError(t, fx.page.Load(context.Background()))

	pf := fx.page.Profile
	assert.Equal(t, form.StateReady, pf.State())
	pf.SetFullName("Someone")
	assert.False(t, pf.CanSubmit())
	assert.ErrorIs(t, pf.Submit(context.Background()), form.ErrNoProfile)
}

func TestProfileFormDirtyGate(t *testing.T) {
	fx := newFixture(t)
	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()
	require.NoError(t, fx.page.Load(context.Background()))

	pf := fx.page.Profile
	assert.False(t, pf.Dirty())
	assert.False(t, pf.CanSubmit())
	assert.ErrorIs(t, pf.Submit(context.Background()), form.ErrNotDirty)

	pf.SetJobTitle("Engineer")
	assert.True(t, pf.Dirty())
	assert.True(t, pf.CanSubmit())

	pf.SetJobTitle("")
	assert.False(t, pf.CanSubmit(), "editing back to the snapshot is clean again")

	pf.SetShowInListings(false)
	assert.True(t, pf.CanSubmit())
	pf.Reset()
	assert.False(t, pf.Dirty())

	fx.api.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestProfileFormClientValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(pf *form.ProfileForm)
		field string
	}{
		{"empty full name", func(pf *form.ProfileForm) { pf.SetFullName("") }, "fullName"},
		{"whitespace-only full name", func(pf *form.ProfileForm) { pf.SetFullName("   ") }, "fullName"},
		{"invalid email", func(pf *form.ProfileForm) { pf.SetEmail("ada-at-example") }, "email"},
		{"age not a number", func(pf *form.ProfileForm) { pf.SetAge("old") }, "age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()
			require.NoError(t, fx.page.Load(context.Background()))

			pf := fx.page.Profile
			tt.edit(pf)
			err := pf.Submit(context.Background())

			var fe validation.FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.True(t, fe.Has(tt.field))
			assert.True(t, pf.Errors().Has(tt.field))
			assert.Equal(t, form.StateReady, pf.State())
			fx.api.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
			assert.Equal(t, 0, fx.invalidations())
		})
	}
}

func TestProfileFormSubmitSuccess(t *testing.T) {
	fx := newFixture(t)
	saved := storedProfile()
	saved.JobTitle = strPtr("Engineer")
	saved.IsComplete = true

	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()
	fx.api.On("CurrentProfile", mock.Anything).Return(saved, nil).Once()
	fx.api.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *domain.ProfileUpdate) bool {
		return u.ID == 7 && u.JobTitle == "Engineer" && u.FullName == "Ada Lovelace" && u.Age == "36"
	})).Return(nil).Once()

	require.NoError(t, fx.page.Load(context.Background()))
	pf := fx.page.Profile
	pf.SetJobTitle("Engineer")

	require.NoError(t, pf.Submit(context.Background()))

	fx.api.AssertExpectations(t)
	assert.Equal(t, 1, fx.invalidations(), "cache invalidated exactly once")
	assert.Equal(t, []string{"Profile Updated"}, fx.notes.titles(form.StatusSuccess))
	assert.False(t, pf.Dirty())
	assert.True(t, pf.IsComplete())
	assert.Empty(t, pf.Errors())
}

func TestProfileFormSubmitFailureKeepsEdits(t *testing.T) {
	fx := newFixture(t)
	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()
	fx.api.On("UpdateProfile", mock.Anything, mock.Anything).Return(errors.New("server returned 500")).Once()

	require.NoError(t, fx.page.Load(context.Background()))
	pf := fx.page.Profile
	pf.SetBio("Analytical engine enthusiast")

	err := pf.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, form.StateReady, pf.State())
	assert.Equal(t, "Analytical engine enthusiast", pf.Values().Bio)
	assert.True(t, pf.Dirty())
	assert.Equal(t, 0, fx.invalidations())
	assert.Equal(t, []string{"Profile update failed"}, fx.notes.titles(form.StatusError))
	assert.Empty(t, fx.notes.titles(form.StatusSuccess))
}

func TestProfileFormShowsServerFieldErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok", "data": storedProfile()})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"success":false,"message":"Validation failed","error":{"email":"Email address is already in use"}}`)
		}
	}))
	t.Cleanup(ts.Close)

	client := apiclient.New(ts.URL, "token")
	notes := &recorder{}
	page := form.NewPage(query.NewClient(nil), client, client, notes, nil)
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(context.Background()))

	pf := page.Profile
	pf.SetEmail("ada@analytical.org")
	err := pf.Submit(context.Background())

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Email address is already in use", pf.Errors()["email"])
	assert.Equal(t, form.StateReady, pf.State())
	assert.True(t, pf.Dirty())
	assert.Equal(t, []string{"Profile update failed"}, notes.titles(form.StatusError))
}

func TestLoadSeedsFromRefetchThatLandedMidLoad(t *testing.T) {
	fx := newFixture(t)
	stale := storedProfile()
	stale.FullName = "STALE"
	fresh := storedProfile()
	fresh.FullName = "FRESH"

	started := make(chan struct{})
	release := make(chan struct{})
	fx.api.On("CurrentProfile", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(stale, nil).Once()
	fx.api.On("CurrentProfile", mock.Anything).Return(fresh, nil).Once()

	done := make(chan error, 1)
	go func() { done <- fx.page.Profile.Load(context.Background()) }()

	<-started
	require.NoError(t, fx.client.Invalidate(context.Background(), form.CurrentProfileKey))
	close(release)
	require.NoError(t, <-done)

	cached, err := fx.page.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "FRESH", cached.FullName)
	assert.Equal(t, "FRESH", fx.page.Profile.Values().FullName)
	assert.False(t, fx.page.Profile.Dirty())
	fx.api.AssertExpectations(t)
}

func TestUploadImageKeepsUnrelatedEdits(t *testing.T) {
	fx := newFixture(t)
	url := "https://cdn.example.com/profile-images/user-1/a.jpg"
	withImage := storedProfile()
	withImage.Image = strPtr(url)

	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()
	fx.api.On("CurrentProfile", mock.Anything).Return(withImage, nil).Once()
	fx.uploader.On("Upload", mock.Anything, "me.png", mock.Anything).
		Return(&domain.ImageUploadResult{SecureURL: url}, nil).Once()
	fx.api.On("UpdateProfileImage", mock.Anything, mock.MatchedBy(func(u *domain.ImageUpdate) bool {
		return u.ID == 7 && u.ImageURL != nil && *u.ImageURL == url
	})).Return(nil).Once()

	require.NoError(t, fx.page.Load(context.Background()))
	pf := fx.page.Profile
	pf.SetBio("unsaved bio")
	fx.page.Contact.SetCity("Paris")

	require.NoError(t, pf.UploadImage(context.Background(), "me.png", strings.NewReader("png")))

	fx.api.AssertExpectations(t)
	fx.api.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	assert.Equal(t, url, pf.ImageURL())
	assert.Equal(t, "unsaved bio", pf.Values().Bio)
	assert.True(t, pf.Dirty())
	assert.Equal(t, "Paris", fx.page.Contact.Values().City)
	assert.True(t, fx.page.Contact.Dirty())
	assert.Equal(t, []string{"Profile Image Updated"}, fx.notes.titles(form.StatusSuccess))
	assert.Equal(t, 1, fx.invalidations())
}

func TestRemoveImageFallsBackToPlaceholder(t *testing.T) {
	fx := newFixture(t)
	withImage := storedProfile()
	withImage.Image = strPtr("https://cdn.example.com/a.jpg")

	fx.api.On("CurrentProfile", mock.Anything).Return(withImage, nil).Once()
	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()
	fx.api.On("UpdateProfileImage", mock.Anything, mock.MatchedBy(func(u *domain.ImageUpdate) bool {
		return u.ID == 7 && u.ImageURL == nil
	})).Return(nil).Once()

	require.NoError(t, fx.page.Load(context.Background()))
	pf := fx.page.Profile
	assert.Equal(t, "https://cdn.example.com/a.jpg", pf.ImageURL())

	require.NoError(t, pf.RemoveImage(context.Background()))

	fx.api.AssertExpectations(t)
	assert.Equal(t, domain.PlaceholderImage, pf.ImageURL())
	assert.False(t, pf.ImageBusy())
}

func TestUploadFailureDoesNotTouchProfile(t *testing.T) {
	fx := newFixture(t)
	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()
	fx.uploader.On("Upload", mock.Anything, "me.png", mock.Anything).Return(nil, errors.New("too large")).Once()

	require.NoError(t, fx.page.Load(context.Background()))
	err := fx.page.Profile.UploadImage(context.Background(), "me.png", strings.NewReader("x"))
	require.Error(t, err)

	fx.api.AssertNotCalled(t, "UpdateProfileImage", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"Image upload failed"}, fx.notes.titles(form.StatusError))
	assert.Equal(t, 0, fx.invalidations())
}

func TestContactFormReseedsWithProfileSubmit(t *testing.T) {
	fx := newFixture(t)
	after := storedProfile()
	after.FullName = "Augusta Ada King"
	after.Country = strPtr("UK")

	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Once()
	fx.api.On("CurrentProfile", mock.Anything).Return(after, nil).Once()
	fx.api.On("UpdateProfile", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, fx.page.Load(context.Background()))
	fx.page.Profile.SetFullName("Augusta Ada King")
	require.NoError(t, fx.page.Profile.Submit(context.Background()))

	c := fx.page.Contact.Values()
	assert.Equal(t, "UK", c.Country, "contact form reseeded from the shared refetch")
	assert.False(t, fx.page.Contact.Dirty())
}

func TestContactFormSubmit(t *testing.T) {
	fx := newFixture(t)
	fx.api.On("CurrentProfile", mock.Anything).Return(storedProfile(), nil).Twice()
	fx.api.On("UpdateContact", mock.Anything, &domain.ContactUpdate{
		ID: 7, City: "London", State: "Greater London", Country: "UK", Pincode: "",
	}).Return(nil).Once()

	require.NoError(t, fx.page.Load(context.Background()))
	cf := fx.page.Contact
	cf.SetState("Greater London")
	cf.SetCountry("UK")

	require.NoError(t, cf.Submit(context.Background()))

	fx.api.AssertExpectations(t)
	assert.Equal(t, []string{"Contact Updated"}, fx.notes.titles(form.StatusSuccess))
	assert.Equal(t, 1, fx.invalidations())
}

func TestLoadFailureReturnsToIdle(t *testing.T) {
	fx := newFixture(t)
	fx.api.On("CurrentProfile", mock.Anything).Return(nil, errors.New("connection refused"))

	err := fx.page.Profile.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, form.StateIdle, fx.page.Profile.State())
	assert.Equal(t, []string{"Could not load profile"}, fx.notes.titles(form.StatusError))
}

func TestPasswordFormIsInert(t *testing.T) {
	var pw form.PasswordForm
	assert.Equal(t, []string{"password", "confirmPassword"}, pw.Fields())
	assert.ErrorIs(t, pw.Submit(context.Background()), form.ErrPasswordChangeUnsupported)
}
