package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"jobby-backend/internal/delivery/http/middleware"
	"jobby-backend/internal/domain"
	"jobby-backend/internal/form"
	"jobby-backend/internal/usecase"
	"jobby-backend/pkg/logger"
	"jobby-backend/pkg/query"
	"jobby-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var profileTemplate = template.Must(template.New("profile.html").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFS, "templates/profile.html"))

// PageHandler renders the candidate profile page and accepts its form posts.
// Every request builds the page's forms over one shared query, so a save
// reseeds both forms before the response is rendered.
type PageHandler struct {
	candidateUC domain.CandidateUsecase
	uploadUC    domain.UploadUsecase
	maxUpload   int64
}

// NewPageHandler mounts the profile page. writeLimit guards every POST and
// should share its bucket with the API's profile writes.
func NewPageHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase, uploadUC domain.UploadUsecase, maxUpload int64, writeLimit gin.HandlerFunc) {
	h := &PageHandler{candidateUC: candidateUC, uploadUC: uploadUC, maxUpload: maxUpload}

	r.GET("/profile", h.Show)
	r.POST("/profile/details", writeLimit, h.SaveProfile)
	r.POST("/profile/contact", writeLimit, h.SaveContact)
	r.POST("/profile/image", writeLimit, h.UploadImage)
	r.POST("/profile/image/remove", writeLimit, h.RemoveImage)
}

type pageView struct {
	CSRFField      string
	CSRFToken      string
	Loaded         bool
	HasProfile     bool
	IsComplete     bool
	CompleteHint   string
	ImageURL       string
	HasImage       bool
	Profile        form.ProfileValues
	Contact        form.ContactValues
	ProfileErrors  validation.FieldErrors
	ContactErrors  validation.FieldErrors
	Toasts         []form.Notification
	PasswordFields []string
	UploadMaxMB    int64
}

func (h *PageHandler) open(c *gin.Context) (*form.Page, *form.Collector, error) {
	userID := c.GetString(string(domain.KeyUserID))
	toasts := &form.Collector{}
	page := form.NewPage(
		query.NewClient(logger.Log),
		usecaseAPI{uc: h.candidateUC, userID: userID},
		usecaseUploader{uc: h.uploadUC, userID: userID, maxBytes: h.maxUpload},
		toasts,
		logger.Log,
	)
	err := page.Load(c.Request.Context())
	return page, toasts, err
}

func (h *PageHandler) Show(c *gin.Context) {
	page, toasts, err := h.open(c)
	defer page.Close()
	if err != nil {
		h.render(c, http.StatusBadGateway, page, toasts)
		return
	}
	h.render(c, http.StatusOK, page, toasts)
}

func (h *PageHandler) SaveProfile(c *gin.Context) {
	page, toasts, err := h.open(c)
	defer page.Close()
	if err != nil {
		h.render(c, http.StatusBadGateway, page, toasts)
		return
	}

	page.Profile.Update(func(v *form.ProfileValues) {
		v.FullName = c.PostForm("fullName")
		v.JobTitle = c.PostForm("jobTitle")
		v.Phone = c.PostForm("phone")
		v.Email = c.PostForm("email")
		v.Website = c.PostForm("website")
		v.ExperienceInYears = c.PostForm("experienceInYears")
		v.Age = c.PostForm("age")
		v.Bio = c.PostForm("bio")
		v.ShowInListings = c.PostForm("showInListings") != ""
	})
	page.Profile.SetSkills(splitTags(c.PostForm("skills")))

	h.render(c, statusFor(page.Profile.Submit(c.Request.Context())), page, toasts)
}

func (h *PageHandler) SaveContact(c *gin.Context) {
	page, toasts, err := h.open(c)
	defer page.Close()
	if err != nil {
		h.render(c, http.StatusBadGateway, page, toasts)
		return
	}

	page.Contact.SetCity(c.PostForm("city"))
	page.Contact.SetState(c.PostForm("state"))
	page.Contact.SetCountry(c.PostForm("country"))
	page.Contact.SetPincode(c.PostForm("pincode"))

	h.render(c, statusFor(page.Contact.Submit(c.Request.Context())), page, toasts)
}

func (h *PageHandler) UploadImage(c *gin.Context) {
	page, toasts, err := h.open(c)
	defer page.Close()
	if err != nil {
		h.render(c, http.StatusBadGateway, page, toasts)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		toasts.Notify(form.Notification{Title: "Image upload failed", Description: "Choose an image first", Status: form.StatusError, Duration: form.ToastDuration, Closable: true})
		h.render(c, http.StatusBadRequest, page, toasts)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.render(c, http.StatusBadRequest, page, toasts)
		return
	}
	defer file.Close()

	ctx := usecase.WithClientIP(c.Request.Context(), c.ClientIP())
	h.render(c, statusFor(page.Profile.UploadImage(ctx, fileHeader.Filename, file)), page, toasts)
}

func (h *PageHandler) RemoveImage(c *gin.Context) {
	page, toasts, err := h.open(c)
	defer page.Close()
	if err != nil {
		h.render(c, http.StatusBadGateway, page, toasts)
		return
	}
	h.render(c, statusFor(page.Profile.RemoveImage(c.Request.Context())), page, toasts)
}

func (h *PageHandler) render(c *gin.Context, status int, page *form.Page, toasts *form.Collector) {
	view := pageView{
		CSRFField:      middleware.CSRFTokenFieldName,
		CSRFToken:      c.GetString(middleware.CSRFContextKey),
		Loaded:         !page.Profile.Loading(),
		HasProfile:     page.Profile.ProfileID() != 0,
		IsComplete:     page.Profile.IsComplete(),
		CompleteHint:   domain.ProfileCompleteHint,
		ImageURL:       page.Profile.ImageURL(),
		HasImage:       page.Profile.ImageURL() != domain.PlaceholderImage,
		Profile:        page.Profile.Values(),
		Contact:        page.Contact.Values(),
		ProfileErrors:  page.Profile.Errors(),
		ContactErrors:  page.Contact.Errors(),
		Toasts:         toasts.All(),
		PasswordFields: page.Password.Fields(),
		UploadMaxMB:    h.maxUpload >> 20,
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := profileTemplate.Execute(c.Writer, view); err != nil {
		logger.Log.Error("Failed to render profile page", "error", err)
	}
}

// statusFor maps a form outcome to the response code of the re-rendered page.
func statusFor(err error) int {
	var fe validation.FieldErrors
	switch {
	case err == nil, errors.Is(err, form.ErrNotDirty):
		return http.StatusOK
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, form.ErrNoProfile):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
