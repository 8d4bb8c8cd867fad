package v1

import (
	"net/http"

	"jobby-backend/internal/delivery/http/response"
	"jobby-backend/internal/domain"
	"jobby-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

// NewCandidateHandler registers the current-candidate routes. writeLimit is
// applied to every write.
func NewCandidateHandler(r *gin.RouterGroup, candidateUC domain.CandidateUsecase, writeLimit gin.HandlerFunc) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	me := r.Group("/candidates/me")
	{
		me.GET("/profile", handler.GetProfile)
		me.PUT("/profile", writeLimit, handler.UpdateProfile)
		me.PUT("/profile/image", writeLimit, handler.UpdateProfileImage)
		me.PUT("/contact", writeLimit, handler.UpdateContact)
	}
}

// GetProfile godoc
// @Summary      Get candidate profile
// @Description  Get the profile of the currently logged-in candidate. data is omitted when no profile exists yet.
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CandidateProfile}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /candidates/me/profile [get]
// @Security     BearerAuth
func (h *CandidateHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	profile, err := h.candidateUC.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	if profile == nil {
		response.Success(c, http.StatusOK, "No candidate profile", nil)
		return
	}
	response.Success(c, http.StatusOK, "Candidate profile", profile)
}

// UpdateProfile godoc
// @Summary      Update candidate profile
// @Description  Replace the identity and professional fields of the caller's profile
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ProfileUpdate  true  "Profile fields"
// @Success      200      {object}  response.Response{data=domain.CandidateProfile}
// @Failure      400      {object}  response.Response{error=map[string]string}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /candidates/me/profile [put]
// @Security     BearerAuth
func (h *CandidateHandler) UpdateProfile(c *gin.Context) {
	var req domain.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile, err := h.candidateUC.UpdateProfile(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile Updated", profile)
}

// UpdateProfileImage godoc
// @Summary      Set or remove the profile image
// @Description  imageUrl null removes the image
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ImageUpdate  true  "Image URL"
// @Success      200      {object}  response.Response{data=domain.CandidateProfile}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /candidates/me/profile/image [put]
// @Security     BearerAuth
func (h *CandidateHandler) UpdateProfileImage(c *gin.Context) {
	var req domain.ImageUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile, err := h.candidateUC.UpdateProfileImage(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile Image Updated", profile)
}

// UpdateContact godoc
// @Summary      Update contact details
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ContactUpdate  true  "Address fields"
// @Success      200      {object}  response.Response{data=domain.CandidateProfile}
// @Failure      400      {object}  response.Response{error=map[string]string}
// @Failure      403      {object}  response.Response
// @Router       /candidates/me/contact [put]
// @Security     BearerAuth
func (h *CandidateHandler) UpdateContact(c *gin.Context) {
	var req domain.ContactUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	profile, err := h.candidateUC.UpdateContact(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Contact Updated", profile)
}
