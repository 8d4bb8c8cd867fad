package v1

import (
	"io"
	"net/http"

	"jobby-backend/internal/delivery/http/response"
	"jobby-backend/internal/domain"
	"jobby-backend/internal/usecase"
	"jobby-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadUC domain.UploadUsecase
	maxBytes int64
}

func NewUploadHandler(r *gin.RouterGroup, uploadUC domain.UploadUsecase, maxBytes int64) {
	handler := &UploadHandler{uploadUC: uploadUC, maxBytes: maxBytes}
	r.POST("/uploads/images", handler.UploadImage)
}

// UploadImage godoc
// @Summary      Upload a profile image
// @Description  Accepts JPG, PNG, GIF or WebP. The image is resized and stored; the response carries its public URL.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image file"
// @Success      200   {object}  response.Response{data=domain.ImageUploadResult}
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /uploads/images [post]
// @Security     BearerAuth
func (h *UploadHandler) UploadImage(c *gin.Context) {
	// Allow a little headroom for the multipart envelope
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("No file uploaded. Use form field 'file'"))
		return
	}
	if fileHeader.Size > h.maxBytes {
		c.Error(apperror.New(http.StatusRequestEntityTooLarge, "Image is too large", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		c.Error(apperror.BadRequest("Failed to read file"))
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	ctx := usecase.WithClientIP(c.Request.Context(), c.ClientIP())
	result, err := h.uploadUC.UploadProfileImage(ctx, userID, fileHeader.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Image uploaded", result)
}
