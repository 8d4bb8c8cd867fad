package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/apperror"
	"jobby-backend/pkg/audit"
	"jobby-backend/pkg/imaging"
	"jobby-backend/pkg/logger"
	"jobby-backend/pkg/metrics"
	"jobby-backend/pkg/security"
	"jobby-backend/pkg/security/antivirus"

	"github.com/google/uuid"
)

// UploadOptions bounds accepted images.
type UploadOptions struct {
	MaxBytes     int64
	MaxDimension int
	Quality      int
	// Scanner is optional; when set, a scan failure rejects the upload
	Scanner antivirus.Scanner
}

type uploadUsecase struct {
	store   domain.ImageStore
	limiter domain.UploadLimiter
	audit   *audit.Logger
	opts    UploadOptions
	newID   func() string
}

func NewUploadUsecase(store domain.ImageStore, limiter domain.UploadLimiter, auditLog *audit.Logger, opts UploadOptions) domain.UploadUsecase {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 << 20
	}
	return &uploadUsecase{
		store:   store,
		limiter: limiter,
		audit:   auditLog,
		opts:    opts,
		newID:   uuid.NewString,
	}
}

// UploadProfileImage validates, shrinks and stores an image under
// profile-images/<user>/<uuid>.jpg.
func (u *uploadUsecase) UploadProfileImage(ctx context.Context, userID, filename string, data []byte) (*domain.ImageUploadResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	ip, _ := ctx.Value(ctxKeyClientIP).(string)
	allowed, retryAfter, err := u.limiter.AllowUpload(ctx, ip, userID)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		logger.Log.Error("Upload rate limiter failed", "error", err)
		return nil, apperror.New(http.StatusServiceUnavailable, "Uploads are temporarily unavailable. Please try again.", err)
	}
	if !allowed {
		metrics.ImageUploads.WithLabelValues("limited").Inc()
		u.audit.Record(ctx, audit.Entry{Action: audit.ActionRateLimited, UserID: userID, IP: ip,
			Details: map[string]interface{}{"scope": "upload", "retry_after": retryAfter}})
		return nil, apperror.TooManyRequests(fmt.Sprintf("Upload limit reached. Try again in %d seconds.", retryAfter))
	}

	if int64(len(data)) > u.opts.MaxBytes {
		return nil, u.reject(ctx, userID, filename, fmt.Sprintf("Image must be at most %d MB", u.opts.MaxBytes>>20))
	}
	if _, err := security.ValidateImage(filename, data); err != nil {
		msg := "Only JPG, PNG, GIF or WebP images are allowed"
		if errors.Is(err, security.ErrContentMismatch) {
			msg = "File content does not match its extension"
		}
		return nil, u.reject(ctx, userID, filename, msg)
	}

	if u.opts.Scanner != nil {
		if err := u.opts.Scanner.Scan(ctx, data); err != nil {
			if errors.Is(err, antivirus.ErrInfected) {
				logger.Log.Warn("Infected upload rejected", "scanner", u.opts.Scanner.Name(), "error", err)
				return nil, u.reject(ctx, userID, filename, "File failed the malware scan")
			}
			metrics.ImageUploads.WithLabelValues("error").Inc()
			logger.Log.Error("Malware scan failed", "scanner", u.opts.Scanner.Name(), "error", err)
			return nil, apperror.New(http.StatusServiceUnavailable, "Uploads are temporarily unavailable. Please try again.", err)
		}
	}

	compressed, err := imaging.Compress(data, u.opts.MaxDimension, u.opts.Quality)
	if err != nil {
		if errors.Is(err, imaging.ErrTooManyPixels) {
			return nil, u.reject(ctx, userID, filename, "Image dimensions are too large")
		}
		return nil, u.reject(ctx, userID, filename, "Image could not be read")
	}

	key := fmt.Sprintf("profile-images/%s/%s.jpg", safeSegment(userID), u.newID())
	url, err := u.store.Put(ctx, key, "image/jpeg", compressed)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		return nil, apperror.Internal(err)
	}

	metrics.ImageUploads.WithLabelValues("success").Inc()
	metrics.ImageUploadBytes.Observe(float64(len(compressed)))
	u.audit.Record(ctx, audit.Entry{Action: audit.ActionImageUploaded, UserID: userID, IP: ip,
		Details: map[string]interface{}{"bytes": len(compressed)}})

	return &domain.ImageUploadResult{SecureURL: url}, nil
}

func (u *uploadUsecase) reject(ctx context.Context, userID, filename, msg string) error {
	metrics.ImageUploads.WithLabelValues("rejected").Inc()
	u.audit.Record(ctx, audit.Entry{Action: audit.ActionUploadRejected, UserID: userID,
		Details: map[string]interface{}{"filename": filename, "reason": msg}})
	return apperror.BadRequest(msg)
}

// safeSegment keeps object keys free of path separators.
func safeSegment(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
}

type ctxKey string

const ctxKeyClientIP ctxKey = "clientIP"

// WithClientIP attaches the caller address used for per-IP upload limits.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}
