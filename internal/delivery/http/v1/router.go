package v1

import (
	"net/http"

	"jobby-backend/config"
	"jobby-backend/internal/delivery/http/middleware"
	"jobby-backend/internal/delivery/http/response"
	"jobby-backend/internal/delivery/http/web"
	"jobby-backend/internal/domain"
	"jobby-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	signInPath       = "/sign-in"
	employerHomePath = "/profile/employer"
	// multipart framing on top of the image itself
	pageBodyOverhead = 1 << 20
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	CandidateUC  domain.CandidateUsecase
	UploadUC     domain.UploadUsecase
	HealthUC     domain.HealthUsecase
	JWKSProvider *auth.Provider
	RateLimiter  *middleware.RateLimiter
	Config       *config.Config
	// ImageHost is the public origin of profile images, allowed by the CSP
	ImageHost string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL))
	r.Use(middleware.SecurityHeadersMiddleware(deps.ImageHost, deps.Config.SecureCookies))
	r.Use(gin.Logger())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	writeLimit := func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		writeLimit = deps.RateLimiter.Handler(middleware.ProfileWriteRateLimit())
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.AuthUC))
	protected.Use(middleware.RequireRole(domain.RoleCandidate))
	{
		NewCandidateHandler(protected, deps.CandidateUC, writeLimit)
		NewUploadHandler(protected, deps.UploadUC, deps.Config.UploadMaxBytes)
	}

	// Server-rendered profile page
	pages := r.Group("")
	pages.Use(middleware.SessionGate(deps.JWKSProvider, deps.Config, deps.AuthUC, signInPath, employerHomePath))
	pages.Use(middleware.CSRFMiddleware(deps.Config.SecureCookies))
	pages.Use(middleware.BodyLimit(deps.Config.UploadMaxBytes + pageBodyOverhead))
	{
		web.NewPageHandler(pages, deps.CandidateUC, deps.UploadUC, deps.Config.UploadMaxBytes, writeLimit)
	}

	return r
}
