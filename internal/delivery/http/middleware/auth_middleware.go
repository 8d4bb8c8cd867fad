package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"jobby-backend/config"
	"jobby-backend/internal/delivery/http/response"
	"jobby-backend/internal/domain"
	"jobby-backend/pkg/auth"
	"jobby-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errNoToken = errors.New("no session token")

// AuthMiddleware rejects requests without a valid session with 401.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, jwksProvider, cfg, authUC)
		if err != nil {
			if errors.Is(err, errNoToken) {
				response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			} else {
				logger.Log.Debug("Token validation failed", "error", err)
				response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			}
			c.Abort()
			return
		}
		bindUser(c, user)
		c.Next()
	}
}

// SessionGate guards server-rendered pages. Visitors without a session are
// sent to sign in; employers are sent to their own profile page.
func SessionGate(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase, signInPath, employerPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, jwksProvider, cfg, authUC)
		if err != nil {
			c.Redirect(http.StatusFound, signInPath)
			c.Abort()
			return
		}
		if user.Role == domain.RoleEmployer {
			c.Redirect(http.StatusFound, employerPath)
			c.Abort()
			return
		}
		bindUser(c, user)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
		c.Abort()
	}
}

func authenticate(c *gin.Context, jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) (*domain.User, error) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			// HS256 - Use Secret
			if cfg.JWTSecret == "" {
				return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
			}
			return []byte(cfg.JWTSecret), nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			// RS256 - Use JWKS
			if jwksProvider == nil {
				return nil, fmt.Errorf("RS256 token received but AUTH_URL is not configured")
			}
			return jwksProvider.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token has no subject")
	}

	// The role comes from our own users table, not the token
	user, err := authUC.GetCurrentUser(c.Request.Context(), sub)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", sub, err)
	}
	if user.Role == "" {
		user.Role = domain.RoleCandidate
	}
	if user.Email == "" {
		user.Email, _ = claims["email"].(string)
	}
	return user, nil
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// bindUser exposes the session on both the gin context and the request
// context so usecases can read it through context.Context.
func bindUser(c *gin.Context, user *domain.User) {
	c.Set(string(domain.KeyUserID), user.ID)
	c.Set(string(domain.KeyUserEmail), user.Email)
	c.Set(string(domain.KeyUserRole), user.Role)

	ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, user.ID)
	ctx = context.WithValue(ctx, domain.KeyUserEmail, user.Email)
	ctx = context.WithValue(ctx, domain.KeyUserRole, user.Role)
	c.Request = c.Request.WithContext(ctx)
}
