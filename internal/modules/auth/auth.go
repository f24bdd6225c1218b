package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/daily-darshan/core/internal/config"
	"github.com/daily-darshan/core/internal/middleware"
	jwtpkg "github.com/daily-darshan/core/internal/pkg/jwt"
	"github.com/daily-darshan/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

var errBadCredentials = errors.New("invalid email or password")

// Service checks the single admin credential pair held in config. There is
// no user table; account management is out of scope for this product.
type Service struct {
	admin config.AdminConfig
}

func NewService(admin config.AdminConfig) *Service {
	return &Service{admin: admin}
}

func (s *Service) Login(email, password string) (string, error) {
	if s.admin.Email == "" {
		return "", errBadCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(email), s.admin.Email) {
		return "", errBadCredentials
	}
	if s.admin.PasswordBcrypt != "" {
		if bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordBcrypt), []byte(password)) != nil {
			return "", errBadCredentials
		}
	} else if subtle.ConstantTimeCompare([]byte(s.admin.Password), []byte(password)) != 1 {
		return "", errBadCredentials
	}

	ttl := time.Duration(s.admin.SessionHours) * time.Hour
	return jwtpkg.Sign(s.admin.Email, ttl)
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")

	g.POST("/login", h.login)
	g.GET("/check", authMW, h.check)
}

// POST /auth/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := h.svc.Login(dto.Email, dto.Password)
	if err != nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, loginResponse{Token: token, Email: h.svc.admin.Email})
}

// GET /auth/check — reaching the handler means the middleware accepted the
// token
func (h *Handler) check(c *gin.Context) {
	response.OK(c, gin.H{
		"ok":    true,
		"email": middleware.CurrentAdmin(c),
	})
}
