package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberbook/internal/config"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/middleware"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/validators"
)

const tokenTTL = 24 * time.Hour

var errRegistrationClosed = errors.New("registration closed")

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config

	// checkEmail is swapped in tests to avoid DNS lookups.
	checkEmail func(context.Context, string) bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg, checkEmail: validators.IsEmailDomainValid}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

// Register opens the shop: it only succeeds while no account exists, and
// that first account is the owner. Later accounts go through CreateUser.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := h.createUser(c, req, models.RoleOwner, true)
	if !ok {
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not register.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type CreateUserRequest struct {
	RegisterRequest
	Role string `json:"role"`
}

// CreateUser adds an account on behalf of an owner. Role defaults to staff.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	if role != models.RoleStaff && role != models.RoleOwner {
		httperr.BadRequest(c, "invalid_role", "Role must be owner or staff.")
		return
	}

	user, ok := h.createUser(c, req.RegisterRequest, role, false)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// createUser writes the error response itself and reports whether it did
// not. With firstOnly it refuses once any account exists.
func (h *AuthHandler) createUser(c *gin.Context, req RegisterRequest, role string, firstOnly bool) (*models.User, bool) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !h.checkEmail(c.Request.Context(), email) {
		httperr.BadRequest(c, "invalid_email_domain", "The e-mail domain does not look valid.")
		return nil, false
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not register.")
		return nil, false
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if firstOnly {
			// dois registros simultâneos não podem virar dois donos
			if tx.Dialector.Name() == "postgres" {
				if err := tx.Exec("LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE").Error; err != nil {
					return err
				}
			}
			var count int64
			if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errRegistrationClosed
			}
		}
		return tx.Create(&user).Error
	})

	switch {
	case err == nil:
		return &user, true
	case errors.Is(err, errRegistrationClosed):
		httperr.Write(c, http.StatusForbidden, "registration_closed", "Ask the shop owner to create your account.")
	case httperr.IsUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey):
		httperr.Write(c, http.StatusConflict, "email_already_registered", "E-mail already registered.")
	default:
		httperr.Internal(c, "failed_to_create_user", "Could not register.")
	}
	return nil, false
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid credentials.")
			return
		}
		httperr.Internal(c, "internal_error", "Unexpected error.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid credentials.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not log in.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		httperr.Unauthorized(c, "user_not_in_context", "Not authenticated.")
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", *userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
