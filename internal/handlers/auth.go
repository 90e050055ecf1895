package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ideamentor-dev/ideamentor/db"
	"github.com/ideamentor-dev/ideamentor/internal/models"
	"github.com/ideamentor-dev/ideamentor/internal/otp"
	"github.com/ideamentor-dev/ideamentor/internal/token"
	"github.com/ideamentor-dev/ideamentor/internal/types"
	"github.com/ideamentor-dev/ideamentor/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Firstname string `json:"firstname" binding:"required,min=3"`
	Lastname  string `json:"lastname" binding:"required,min=3"`
	Username  string `json:"username" binding:"required,min=5"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	// Username accepts either a username or an email address.
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

var errVerifiedUserMissing = errors.New("verified user missing")

type AuthHandler struct {
	tokens *token.Service
	otps   *otp.Service
}

func NewAuthHandler(tokens *token.Service, otps *otp.Service) *AuthHandler {
	return &AuthHandler{tokens: tokens, otps: otps}
}

// Signup creates an inactive account and sends the verification code. The
// email goes out first; the user row and the OTP record then commit in one
// transaction, so a delivery failure leaves no orphaned inactive user.
func (h *AuthHandler) Signup(ctx *gin.Context) {
	var req SignupRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	var existing models.User

	err := db.DB.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Email or username already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	code, err := h.otps.Generate()

	if err != nil {
		log.Printf("Failed to generate OTP: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.otps.Deliver(req.Email, code); err != nil {
		log.Printf("Failed to send verification email: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
		return
	}

	hash := string(passwordHash)
	newUser := models.User{
		Email:        req.Email,
		Username:     req.Username,
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		PasswordHash: &hash,
		IsActive:     false,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}

		return h.otps.Persist(tx, req.Email, code)
	})

	if err != nil {
		// Loser of a concurrent signup race lands here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Email or username already exists"})
			return
		}
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Email sent successfully with OTP"})
}

// ResendOTP cancels the previous code and issues a new one.
func (h *AuthHandler) ResendOTP(ctx *gin.Context) {
	var req ResendOTPRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User

	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.otps.Issue(db.DB, req.Email); err != nil {
		if errors.Is(err, otp.ErrDelivery) {
			log.Printf("Failed to resend OTP: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
			return
		}
		log.Printf("Failed to persist OTP record: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "New OTP sent successfully"})
}

// VerifyOTP consumes the code and activates the matching account. Record
// deletion and activation commit atomically.
func (h *AuthHandler) VerifyOTP(ctx *gin.Context) {
	code := ctx.Param("code")

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		email, err := h.otps.Verify(tx, code)

		if err != nil {
			return err
		}

		var user models.User

		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errVerifiedUserMissing
			}
			return err
		}

		return tx.Model(&user).Update("is_active", true).Error
	})

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"message": "Verification successful and user activated"})
	case errors.Is(err, otp.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "OTP record not found or already used"})
	case errors.Is(err, otp.ErrExpired):
		ctx.JSON(http.StatusGone, gin.H{"error": "OTP has expired"})
	case errors.Is(err, errVerifiedUserMissing):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		log.Printf("Failed to verify OTP: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Login accepts a username or an email as the identifier. Missing user,
// federated account without a password and hash mismatch all produce the
// same response, so callers cannot enumerate accounts.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	identifier := strings.TrimSpace(req.Username)

	var user models.User
	var err error

	if strings.Contains(identifier, "@") {
		err = db.DB.Where("email = ?", strings.ToLower(identifier)).First(&user).Error
	} else {
		err = db.DB.Where("username = ?", identifier).First(&user).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.PasswordHash == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.IsActive {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Account not activated"})
		return
	}

	pair, err := h.tokens.IssuePair(user.Username, user.ID)

	if err != nil {
		log.Printf("Failed to issue tokens: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (h *AuthHandler) Refresh(ctx *gin.Context) {
	var req RefreshRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pair, err := h.tokens.Refresh(req.RefreshToken)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Username:  user.Username,
			Firstname: user.Firstname,
			Lastname:  user.Lastname,
		},
	})
}
