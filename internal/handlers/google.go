package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ideamentor-dev/ideamentor/db"
	"github.com/ideamentor-dev/ideamentor/internal/config"
	"github.com/ideamentor-dev/ideamentor/internal/models"
	"github.com/ideamentor-dev/ideamentor/internal/token"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const oauthStateCookie = "oauthstate"

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo?alt=json"

type googleProfile struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// GoogleHandler runs the authorization-code flow. The core only consumes
// the verified profile triple; federated users are created Active and
// never go through OTP verification.
type GoogleHandler struct {
	oauth  *oauth2.Config
	tokens *token.Service
}

func NewGoogleHandler(cfg *config.Config, tokens *token.Service) *GoogleHandler {
	return &GoogleHandler{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		tokens: tokens,
	}
}

func (h *GoogleHandler) Login(ctx *gin.Context) {
	buf := make([]byte, 16)

	if _, err := rand.Read(buf); err != nil {
		log.Printf("Failed to generate OAuth state: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	state := hex.EncodeToString(buf)

	ctx.SetCookie(oauthStateCookie, state, 600, "/", "", true, true)
	ctx.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

func (h *GoogleHandler) Callback(ctx *gin.Context) {
	state, err := ctx.Cookie(oauthStateCookie)

	if err != nil || state == "" || ctx.Query("state") != state {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OAuth state"})
		return
	}

	oauthToken, err := h.oauth.Exchange(ctx, ctx.Query("code"))

	if err != nil {
		log.Printf("Failed to exchange OAuth code: %v", err)
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Google authentication failed"})
		return
	}

	resp, err := h.oauth.Client(ctx, oauthToken).Get(googleUserInfoURL)

	if err != nil {
		log.Printf("Failed to fetch Google profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer resp.Body.Close()

	var profile googleProfile

	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.Email == "" {
		log.Printf("Failed to decode Google profile: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user, err := getOrCreateGoogleUser(profile.Email, profile.GivenName, profile.FamilyName)

	if err != nil {
		log.Printf("Failed to provision federated user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
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

// getOrCreateGoogleUser looks a user up by verified email; absent users
// are created Active with no local password. Existing users only get
// their name fields refreshed, never a change to IsActive.
func getOrCreateGoogleUser(email, firstName, lastName string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User

	err := db.DB.Where("email = ?", email).First(&user).Error

	if err == nil {
		if err := db.DB.Model(&user).Updates(map[string]interface{}{
			"firstname": firstName,
			"lastname":  lastName,
		}).Error; err != nil {
			return models.User{}, err
		}
		return user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	username, err := synthesizeUsername(email, firstName)

	if err != nil {
		return models.User{}, err
	}

	user = models.User{
		Email:     email,
		Username:  username,
		Firstname: firstName,
		Lastname:  lastName,
		IsActive:  true,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

// synthesizeUsername derives a username from the email local-part and the
// first name, retrying with a numeric suffix until it is unique.
func synthesizeUsername(email, firstName string) (string, error) {
	base := strings.Split(email, "@")[0]

	if firstName != "" {
		base = fmt.Sprintf("%s_%s", base, strings.ToLower(firstName))
	}

	for i := 0; i < 10; i++ {
		candidate := base

		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}

		var count int64

		if err := db.DB.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}

		if count == 0 {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("could not derive a unique username for %s", email)
}
