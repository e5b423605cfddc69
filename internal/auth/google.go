package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/events"
	"github.com/peoplehub/backoffice/internal/models"
	"github.com/peoplehub/backoffice/internal/response"
	"github.com/peoplehub/backoffice/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func googleOauthConfig() *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

var (
	stateStore = make(map[string]time.Time)
	stateMutex sync.Mutex
)

func generateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func storeState(state string) {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	stateStore[state] = time.Now().Add(5 * time.Minute)

	for k, v := range stateStore {
		if time.Now().After(v) {
			delete(stateStore, k)
		}
	}
}

func validateState(state string) bool {
	stateMutex.Lock()
	defer stateMutex.Unlock()

	expiry, exists := stateStore[state]
	if !exists || time.Now().After(expiry) {
		return false
	}
	delete(stateStore, state)
	return true
}

func (h *Handler) GoogleLoginHandler(c *fiber.Ctx) error {
	state := generateState()
	storeState(state)
	return c.Redirect(googleOauthConfig().AuthCodeURL(state))
}

// GoogleCallbackHandler provisions first-time Google users with the default
// role, same as local registration.
func (h *Handler) GoogleCallbackHandler(c *fiber.Ctx) error {
	if !validateState(c.Query("state")) {
		return response.BadRequest(c, "Invalid state parameter", nil)
	}

	cfg := googleOauthConfig()
	token, err := cfg.Exchange(context.Background(), c.Query("code"))
	if err != nil {
		return response.Unauthorized(c, "Failed to exchange authorization code")
	}

	client := cfg.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return response.InternalError(c, "Failed to fetch user info")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response.InternalError(c, "Failed to read user info")
	}

	var userData struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &userData); err != nil || userData.Email == "" {
		return response.InternalError(c, "Malformed user info")
	}

	var u models.User
	err = h.Service.DB.Where("email = ?", userData.Email).First(&u).Error
	if err != nil {
		u = models.User{
			Name:     userData.Name,
			Email:    userData.Email,
			Provider: "google",
			IsActive: true,
			Role:     models.DefaultRoleKey,
		}
		if err := h.Service.DB.Create(&u).Error; err != nil {
			return response.InternalError(c, "Failed to create user")
		}
		h.Service.Bus.Publish(events.ChangeEvent{Collection: events.CollectionUsers, DocID: u.ID, After: &u})
	}

	if !u.IsActive {
		return response.Unauthorized(c, "Account is deactivated")
	}

	accessToken, err := utils.GenerateJWT(u.ID, u.Role)
	if err != nil {
		return response.InternalError(c, "Failed to issue token")
	}

	return response.Success(c, fiber.Map{
		"access_token": accessToken,
		"expires_in":   900,
		"user":         u,
	}, "Login successful")
}
