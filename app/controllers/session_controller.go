package controllers

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/config"
	"github.com/shashiranjanraj/mandi/pkg/auth"
	"github.com/shashiranjanraj/mandi/pkg/response"
)

type SessionController struct {
	sessions *services.SessionService
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

// Login issues a token pair for the supplied identity. There is no user
// database; the caller asserts who they are and the token records it.
// The admin role is only granted to emails listed in ADMIN_EMAILS.
func (c *SessionController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Email == "" {
		response.Error(w, http.StatusUnprocessableEntity, "email is required")
		return
	}
	role := models.RoleUser
	for _, admin := range config.AdminEmails() {
		if strings.EqualFold(body.Email, admin) {
			role = models.RoleAdmin
			break
		}
	}
	if body.ID == "" {
		body.ID = body.Email
	}

	user := &models.User{ID: body.ID, Name: body.Name, Email: body.Email, Role: role}

	token, err := auth.GenerateToken(user)
	if err != nil {
		fail(w, r, err)
		return
	}
	refresh, err := auth.GenerateRefreshToken(user)
	if err != nil {
		fail(w, r, err)
		return
	}

	response.Success(w, map[string]string{
		"token":   token,
		"refresh": refresh,
	})
}

// Logout wipes the cart, orders and notifications and broadcasts the
// teardown so open streams reset.
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.sessions.Logout(); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"status": "logged out"})
}
