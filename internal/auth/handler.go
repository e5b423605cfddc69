package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/peoplehub/backoffice/internal/response"
)

type Handler struct {
	Service *Service
}

func (h *Handler) RegisterHandler(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Name == "" || body.Email == "" || body.Password == "" {
		return response.ValidationError(c, map[string]string{
			"name":     "name is required",
			"email":    "email is required",
			"password": "password is required",
		})
	}
	if len(body.Password) < 8 {
		return response.ValidationError(c, map[string]string{"password": "must be at least 8 characters"})
	}

	u, err := h.Service.Register(body.Name, body.Email, body.Password)
	if err != nil {
		return response.FromError(c, err, "User")
	}

	return response.Created(c, fiber.Map{"user": u}, "Registration successful")
}

func (h *Handler) LoginHandler(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Email == "" || body.Password == "" {
		return response.ValidationError(c, map[string]string{
			"email":    "email is required",
			"password": "password is required",
		})
	}

	token, user, err := h.Service.Login(body.Email, body.Password)
	if err != nil {
		return response.Unauthorized(c, "Invalid email or password")
	}

	return response.Success(c, fiber.Map{
		"access_token": token,
		"expires_in":   900,
		"user":         user,
	}, "Login successful")
}
