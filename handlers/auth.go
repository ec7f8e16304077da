package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"competition-system/middleware"
	"competition-system/security"

	"github.com/gofiber/fiber/v2"
)

// Login exchanges form-encoded username and password for a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return middleware.BadRequest(c, "username and password are required")
	}

	user, err := h.Auth.Authenticate(c.UserContext(), username, password)
	if err != nil {
		return err
	}
	cred, err := h.Auth.IssueCredential(user)
	if err != nil {
		return err
	}
	return c.JSON(cred)
}

type createUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return middleware.BadRequest(c, "username and password are required")
	}
	if err := checkLength("username", req.Username, maxText); err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	if len(req.Password) > security.MaxPasswordBytes {
		return middleware.BadRequest(c, fmt.Sprintf("password must be at most %d bytes", security.MaxPasswordBytes))
	}

	user, err := h.Users.CreateUser(c.UserContext(), req.Username, req.Password, req.IsSuperuser)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// Health reports whether the database answers.
func (h *Handler) Health(c *fiber.Ctx) error {
	sqlDB, err := h.DB.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
