package handlers

import (
	"strings"

	"competition-system/middleware"
	"competition-system/models"

	"github.com/gofiber/fiber/v2"
)

type participantRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// RegisterParticipant also records the partial-fee payment the registration owes.
func (h *Handler) RegisterParticipant(c *fiber.Ctx) error {
	competitionID, err := positiveQuery(c, "competition_id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req participantRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	req.Fullname = strings.TrimSpace(req.Fullname)
	req.Email = strings.TrimSpace(req.Email)
	if req.Fullname == "" || req.Email == "" {
		return middleware.BadRequest(c, "fullname and email are required")
	}
	if err := checkLength("fullname", req.Fullname, maxText); err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	if err := checkLength("email", req.Email, maxText); err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	participant, err := h.Participants.RegisterParticipant(c.UserContext(), competitionID, req.Fullname, req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(participant)
}

func (h *Handler) ListParticipants(c *fiber.Ctx) error {
	competitionID, err := positiveQuery(c, "competition_id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	participants, err := h.Participants.ListParticipants(c.UserContext(), competitionID)
	if err != nil {
		return err
	}
	return c.JSON(participants)
}

func (h *Handler) GetParticipant(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	participant, err := h.Participants.GetParticipant(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(participant)
}

func (h *Handler) DeleteParticipant(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	if err := h.Participants.DeleteParticipant(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Participant deleted"})
}

type paymentRequest struct {
	Mode string `json:"mode"`
}

func (h *Handler) RecordPayment(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	payment, err := h.Participants.RecordPayment(c.UserContext(), id, mode)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (h *Handler) ListPayments(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	payments, err := h.Participants.ListPayments(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(payments)
}
