package handlers

import (
	"fmt"
	"strings"

	"competition-system/middleware"
	"competition-system/models"
	"competition-system/services"

	"github.com/gofiber/fiber/v2"
)

type complexRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	IsQualifying *bool   `json:"is_qualifying"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
}

func (r complexRequest) patch() (services.ComplexPatch, error) {
	p := services.ComplexPatch{
		Description:  r.Description,
		IsQualifying: r.IsQualifying,
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return p, fmt.Errorf("name must not be empty")
		}
		if err := checkLength("name", name, maxText); err != nil {
			return p, err
		}
		p.Name = &name
	}
	if r.StartTime != nil {
		t, err := parseClock(*r.StartTime)
		if err != nil {
			return p, err
		}
		p.StartTime = &t
	}
	if r.EndTime != nil {
		t, err := parseClock(*r.EndTime)
		if err != nil {
			return p, err
		}
		p.EndTime = &t
	}
	return p, nil
}

func (h *Handler) CreateComplex(c *fiber.Ctx) error {
	competitionID, err := positiveQuery(c, "competition_id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req complexRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	if req.Name == nil || req.Description == nil || req.IsQualifying == nil || req.StartTime == nil || req.EndTime == nil {
		return middleware.BadRequest(c, "name, description, is_qualifying, start_time and end_time are required")
	}
	p, err := req.patch()
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	cx, err := h.Complexes.CreateComplex(c.UserContext(), competitionID, services.ComplexInput{
		Name:         *p.Name,
		Description:  *p.Description,
		IsQualifying: *p.IsQualifying,
		StartTime:    *p.StartTime,
		EndTime:      *p.EndTime,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cx)
}

func (h *Handler) ListComplexes(c *fiber.Ctx) error {
	competitionID, err := positiveQuery(c, "competition_id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	complexes, err := h.Complexes.ListComplexes(c.UserContext(), competitionID)
	if err != nil {
		return err
	}
	return c.JSON(complexes)
}

func (h *Handler) GetComplex(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	cx, err := h.Complexes.GetComplex(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(cx)
}

func (h *Handler) UpdateComplex(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req complexRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	p, err := req.patch()
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	cx, err := h.Complexes.UpdateComplex(c.UserContext(), id, p)
	if err != nil {
		return err
	}
	return c.JSON(cx)
}

func (h *Handler) DeleteComplex(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	if err := h.Complexes.DeleteComplex(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Complex deleted"})
}

// complexAndParticipant reads the complex_id and participant_id query pair.
func complexAndParticipant(c *fiber.Ctx) (int, int, error) {
	complexID, err := positiveQuery(c, "complex_id")
	if err != nil {
		return 0, 0, err
	}
	participantID, err := positiveQuery(c, "participant_id")
	if err != nil {
		return 0, 0, err
	}
	return complexID, participantID, nil
}

type videoRequest struct {
	VideoURL string `json:"video_url"`
}

func (h *Handler) RecordQualifyingVideo(c *fiber.Ctx) error {
	complexID, participantID, err := complexAndParticipant(c)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req videoRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		return middleware.BadRequest(c, "video_url is required")
	}
	if err := checkLength("video_url", req.VideoURL, maxText); err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	video, err := h.Complexes.RecordQualifyingVideo(c.UserContext(), complexID, participantID, req.VideoURL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(video)
}

// GetQualifyingVideos lists a complex's videos, or returns one when participant_id is given.
func (h *Handler) GetQualifyingVideos(c *fiber.Ctx) error {
	if c.Query("participant_id") != "" {
		complexID, participantID, err := complexAndParticipant(c)
		if err != nil {
			return middleware.BadRequest(c, err.Error())
		}
		video, err := h.Complexes.GetQualifyingVideo(c.UserContext(), complexID, participantID)
		if err != nil {
			return err
		}
		return c.JSON(video)
	}

	complexID, err := positiveQuery(c, "complex_id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	videos, err := h.Complexes.ListQualifyingVideos(c.UserContext(), complexID)
	if err != nil {
		return err
	}
	return c.JSON(videos)
}

type statusRequest struct {
	QualifierStatus string `json:"qualifier_status"`
}

func (h *Handler) SetQualifierStatus(c *fiber.Ctx) error {
	complexID, participantID, err := complexAndParticipant(c)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	status, err := models.ParseQualifierStatus(req.QualifierStatus)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	video, err := h.Complexes.SetQualifierStatus(c.UserContext(), complexID, participantID, status)
	if err != nil {
		return err
	}
	return c.JSON(video)
}

type resultRequest struct {
	View   string `json:"view"`
	Result string `json:"result"`
}

func (h *Handler) RecordResult(c *fiber.Ctx) error {
	complexID, participantID, err := complexAndParticipant(c)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req resultRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	view, err := models.ParseViewResult(req.View)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	if strings.TrimSpace(req.Result) == "" {
		return middleware.BadRequest(c, "result is required")
	}
	if err := checkLength("result", req.Result, maxText); err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	result, err := h.Complexes.RecordResult(c.UserContext(), complexID, participantID, view, req.Result)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *Handler) ListResults(c *fiber.Ctx) error {
	complexID, err := positiveQuery(c, "complex_id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	results, err := h.Complexes.ListResults(c.UserContext(), complexID)
	if err != nil {
		return err
	}
	return c.JSON(results)
}
