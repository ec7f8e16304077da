package handlers

import (
	"fmt"
	"strings"

	"competition-system/middleware"
	"competition-system/models"
	"competition-system/services"

	"github.com/gofiber/fiber/v2"
)

type competitionRequest struct {
	Name        *string `json:"name"`
	Date        *string `json:"date"`
	Description *string `json:"description"`
}

func (r competitionRequest) patch() (services.CompetitionPatch, error) {
	var p services.CompetitionPatch
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
	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return p, err
		}
		p.Date = &date
	}
	p.Description = r.Description
	return p, nil
}

func (h *Handler) CreateCompetition(c *fiber.Ctx) error {
	var req competitionRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	if req.Name == nil || req.Date == nil {
		return middleware.BadRequest(c, "name and date are required")
	}
	p, err := req.patch()
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	competition, err := h.Competitions.CreateCompetition(c.UserContext(), services.CompetitionInput{
		Name:        *p.Name,
		Date:        *p.Date,
		Description: p.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(competition)
}

func (h *Handler) ListCompetitions(c *fiber.Ctx) error {
	competitions, err := h.Competitions.ListCompetitions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(competitions)
}

func (h *Handler) GetCompetition(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	competition, err := h.Competitions.GetCompetition(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(competition)
}

func (h *Handler) UpdateCompetition(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req competitionRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	p, err := req.patch()
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	competition, err := h.Competitions.UpdateCompetition(c.UserContext(), id, p)
	if err != nil {
		return err
	}
	return c.JSON(competition)
}

func (h *Handler) DeleteCompetition(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	if err := h.Competitions.DeleteCompetition(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Competition deleted %d", id)})
}

// ExportCompetition streams the roster workbook.
func (h *Handler) ExportCompetition(c *fiber.Ctx) error {
	id, err := positiveParam(c, "id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	roster, err := h.Rosters.Build(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(fmt.Sprintf("roster-%d.xlsx", id))
	return c.Send(roster.Workbook)
}

type contributionRequest struct {
	Mode  string   `json:"mode"`
	Price *float64 `json:"price"`
}

func contributionKey(c *fiber.Ctx) (models.ContributionKey, error) {
	competitionID, err := positiveQuery(c, "competition_id")
	if err != nil {
		return models.ContributionKey{}, err
	}
	mode, err := models.ParseMode(c.Query("contribution_mode"))
	if err != nil {
		return models.ContributionKey{}, err
	}
	return models.ContributionKey{CompetitionID: competitionID, Mode: mode}, nil
}

func (h *Handler) CreateContribution(c *fiber.Ctx) error {
	competitionID, err := positiveQuery(c, "competition_id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req contributionRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	if req.Price == nil {
		return middleware.BadRequest(c, "price is required")
	}
	if err := checkPrice(*req.Price); err != nil {
		return middleware.BadRequest(c, err.Error())
	}

	key := models.ContributionKey{CompetitionID: competitionID, Mode: mode}
	contribution, err := h.Competitions.CreateContribution(c.UserContext(), key, *req.Price)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(contribution)
}

// GetContributions lists a competition's tiers, or returns one when contribution_mode is
// given. A competition without tiers is a 404.
func (h *Handler) GetContributions(c *fiber.Ctx) error {
	if c.Query("contribution_mode") != "" {
		key, err := contributionKey(c)
		if err != nil {
			return middleware.BadRequest(c, err.Error())
		}
		contribution, err := h.Competitions.GetContribution(c.UserContext(), key)
		if err != nil {
			return err
		}
		return c.JSON(contribution)
	}

	competitionID, err := positiveQuery(c, "competition_id")
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	contributions, err := h.Competitions.ListContributions(c.UserContext(), competitionID)
	if err != nil {
		return err
	}
	if len(contributions) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("Contribution with competition_id %d not found", competitionID),
		})
	}
	return c.JSON(contributions)
}

func (h *Handler) UpdateContribution(c *fiber.Ctx) error {
	key, err := contributionKey(c)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	var req contributionRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.BadRequest(c, "invalid request body")
	}
	if req.Price != nil {
		if err := checkPrice(*req.Price); err != nil {
			return middleware.BadRequest(c, err.Error())
		}
	}

	contribution, err := h.Competitions.UpdateContribution(c.UserContext(), key, services.ContributionPatch{Price: req.Price})
	if err != nil {
		return err
	}
	return c.JSON(contribution)
}

func (h *Handler) DeleteContribution(c *fiber.Ctx) error {
	key, err := contributionKey(c)
	if err != nil {
		return middleware.BadRequest(c, err.Error())
	}
	if err := h.Competitions.DeleteContribution(c.UserContext(), key); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Contribution deleted"})
}
