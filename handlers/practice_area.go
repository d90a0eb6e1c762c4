package handlers

import (
	"net/http"

	"caseflow/models"
	"caseflow/repositories"

	"github.com/labstack/echo/v4"
)

// PracticeAreaHandler exposes the practice area catalog
type PracticeAreaHandler struct {
	repo *repositories.PracticeAreaRepository
}

func NewPracticeAreaHandler(repo *repositories.PracticeAreaRepository) *PracticeAreaHandler {
	return &PracticeAreaHandler{repo: repo}
}

// List returns the active practice areas
func (h *PracticeAreaHandler) List(c echo.Context) error {
	areas, err := h.repo.FindActive()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, areas)
}

// Get returns one practice area with its live case counters
func (h *PracticeAreaHandler) Get(c echo.Context) error {
	area, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if err := h.repo.WithCaseCounts(area); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, area)
}

type createPracticeAreaRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Code     string  `json:"code" validate:"required,max=10"`
	ParentID *string `json:"parent_id"`
}

// Create registers a new practice area
func (h *PracticeAreaHandler) Create(c echo.Context) error {
	var req createPracticeAreaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	area := models.PracticeArea{
		Name:     req.Name,
		Code:     req.Code,
		ParentID: req.ParentID,
		Active:   true,
	}
	if err := h.repo.Create(&area); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, area)
}
