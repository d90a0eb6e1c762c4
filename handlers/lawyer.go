package handlers

import (
	"net/http"

	"caseflow/models"
	"caseflow/repositories"

	"github.com/labstack/echo/v4"
)

// LawyerHandler exposes the lawyer roster
type LawyerHandler struct {
	lawyers *repositories.LawyerRepository
	cases   *repositories.CaseRepository
}

func NewLawyerHandler(lawyers *repositories.LawyerRepository, cases *repositories.CaseRepository) *LawyerHandler {
	return &LawyerHandler{lawyers: lawyers, cases: cases}
}

// List returns all lawyers, or the specialists of one practice area when
// practice_area_id is given
func (h *LawyerHandler) List(c echo.Context) error {
	var (
		lawyers []models.Lawyer
		err     error
	)
	if areaID := c.QueryParam("practice_area_id"); areaID != "" {
		lawyers, err = h.lawyers.FindSpecialists(areaID)
	} else {
		lawyers, err = h.lawyers.FindLawyers()
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lawyers)
}

// Get returns one lawyer with the live open-case counter filled
func (h *LawyerHandler) Get(c echo.Context) error {
	lawyer, err := h.lawyers.FindByID(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	count, err := h.cases.CountActiveByLawyer(lawyer.ID, "")
	if err != nil {
		return httpError(err)
	}
	lawyer.ActiveCaseCount = count
	return c.JSON(http.StatusOK, lawyer)
}

type createLawyerRequest struct {
	Name              string   `json:"name" validate:"required,max=255"`
	Email             string   `json:"email" validate:"omitempty,email"`
	Title             string   `json:"title"`
	YearsOfExperience int      `json:"years_of_experience" validate:"gte=0"`
	SpecialtyIDs      []string `json:"specialty_ids"`
}

// Create registers a new lawyer with optional specializations
func (h *LawyerHandler) Create(c echo.Context) error {
	var req createLawyerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	lawyer := models.Lawyer{
		Name:              req.Name,
		Email:             req.Email,
		Title:             req.Title,
		IsLawyer:          true,
		YearsOfExperience: req.YearsOfExperience,
	}
	for _, id := range req.SpecialtyIDs {
		lawyer.Specialties = append(lawyer.Specialties, models.PracticeArea{ID: id})
	}

	if err := h.lawyers.Create(&lawyer); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, lawyer)
}
