package handlers

import (
	"net/http"
	"time"

	"caseflow/models"
	"caseflow/repositories"
	"caseflow/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PrecedentHandler exposes precedent lookup, favorability analysis and
// bulk import
type PrecedentHandler struct {
	db       *gorm.DB
	repo     *repositories.PrecedentRepository
	analysis *services.PrecedentAnalysisService
}

func NewPrecedentHandler(db *gorm.DB, repo *repositories.PrecedentRepository, analysis *services.PrecedentAnalysisService) *PrecedentHandler {
	return &PrecedentHandler{db: db, repo: repo, analysis: analysis}
}

// List returns precedents for a practice area, narrowed by query filters
func (h *PrecedentHandler) List(c echo.Context) error {
	areaID := c.QueryParam("practice_area_id")
	if areaID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "practice_area_id is required")
	}

	filter := &repositories.PrecedentFilter{
		FavouredParty: c.QueryParam("favoured_party"),
		Court:         c.QueryParam("court"),
		BindingOnly:   c.QueryParam("binding") == "true",
		Keyword:       c.QueryParam("keyword"),
	}

	precedents, err := h.repo.FindByPracticeArea(areaID, filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, precedents)
}

// Get returns one precedent with its citation count
func (h *PrecedentHandler) Get(c echo.Context) error {
	p, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	usage, err := h.repo.UsageCount(p.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"precedent":   p,
		"usage_count": usage,
	})
}

type createPrecedentRequest struct {
	Name            string  `json:"name" validate:"required,max=255"`
	ReferenceNumber string  `json:"reference_number"`
	Court           string  `json:"court" validate:"required"`
	DecisionDate    *string `json:"decision_date"`
	FavouredParty   *string `json:"favoured_party" validate:"omitempty,oneof=plaintiff defendant"`
	PracticeAreaID  *string `json:"practice_area_id"`
	LegalPrinciple  string  `json:"legal_principle" validate:"required"`
	Summary         string  `json:"summary"`
	IsBinding       bool    `json:"is_binding"`
}

// Create registers a new precedent
func (h *PrecedentHandler) Create(c echo.Context) error {
	var req createPrecedentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p := models.Precedent{
		Name:            req.Name,
		ReferenceNumber: req.ReferenceNumber,
		Court:           req.Court,
		FavouredParty:   req.FavouredParty,
		PracticeAreaID:  req.PracticeAreaID,
		LegalPrinciple:  req.LegalPrinciple,
		Summary:         req.Summary,
		IsBinding:       req.IsBinding,
	}
	if req.DecisionDate != nil && *req.DecisionDate != "" {
		t, err := time.Parse("2006-01-02", *req.DecisionDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "decision_date must use the YYYY-MM-DD format")
		}
		p.DecisionDate = &t
	}

	if err := h.repo.Create(&p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Delete removes a precedent
func (h *PrecedentHandler) Delete(c echo.Context) error {
	if err := h.repo.Delete(c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Analysis returns the favorability summary for a practice area and role
func (h *PrecedentHandler) Analysis(c echo.Context) error {
	areaID := c.QueryParam("practice_area_id")
	role := c.QueryParam("client_role")
	if areaID == "" || role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "practice_area_id and client_role are required")
	}

	summary, err := h.analysis.Summary(areaID, role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Template serves the Excel import template
func (h *PrecedentHandler) Template(c echo.Context) error {
	buf, err := services.GeneratePrecedentTemplate(h.db)
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="precedent_import_template.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// Import bulk-creates precedents from an uploaded Excel file
func (h *PrecedentHandler) Import(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to open uploaded file")
	}
	defer src.Close()

	result, err := services.BulkImportPrecedents(h.db, src)
	if err != nil && result == nil {
		return httpError(err)
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, result)
}
