package handlers

import (
	"net/http"
	"strconv"

	"caseflow/models"
	"caseflow/repositories"
	"caseflow/services"

	"github.com/labstack/echo/v4"
)

// CaseHandler exposes the case lifecycle over HTTP
type CaseHandler struct {
	cases      *services.CaseService
	repo       *repositories.CaseRepository
	documents  *services.DocumentService
	feed       *services.FeedService
	precedents *services.PrecedentAnalysisService
}

func NewCaseHandler(
	cases *services.CaseService,
	repo *repositories.CaseRepository,
	documents *services.DocumentService,
	feed *services.FeedService,
	precedents *services.PrecedentAnalysisService,
) *CaseHandler {
	return &CaseHandler{
		cases:      cases,
		repo:       repo,
		documents:  documents,
		feed:       feed,
		precedents: precedents,
	}
}

type createCaseRequest struct {
	Title                   string   `json:"title" validate:"required,max=255"`
	Facts                   *string  `json:"facts"`
	ClientID                string   `json:"client_id" validate:"required"`
	ClientRole              *string  `json:"client_role" validate:"omitempty,oneof=plaintiff defendant"`
	Status                  string   `json:"status" validate:"omitempty,oneof=draft open on_hold closed"`
	ResponsibleLawyerID     *string  `json:"responsible_lawyer_id"`
	PracticeAreaID          *string  `json:"practice_area_id"`
	CaseStrength            *string  `json:"case_strength"`
	EvidenceStrength        *string  `json:"evidence_strength"`
	Complexity              *string  `json:"complexity"`
	ClaimAmount             float64  `json:"claim_amount" validate:"gte=0"`
	RecoveryAmount          float64  `json:"recovery_amount" validate:"gte=0"`
	LegalCosts              float64  `json:"legal_costs" validate:"gte=0"`
	EstimatedDurationMonths int      `json:"estimated_duration_months" validate:"gte=0"`
}

type updateCaseRequest struct {
	Title                   *string  `json:"title" validate:"omitempty,max=255"`
	Facts                   *string  `json:"facts"`
	ClientRole              *string  `json:"client_role"`
	Status                  *string  `json:"status"`
	ResponsibleLawyerID     *string  `json:"responsible_lawyer_id"`
	PracticeAreaID          *string  `json:"practice_area_id"`
	CaseStrength            *string  `json:"case_strength"`
	EvidenceStrength        *string  `json:"evidence_strength"`
	Complexity              *string  `json:"complexity"`
	ClaimAmount             *float64 `json:"claim_amount" validate:"omitempty,gte=0"`
	RecoveryAmount          *float64 `json:"recovery_amount" validate:"omitempty,gte=0"`
	LegalCosts              *float64 `json:"legal_costs" validate:"omitempty,gte=0"`
	Outcome                 *string  `json:"outcome"`
	EstimatedDurationMonths *int     `json:"estimated_duration_months" validate:"omitempty,gte=0"`
}

// List returns cases matching the query filters with pagination
func (h *CaseHandler) List(c echo.Context) error {
	filter := repositories.CaseFilter{
		Status:         c.QueryParam("status"),
		LawyerID:       c.QueryParam("lawyer_id"),
		PracticeAreaID: c.QueryParam("practice_area_id"),
		ClientID:       c.QueryParam("client_id"),
		Keyword:        c.QueryParam("keyword"),
	}
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		filter.Page = p
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filter.Limit = l
	}

	cases, total, err := h.repo.List(filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cases": cases,
		"total": total,
	})
}

// Get returns one case with its derived scoring fields refreshed
func (h *CaseHandler) Get(c echo.Context) error {
	result, err := h.cases.Get(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Create runs the creation pipeline and returns the new case
func (h *CaseHandler) Create(c echo.Context) error {
	var req createCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.cases.Create(services.CreateCaseInput{
		Title:                   req.Title,
		Facts:                   req.Facts,
		ClientID:                req.ClientID,
		ClientRole:              req.ClientRole,
		Status:                  req.Status,
		ResponsibleLawyerID:     req.ResponsibleLawyerID,
		PracticeAreaID:          req.PracticeAreaID,
		CaseStrength:            req.CaseStrength,
		EvidenceStrength:        req.EvidenceStrength,
		Complexity:              req.Complexity,
		ClaimAmount:             req.ClaimAmount,
		RecoveryAmount:          req.RecoveryAmount,
		LegalCosts:              req.LegalCosts,
		EstimatedDurationMonths: req.EstimatedDurationMonths,
	}, requestActor(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Update applies a partial update through the validation chain and state
// machine. Only fields present in the body are touched.
func (h *CaseHandler) Update(c echo.Context) error {
	var req updateCaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cs := changeSetFromRequest(&req)
	if len(cs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	updated, err := h.cases.Update(c.Param("id"), cs, requestActor(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Transitions lists the states the case may move to from its current state
func (h *CaseHandler) Transitions(c echo.Context) error {
	current, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":              current.Status,
		"allowed_transitions": h.cases.Machine().AllowedTransitions(current.Status),
	})
}

// Similar returns closed cases sharing the case's practice area and role,
// with their aggregate outcome stats
func (h *CaseHandler) Similar(c echo.Context) error {
	current, err := h.repo.FindByID(c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	limit := 10
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 {
		limit = l
	}

	similar, err := h.precedents.SimilarCases(current, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cases": similar,
		"stats": services.SuccessProbability(similar),
	})
}

// Messages returns the case feed, newest first
func (h *CaseHandler) Messages(c echo.Context) error {
	limit := 50
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 {
		limit = l
	}
	messages, err := h.feed.Messages(c.Param("id"), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

type postMessageRequest struct {
	Subject string `json:"subject" validate:"max=255"`
	Body    string `json:"body" validate:"required"`
}

// PostMessage adds a message to the case feed
func (h *CaseHandler) PostMessage(c echo.Context) error {
	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	actor := requestActor(c)
	var authorID *string
	if actor.ID != "" {
		authorID = &actor.ID
	}
	if err := h.feed.PostMessage(c.Param("id"), authorID, actor.Name, req.Subject, req.Body); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusCreated)
}

// Follow subscribes a user to the case feed
func (h *CaseHandler) Follow(c echo.Context) error {
	userID := c.Request().Header.Get("X-Actor-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing X-Actor-ID header")
	}
	if err := h.feed.Subscribe(c.Param("id"), userID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Unfollow removes a user from the case feed
func (h *CaseHandler) Unfollow(c echo.Context) error {
	userID := c.Request().Header.Get("X-Actor-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing X-Actor-ID header")
	}
	if err := h.feed.Unsubscribe(c.Param("id"), userID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadDocument stores an uploaded file against the case
func (h *CaseHandler) UploadDocument(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}

	actor := requestActor(c)
	var uploadedBy *string
	if actor.ID != "" {
		uploadedBy = &actor.ID
	}

	doc, err := h.documents.SaveCaseDocument(c.Request().Context(), c.Param("id"), file, c.FormValue("document_type"), uploadedBy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// DownloadDocument streams a stored case document
func (h *CaseHandler) DownloadDocument(c echo.Context) error {
	reader, doc, err := h.documents.OpenCaseDocument(c.Request().Context(), c.Param("docId"))
	if err != nil {
		return httpError(err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.FileOriginalName+`"`)
	return c.Stream(http.StatusOK, doc.MimeType, reader)
}

// DeleteDocument removes a case document and its stored file
func (h *CaseHandler) DeleteDocument(c echo.Context) error {
	if err := h.documents.DeleteCaseDocument(c.Request().Context(), c.Param("docId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func changeSetFromRequest(req *updateCaseRequest) models.ChangeSet {
	cs := models.ChangeSet{}
	if req.Title != nil {
		cs[models.FieldTitle] = *req.Title
	}
	if req.Facts != nil {
		cs[models.FieldFacts] = *req.Facts
	}
	if req.ClientRole != nil {
		cs[models.FieldClientRole] = *req.ClientRole
	}
	if req.Status != nil {
		cs[models.FieldStatus] = *req.Status
	}
	if req.ResponsibleLawyerID != nil {
		if *req.ResponsibleLawyerID == "" {
			cs[models.FieldResponsibleLawyerID] = nil
		} else {
			cs[models.FieldResponsibleLawyerID] = *req.ResponsibleLawyerID
		}
	}
	if req.PracticeAreaID != nil {
		if *req.PracticeAreaID == "" {
			cs[models.FieldPracticeAreaID] = nil
		} else {
			cs[models.FieldPracticeAreaID] = *req.PracticeAreaID
		}
	}
	if req.CaseStrength != nil {
		cs[models.FieldCaseStrength] = *req.CaseStrength
	}
	if req.EvidenceStrength != nil {
		cs[models.FieldEvidenceStrength] = *req.EvidenceStrength
	}
	if req.Complexity != nil {
		cs[models.FieldComplexity] = *req.Complexity
	}
	if req.ClaimAmount != nil {
		cs[models.FieldClaimAmount] = *req.ClaimAmount
	}
	if req.RecoveryAmount != nil {
		cs[models.FieldRecoveryAmount] = *req.RecoveryAmount
	}
	if req.LegalCosts != nil {
		cs[models.FieldLegalCosts] = *req.LegalCosts
	}
	if req.Outcome != nil {
		if *req.Outcome == "" {
			cs[models.FieldOutcome] = nil
		} else {
			cs[models.FieldOutcome] = *req.Outcome
		}
	}
	if req.EstimatedDurationMonths != nil {
		cs[models.FieldEstimatedDurationMonths] = *req.EstimatedDurationMonths
	}
	return cs
}
