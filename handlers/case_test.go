package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caseflow/models"
	"caseflow/repositories"
	"caseflow/services"
	"caseflow/services/events"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCaseHandlerTest() (*echo.Echo, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.PracticeArea{}, &models.Lawyer{}, &models.Case{},
		&models.Precedent{}, &models.CaseMessage{}, &models.CaseFollower{})

	cases := repositories.NewCaseRepository(db)
	lawyers := repositories.NewLawyerRepository(db)
	precedents := repositories.NewPrecedentRepository(db)

	analysis := services.NewPrecedentAnalysisService(precedents, cases)
	successRate := services.NewSuccessRateService(services.NewStrategyRegistry(), cases, lawyers, analysis)
	feed := services.NewFeedService(db)

	caseService := services.NewCaseService(db, cases,
		services.NewValidationChain(), services.NewStateMachine(),
		events.NewDispatcher(), successRate, analysis)

	h := NewCaseHandler(caseService, cases, nil, feed, analysis)

	e := echo.New()
	e.Validator = NewRequestValidator()
	e.GET("/api/cases", h.List)
	e.POST("/api/cases", h.Create)
	e.GET("/api/cases/:id", h.Get)
	e.PATCH("/api/cases/:id", h.Update)
	e.GET("/api/cases/:id/transitions", h.Transitions)
	e.POST("/api/cases/:id/messages", h.PostMessage)
	e.GET("/api/cases/:id/messages", h.Messages)
	e.POST("/api/cases/:id/follow", h.Follow)
	return e, db
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set("X-Actor-ID", "u-1")
	req.Header.Set("X-Actor-Name", "Ana Torres")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createDraft(t *testing.T, e *echo.Echo) models.Case {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/cases", `{"title":"Contract dispute","client_id":"cl-1"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var c models.Case
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestCaseHandlerCreate(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		e, _ := setupCaseHandlerTest()
		c := createDraft(t, e)
		assert.Equal(t, models.CaseStatusDraft, c.Status)
		assert.NotEmpty(t, c.Code)
	})

	t.Run("Missing Title Rejected", func(t *testing.T) {
		e, _ := setupCaseHandlerTest()
		rec := doJSON(e, http.MethodPost, "/api/cases", `{"client_id":"cl-1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Bad Status Enum Rejected", func(t *testing.T) {
		e, _ := setupCaseHandlerTest()
		rec := doJSON(e, http.MethodPost, "/api/cases",
			`{"title":"x","client_id":"cl-1","status":"archived"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Negative Claim Rejected", func(t *testing.T) {
		e, _ := setupCaseHandlerTest()
		rec := doJSON(e, http.MethodPost, "/api/cases",
			`{"title":"x","client_id":"cl-1","claim_amount":-5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Malformed Body Rejected", func(t *testing.T) {
		e, _ := setupCaseHandlerTest()
		rec := doJSON(e, http.MethodPost, "/api/cases", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCaseHandlerGet(t *testing.T) {
	e, _ := setupCaseHandlerTest()
	c := createDraft(t, e)

	rec := doJSON(e, http.MethodGet, "/api/cases/"+c.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var fetched models.Case
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, c.Code, fetched.Code)

	rec = doJSON(e, http.MethodGet, "/api/cases/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaseHandlerUpdate(t *testing.T) {
	t.Run("Illegal Transition Surfaces As Bad Request", func(t *testing.T) {
		e, _ := setupCaseHandlerTest()
		c := createDraft(t, e)

		rec := doJSON(e, http.MethodPatch, "/api/cases/"+c.ID, `{"status":"closed"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Opening With A Lawyer Succeeds", func(t *testing.T) {
		e, db := setupCaseHandlerTest()
		c := createDraft(t, e)
		lawyer := &models.Lawyer{Name: "Ana Torres", YearsOfExperience: 5}
		db.Create(lawyer)

		rec := doJSON(e, http.MethodPatch, "/api/cases/"+c.ID,
			`{"status":"open","responsible_lawyer_id":"`+lawyer.ID+`"}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		var updated models.Case
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, models.CaseStatusOpen, updated.Status)
		assert.NotNil(t, updated.OpenDate)
	})

	t.Run("Empty Body Rejected", func(t *testing.T) {
		e, _ := setupCaseHandlerTest()
		c := createDraft(t, e)

		rec := doJSON(e, http.MethodPatch, "/api/cases/"+c.ID, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCaseHandlerTransitions(t *testing.T) {
	e, _ := setupCaseHandlerTest()
	c := createDraft(t, e)

	rec := doJSON(e, http.MethodGet, "/api/cases/"+c.ID+"/transitions", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status             string   `json:"status"`
		AllowedTransitions []string `json:"allowed_transitions"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.CaseStatusDraft, body.Status)
	assert.Equal(t, []string{models.CaseStatusOpen}, body.AllowedTransitions)
}

func TestCaseHandlerFeed(t *testing.T) {
	e, _ := setupCaseHandlerTest()
	c := createDraft(t, e)

	rec := doJSON(e, http.MethodPost, "/api/cases/"+c.ID+"/messages",
		`{"subject":"Update","body":"Filed the response"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Body is required
	rec = doJSON(e, http.MethodPost, "/api/cases/"+c.ID+"/messages", `{"subject":"Empty"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/cases/"+c.ID+"/messages", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var messages []models.CaseMessage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	assert.Len(t, messages, 1)
	assert.Equal(t, "Ana Torres", messages[0].AuthorName)
}

func TestCaseHandlerFollow(t *testing.T) {
	e, db := setupCaseHandlerTest()
	c := createDraft(t, e)

	rec := doJSON(e, http.MethodPost, "/api/cases/"+c.ID+"/follow", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	db.Model(&models.CaseFollower{}).Where("case_id = ? AND user_id = ?", c.ID, "u-1").Count(&count)
	assert.Equal(t, int64(1), count)

	// Without the actor header there is nobody to subscribe
	req := httptest.NewRequest(http.MethodPost, "/api/cases/"+c.ID+"/follow", nil)
	bare := httptest.NewRecorder()
	e.ServeHTTP(bare, req)
	assert.Equal(t, http.StatusBadRequest, bare.Code)
}
