package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/database"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/exam"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

type TestHandler struct {
	log *zap.Logger
}

func NewTestHandler(log *zap.Logger) *TestHandler {
	return &TestHandler{log: log}
}

// --- response shaping ---
//
// Learners must never see which options are correct, so question trees
// are re-shaped into view structs instead of serializing the models
// directly. Staff get the full tree including the answer key.

type optionView struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
	OrderIndex int    `json:"order_index"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
}

type questionView struct {
	ID           string       `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType string       `json:"question_type"`
	OrderIndex   int          `json:"order_index"`
	Points       int          `json:"points"`
	Options      []optionView `json:"options"`
}

type testView struct {
	ID             string                 `json:"id"`
	CourseID       *string                `json:"course_id"`
	TestType       string                 `json:"test_type"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Duration       int                    `json:"duration"`
	MaxScore       int                    `json:"max_score"`
	PassingScore   int                    `json:"passing_score"`
	IsActive       bool                   `json:"is_active"`
	AvailableFrom  *time.Time             `json:"available_from"`
	AvailableUntil *time.Time             `json:"available_until"`
	AccessKey      string                 `json:"access_key,omitempty"`
	ScoringModel   string                 `json:"scoring_model"`
	Config         map[string]interface{} `json:"config,omitempty"`
	Questions      []questionView         `json:"questions,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

func shapeTest(test *models.Test, staff bool, withQuestions bool) testView {
	view := testView{
		ID:             test.ID,
		CourseID:       test.CourseID,
		TestType:       string(test.TestType),
		Title:          test.Title,
		Description:    test.Description,
		Duration:       test.Duration,
		MaxScore:       test.MaxScore,
		PassingScore:   test.PassingScore,
		IsActive:       test.IsActive,
		AvailableFrom:  test.AvailableFrom,
		AvailableUntil: test.AvailableUntil,
		ScoringModel:   test.ScoringModel,
		Config:         test.Config,
		CreatedAt:      test.CreatedAt,
	}
	if staff {
		view.AccessKey = test.AccessKey
	}
	if !withQuestions {
		return view
	}

	view.Questions = make([]questionView, 0, len(test.Questions))
	for _, q := range test.Questions {
		qv := questionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: string(q.QuestionType),
			OrderIndex:   q.OrderIndex,
			Points:       q.Points,
			Options:      make([]optionView, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			ov := optionView{
				ID:         o.ID,
				OptionText: o.OptionText,
				OrderIndex: o.OrderIndex,
			}
			if staff {
				correct := o.IsCorrect
				ov.IsCorrect = &correct
			}
			qv.Options = append(qv.Options, ov)
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

// --- authoring ---

type optionRequest struct {
	OptionText string `json:"option_text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

type questionRequest struct {
	QuestionText string          `json:"question_text" binding:"required"`
	QuestionType string          `json:"question_type" binding:"required"`
	Points       int             `json:"points"`
	OrderIndex   int             `json:"order_index"`
	Options      []optionRequest `json:"options"`
}

func (r questionRequest) toModel() models.TestQuestion {
	question := models.TestQuestion{
		QuestionText: r.QuestionText,
		QuestionType: models.QuestionType(r.QuestionType),
		Points:       r.Points,
		OrderIndex:   r.OrderIndex,
		Options:      make([]models.TestQuestionOption, 0, len(r.Options)),
	}
	if question.Points == 0 {
		question.Points = 1
	}
	for i, o := range r.Options {
		order := o.OrderIndex
		if order == 0 {
			order = i
		}
		question.Options = append(question.Options, models.TestQuestionOption{
			OptionText: o.OptionText,
			IsCorrect:  o.IsCorrect,
			OrderIndex: order,
		})
	}
	return question
}

type createTestRequest struct {
	CourseID       *string           `json:"course_id"`
	TestType       string            `json:"test_type"`
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description"`
	Duration       int               `json:"duration"`
	MaxScore       int               `json:"max_score"`
	PassingScore   int               `json:"passing_score"`
	IsActive       *bool             `json:"is_active"`
	AvailableFrom  *time.Time        `json:"available_from"`
	AvailableUntil *time.Time        `json:"available_until"`
	AccessKey      string            `json:"access_key"`
	Questions      []questionRequest `json:"questions"`
}

func (h *TestHandler) Create(c *gin.Context) {
	var req createTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	test := &models.Test{
		CourseID:       req.CourseID,
		TestType:       models.TestType(req.TestType),
		Title:          req.Title,
		Description:    req.Description,
		Duration:       req.Duration,
		MaxScore:       req.MaxScore,
		PassingScore:   req.PassingScore,
		IsActive:       true,
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
		AccessKey:      req.AccessKey,
		ScoringModel:   models.ScoringModelSimple,
	}
	if test.TestType == "" {
		test.TestType = models.TestTypeCourse
	}
	if test.Duration == 0 {
		test.Duration = 30
	}
	if test.MaxScore == 0 {
		test.MaxScore = 100
	}
	if test.PassingScore == 0 {
		test.PassingScore = 60
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}
	for _, q := range req.Questions {
		test.Questions = append(test.Questions, q.toModel())
	}

	store := repository.NewTestStore(database.DB)
	if err := store.CreateTest(c.Request.Context(), test); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("test created",
		zap.String("test_id", test.ID),
		zap.String("test_type", string(test.TestType)),
		zap.String("created_by", CurrentUser(c).ID),
	)
	c.JSON(http.StatusCreated, shapeTest(test, true, true))
}

func (h *TestHandler) AddQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	question := req.toModel()
	store := repository.NewTestStore(database.DB)
	if err := store.AddQuestion(c.Request.Context(), c.Param("id"), &question); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": question.ID, "test_id": question.TestID})
}

func (h *TestHandler) Update(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}
	for _, key := range []string{"id", "created_at", "updated_at", "questions"} {
		delete(fields, key)
	}

	store := repository.NewTestStore(database.DB)
	if err := store.UpdateTest(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondError(c, err)
		return
	}

	test, err := store.GetTest(c.Request.Context(), c.Param("id"))
	if err != nil || test == nil {
		respondError(c, repository.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, shapeTest(test, true, true))
}

func (h *TestHandler) Delete(c *gin.Context) {
	store := repository.NewTestStore(database.DB)
	if err := store.SoftDeleteTest(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test deleted successfully"})
}

// --- browsing ---

func (h *TestHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := repository.TestListFilter{
		CourseID: c.Query("course_id"),
		TestType: models.TestType(c.Query("test_type")),
		Page:     page,
		Size:     size,
	}

	store := repository.NewTestStore(database.DB)
	tests, total, err := store.ListTests(c.Request.Context(), actorFor(CurrentUser(c)), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	staff := CurrentUser(c).Role.IsStaff()
	views := make([]testView, 0, len(tests))
	for i := range tests {
		views = append(views, shapeTest(&tests[i], staff, false))
	}
	c.JSON(http.StatusOK, paginated(views, total, filter.Page, filter.Size))
}

func (h *TestHandler) Get(c *gin.Context) {
	user := CurrentUser(c)
	store := repository.NewTestStore(database.DB)

	test, err := store.GetTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := exam.CheckAccess(test, actorFor(user), c.Query("access_key"), time.Now()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shapeTest(test, user.Role.IsStaff(), true))
}

// --- attempt lifecycle ---

type accessKeyRequest struct {
	AccessKey string `json:"access_key"`
}

// Start opens (or resumes) the caller's attempt. The whole operation
// runs in one transaction so the open-attempt uniqueness check and the
// insert cannot be torn apart.
func (h *TestHandler) Start(c *gin.Context) {
	var req accessKeyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
			return
		}
	}

	user := CurrentUser(c)
	var test *models.Test
	var attempt *models.TestResult

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		lifecycle := exam.NewLifecycle(repository.NewTestStore(tx), h.log)
		var lerr error
		test, attempt, lerr = lifecycle.Start(c.Request.Context(), c.Param("id"), actorFor(user), req.AccessKey)
		return lerr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempt_id": attempt.ID,
		"started_at": attempt.StartedAt,
		"test":       shapeTest(test, false, true),
	})
}

type submitTestRequest struct {
	AccessKey string              `json:"access_key"`
	Answers   map[string][]string `json:"answers" binding:"required"`
}

func (h *TestHandler) Submit(c *gin.Context) {
	var req submitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorBody("VALIDATION_ERROR", err.Error()))
		return
	}

	user := CurrentUser(c)
	var result *exam.Result

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		lifecycle := exam.NewLifecycle(repository.NewTestStore(tx), h.log)
		var lerr error
		result, lerr = lifecycle.Submit(c.Request.Context(), c.Param("id"), actorFor(user), req.AccessKey, req.Answers)
		return lerr
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// --- results ---

type resultView struct {
	ID          string     `json:"id"`
	TestID      string     `json:"test_id"`
	TestTitle   string     `json:"test_title,omitempty"`
	UserID      string     `json:"user_id"`
	Score       float64    `json:"score"`
	MaxScore    int        `json:"max_score"`
	Percentage  float64    `json:"percentage"`
	IsPassed    bool       `json:"is_passed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func shapeResult(r *models.TestResult) resultView {
	return resultView{
		ID:          r.ID,
		TestID:      r.TestID,
		TestTitle:   r.Test.Title,
		UserID:      r.UserID,
		Score:       r.Score,
		MaxScore:    r.MaxScore,
		Percentage:  r.Percentage,
		IsPassed:    r.IsPassed,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

// Results lists every completed attempt for a test. Staff only.
func (h *TestHandler) Results(c *gin.Context) {
	store := repository.NewTestStore(database.DB)
	results, err := store.ResultsForTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]resultView, 0, len(results))
	for i := range results {
		views = append(views, shapeResult(&results[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": views, "total": len(views)})
}

// MyResults lists the caller's own completed attempts.
func (h *TestHandler) MyResults(c *gin.Context) {
	store := repository.NewTestStore(database.DB)
	results, err := store.ResultsForUser(c.Request.Context(), CurrentUser(c).ID, 50)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]resultView, 0, len(results))
	for i := range results {
		views = append(views, shapeResult(&results[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": views, "total": len(views)})
}
