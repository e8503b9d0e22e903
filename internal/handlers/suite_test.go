package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/database"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

// apiSuite wires the real router over an in-memory database
type apiSuite struct {
	suite.Suite
	db     *gorm.DB
	tokens *services.TokenService
	auth   *services.AuthService
	router *gin.Engine
}

func (s *apiSuite) SetupTest() {
	var err error

	s.db, err = gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Silent))
	s.Require().NoError(err)

	// Every connection to :memory: is a fresh database
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	database.SetDB(s.db)
	s.Require().NoError(database.Migrate())

	gin.SetMode(gin.TestMode)

	s.tokens = services.NewTokenService("test-secret", time.Hour)
	s.auth = services.NewAuthService(repository.NewUserRepository(s.db), s.tokens).
		WithBcryptCost(bcrypt.MinCost)
	taskService := services.NewTaskService(repository.NewTaskRepository(s.db)).
		WithClock(func() time.Time { return fixedNow })

	s.router = gin.New()
	api := s.router.Group("/api")

	authHandler := NewAuthHandler(s.auth, nil)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/profile", middleware.RequireAuth(s.auth), authHandler.Profile)

	taskHandler := NewTaskHandler(taskService, nil, nil)
	tasks := api.Group("/tasks", middleware.RequireAuth(s.auth))
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("/stats", taskHandler.GetStats)
	tasks.POST("/generate", taskHandler.GenerateTasks)
	tasks.GET("/:id", middleware.RequireTaskID(), taskHandler.GetTask)
	tasks.PUT("/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
	tasks.DELETE("/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
}

func (s *apiSuite) TearDownTest() {
	s.Require().NoError(database.Close())
}

func (s *apiSuite) createUser(email string) (*models.User, string) {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	s.Require().NoError(s.db.Create(user).Error)

	token, err := s.tokens.Issue(user.ID)
	s.Require().NoError(err)
	return user, token
}

func (s *apiSuite) createTask(task models.Task) *models.Task {
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	s.Require().NoError(s.db.Create(&task).Error)
	return &task
}

func (s *apiSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// envelope mirrors both the success and error bodies
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder, data any) envelope {
	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		s.Require().NoError(json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *apiSuite) requireStatus(w *httptest.ResponseRecorder, status int) {
	s.Require().Equal(status, w.Code, w.Body.String())
}

func (s *apiSuite) doWithHeader(method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", authorization)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
