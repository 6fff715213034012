// Package webapp serves the questionnaire front end as a JSON API.
package webapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aidetect/internal/availability"
	"aidetect/internal/features"
	"aidetect/internal/logging"
	"aidetect/internal/questionnaire"
	"aidetect/pkg/models"
)

// QuestionnairePath is where a successful start sends the user.
const QuestionnairePath = "/questionnaire"

// History finds past submissions similar to a vector.
type History interface {
	Similar(ctx context.Context, vector []float32, limit uint64) ([]models.HistoryMatch, error)
}

// Server wires the availability monitor, the status watcher and the
// submitter behind HTTP routes.
type Server struct {
	monitor   *availability.Monitor
	watcher   *availability.Watcher
	submitter *questionnaire.Submitter
	session   *questionnaire.Session
	history   History
	schema    *features.Schema
	catalog   features.Catalog
	apiKey    string
	startTime time.Time
	logger    *zap.Logger
}

// Config holds the Server's collaborators.
type Config struct {
	Monitor   *availability.Monitor
	Watcher   *availability.Watcher
	Submitter *questionnaire.Submitter
	// History is optional; the similar-submissions route is only mounted when set.
	History History
	Schema  *features.Schema
	Catalog features.Catalog
	// APIKey, when set, is required in X-API-Key on prediction requests.
	APIKey string
	Logger *zap.Logger
}

// NewServer creates a server.
func NewServer(cfg Config) *Server {
	schema := cfg.Schema
	if schema == nil {
		schema = features.DefaultSchema()
	}
	return &Server{
		monitor:   cfg.Monitor,
		watcher:   cfg.Watcher,
		submitter: cfg.Submitter,
		session:   questionnaire.NewSession(),
		history:   cfg.History,
		schema:    schema,
		catalog:   cfg.Catalog,
		apiKey:    cfg.APIKey,
		startTime: time.Now(),
		logger:    logging.OrNop(cfg.Logger),
	}
}

// Routes builds the gin engine.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/availability", s.handleAvailability)
		api.POST("/start", s.handleStart)
		api.GET("/questionnaire", s.handleQuestionnaire)
		api.POST("/predict", s.requireAPIKey, s.handlePredict)

		form := api.Group("/form")
		form.GET("", s.handleForm)
		form.POST("/select", s.handleSelect)
		form.POST("/symptom", s.handleSymptom)
		form.POST("/submit", s.requireAPIKey, s.handleSubmitForm)
		form.DELETE("", s.handleResetForm)
		if s.history != nil {
			api.POST("/history/similar", s.requireAPIKey, s.handleSimilar)
		}
	}

	return r
}

type healthResponse struct {
	Status    string             `json:"status"`
	StartTime time.Time          `json:"start_time"`
	Uptime    string             `json:"uptime"`
	Monitor   availability.State `json:"monitor"`
	Attempts  int                `json:"status_checks"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:    "up",
		StartTime: s.startTime,
		Uptime:    time.Since(s.startTime).String(),
		Monitor:   s.monitor.State(),
		Attempts:  s.monitor.Attempts(),
	})
}

type availabilityResponse struct {
	State     availability.State     `json:"state"`
	Online    bool                   `json:"online"`
	Indicator availability.Indicator `json:"indicator"`
}

func (s *Server) handleAvailability(c *gin.Context) {
	state := s.monitor.State()
	c.JSON(http.StatusOK, availabilityResponse{
		State:     state,
		Online:    state == availability.Online,
		Indicator: state.Indicator(),
	})
}

func (s *Server) handleStart(c *gin.Context) {
	started := s.monitor.RunIfOnline("start", func() {
		c.JSON(http.StatusOK, gin.H{"next": QuestionnairePath})
	})
	if !started {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "Server not yet online. Cannot start.",
			Details: s.monitor.Indicator().Text,
		})
	}
}

type questionnaireResponse struct {
	Catalog features.Catalog       `json:"catalog"`
	Server  availability.Indicator `json:"server"`
}

func (s *Server) handleQuestionnaire(c *gin.Context) {
	c.JSON(http.StatusOK, questionnaireResponse{
		Catalog: s.catalog,
		Server:  s.watcher.Indicator(),
	})
}

type predictErrorResponse struct {
	Notification questionnaire.Notification `json:"notification"`
}

func (s *Server) handlePredict(c *gin.Context) {
	var form models.FormState
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Details: err.Error(),
		})
		return
	}

	s.submit(c, form)
}

func (s *Server) submit(c *gin.Context, form models.FormState) {
	result, err := s.submitter.Submit(c.Request.Context(), form)
	if err != nil {
		var subErr *questionnaire.SubmissionError
		if errors.As(err, &subErr) {
			c.JSON(http.StatusBadGateway, predictErrorResponse{Notification: subErr.Notification()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "prediction failed", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type selectRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type symptomRequest struct {
	Symptom string `json:"symptom" binding:"required"`
	Checked bool   `json:"checked"`
}

func (s *Server) handleForm(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Form())
}

func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}
	if err := s.session.Select(req.Field, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid field", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.session.Form())
}

func (s *Server) handleSymptom(c *gin.Context) {
	var req symptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}
	s.session.ToggleSymptom(req.Symptom, req.Checked)
	c.JSON(http.StatusOK, s.session.Form())
}

// handleSubmitForm submits the session's answers. The answers are kept so a
// failed submission can be retried as is.
func (s *Server) handleSubmitForm(c *gin.Context) {
	s.submit(c, s.session.Form())
}

func (s *Server) handleResetForm(c *gin.Context) {
	s.session.Reset()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSimilar(c *gin.Context) {
	var form models.FormState
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Details: err.Error(),
		})
		return
	}

	limit := uint64(5)
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid limit", Details: fmt.Sprintf("%q", v)})
			return
		}
		limit = n
	}

	vector := features.Encode(s.schema, form)
	matches, err := s.history.Similar(c.Request.Context(), vector.Floats(), limit)
	if err != nil {
		s.logger.Error("History search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "history search failed", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (s *Server) requireAPIKey(c *gin.Context) {
	if s.apiKey == "" {
		return
	}
	if c.GetHeader("X-API-Key") != s.apiKey {
		s.logger.Warn("Invalid API key received", zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid API key"})
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Run serves handler on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
