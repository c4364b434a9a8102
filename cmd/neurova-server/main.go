package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/neurova/neurova/internal/analytics"
	"github.com/neurova/neurova/internal/config"
	"github.com/neurova/neurova/internal/sessions"
	"github.com/neurova/neurova/internal/storage"
)

// AppState holds all application services
type AppState struct {
	SessionService sessions.SessionManager
	Engine         *analytics.Engine
	HealthManager  *storage.HealthManager
	DB             *bun.DB
	Logger         *zap.Logger
	Config         *config.Config
}

func main() {
	// Load configuration
	config.Load()

	// Initialize logger with config
	logger := initLogger()
	logger.Info("Configuration loaded", zap.String("source", "config.Load()"))

	// Initialize application state
	as, err := newAppState(logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	// Verify critical dependencies before serving
	ctx := context.Background()
	if err := as.HealthManager.StartupHealthCheck(ctx); err != nil {
		logger.Fatal("Startup health check failed", zap.Error(err))
	}

	// Create HTTP server
	router := setupRouter(as)

	addr := fmt.Sprintf("%s:%d", config.Http().Host, config.Http().Port)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Setup graceful shutdown
	done := setupSignalHandler(as, server, logger)

	// Start server
	logger.Info("Starting Neurova server", zap.String("address", addr))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState creates and initializes the application state
func newAppState(logger *zap.Logger) (*AppState, error) {
	pgConfig := config.Postgres()

	logger.Info("Database configuration",
		zap.String("host", pgConfig.Host),
		zap.Int("port", pgConfig.Port),
		zap.String("database", pgConfig.Database),
		zap.String("user", pgConfig.User))

	db, err := storage.NewDatabase(pgConfig.DSN(), pgConfig.MaxOpenConnections)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx := context.Background()
	if err := sessions.CreateTables(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := sessions.CreateIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	// Initialize session service with database
	sessionStore := sessions.NewPostgresStore(db)
	sessionService := sessions.NewService(sessionStore)

	// Aggregation engine reads through the same store
	loader := analytics.NewStoreLoader(sessionStore)
	engine := analytics.NewEngine(loader)

	healthManager := storage.NewHealthManager(logger)
	healthManager.AddChecker(storage.NewDatabaseHealthChecker(db))
	healthManager.AddChecker(storage.NewConfigHealthChecker(config.Get()))

	return &AppState{
		SessionService: sessionService,
		Engine:         engine,
		HealthManager:  healthManager,
		DB:             db,
		Logger:         logger,
		Config:         config.Get(),
	}, nil
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var config zap.Config
	if logConfig.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	// Set log level
	switch logConfig.Level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

// Response envelope helpers. Every endpoint answers with
// {status, message, data} so clients can branch on the status label.

func jsonResponse(c *gin.Context, statusCode int, status, message string) {
	c.JSON(statusCode, gin.H{
		"status":  status,
		"message": message,
	})
}

func jsonWithDataResponse(c *gin.Context, statusCode int, status, message string, data interface{}) {
	c.JSON(statusCode, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func badRequestResponse(c *gin.Context, message string) {
	jsonResponse(c, http.StatusBadRequest, "Bad Request", message)
}

func errorResponse(c *gin.Context, message string) {
	jsonResponse(c, http.StatusInternalServerError, "Error", message)
}

func unauthorizedResponse(c *gin.Context, message string) {
	jsonResponse(c, http.StatusUnauthorized, "Unauthorized", message)
}

// noDataResponse reports a no-matching-data state. It is a successful
// response with a null payload, not a fault.
func noDataResponse(c *gin.Context, message string) {
	jsonWithDataResponse(c, http.StatusOK, "No Data", message, nil)
}

// RequestLoggingMiddleware tags each request with an id and logs its outcome
func RequestLoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		logger.Info("Request completed",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// APIKeyMiddleware guards mutating endpoints with the configured API key
func APIKeyMiddleware(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !isValidAPIKey(authHeader) {
			as.Logger.Warn("Unauthorized request",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("remote_addr", c.Request.RemoteAddr))

			unauthorizedResponse(c, "A valid API key is required for this operation.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// isValidAPIKey validates the Authorization header against config
func isValidAPIKey(authHeader string) bool {
	expectedKey := config.Auth().APIKey
	if expectedKey == "" {
		return false // No key configured
	}

	if authHeader == "" {
		return false
	}

	// Accept either Bearer or Api-Key format
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		return token == expectedKey
	}

	if strings.HasPrefix(authHeader, "Api-Key ") {
		token := strings.TrimPrefix(authHeader, "Api-Key ")
		return token == expectedKey
	}

	return false
}

func setupRouter(as *AppState) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add CORS middleware
	router.Use(cors.Default())

	// Add logging middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware(as.Logger))

	// Health endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		results := as.HealthManager.RuntimeHealthCheck(ctx)

		services := gin.H{}
		healthy := true
		for name, err := range results {
			if err != nil {
				services[name] = err.Error()
				healthy = false
			} else {
				services[name] = "healthy"
			}
		}

		statusCode := http.StatusOK
		status := "healthy"
		if !healthy {
			statusCode = http.StatusServiceUnavailable
			status = "unhealthy"
		}

		c.JSON(statusCode, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  services,
		})
	})

	// Session data endpoints. Reads are open; mutations require the API key.
	router.GET("/sessions", listSessionData(as))

	mutating := router.Group("/")
	mutating.Use(APIKeyMiddleware(as))
	{
		mutating.POST("/sessions", createSessionData(as))
		mutating.DELETE("/sessions", deleteSessionData(as))
		mutating.DELETE("/sessions/all", deleteAllSessionData(as))
	}

	// Dashboard series endpoints
	dashboard := router.Group("/dashboard/v1")
	{
		dashboard.GET("/zscores", groupedZScores(as))
		dashboard.GET("/frequencies", stackedFrequencies(as))
		dashboard.GET("/proportions", bandProportions(as))
		dashboard.GET("/trends", zScoreTrends(as))
		dashboard.GET("/sessions/:sessionNumber/summary", sessionSummary(as))
	}

	return router
}

func setupSignalHandler(as *AppState, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if err := as.DB.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}

		done <- struct{}{}
	}()

	return done
}

// Session data handlers

func listSessionData(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			badRequestResponse(c, "user_id is required")
			return
		}

		data, err := as.SessionService.ListSessionData(c.Request.Context(), userID)
		if err != nil {
			as.Logger.Error("Failed to list session data", zap.String("user_id", userID), zap.Error(err))
			errorResponse(c, "There was an issue when retrieving the session data.")
			return
		}

		jsonWithDataResponse(c, http.StatusOK, "Success", "Data retrieved successfully.", data)
	}
}

func createSessionData(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessions.CreateSessionDataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestResponse(c, "Invalid request body")
			return
		}

		_, err := as.SessionService.ReplaceSessionData(c.Request.Context(), &req)
		if err != nil {
			if sessions.IsValidationError(err) {
				badRequestResponse(c, err.Error())
				return
			}
			as.Logger.Error("Failed to replace session data",
				zap.String("user_id", req.UserID),
				zap.Int("session_number", req.SessionNumber),
				zap.Error(err))
			errorResponse(c, "There was an issue when inserting the session data.")
			return
		}

		jsonResponse(c, http.StatusOK, "Saved!", "Data inserted into the database.")
	}
}

func deleteSessionData(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessions.DeleteSessionDataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestResponse(c, "Invalid request body")
			return
		}

		deleted, err := as.SessionService.DeleteSessionData(c.Request.Context(), &req)
		if err != nil {
			if sessions.IsValidationError(err) {
				badRequestResponse(c, err.Error())
				return
			}
			as.Logger.Error("Failed to delete session data",
				zap.String("user_id", req.UserID),
				zap.Int("session_number", req.SessionNumber),
				zap.Error(err))
			errorResponse(c, "There was an issue when deleting the session data.")
			return
		}

		// A miss is still success; the message tells the two cases apart
		if !deleted {
			jsonResponse(c, http.StatusOK, "Success", "Session data was not found, so no data was deleted.")
			return
		}

		jsonResponse(c, http.StatusOK, "Success",
			fmt.Sprintf("Session %d has been deleted from the database", req.SessionNumber))
	}
}

func deleteAllSessionData(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessions.DeleteAllDataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequestResponse(c, "Invalid request body")
			return
		}

		if err := as.SessionService.DeleteAllSessionData(c.Request.Context(), &req); err != nil {
			if sessions.IsValidationError(err) {
				badRequestResponse(c, err.Error())
				return
			}
			as.Logger.Error("Failed to delete all session data",
				zap.String("user_id", req.UserID),
				zap.Error(err))
			errorResponse(c, "There was an issue when deleting all data.")
			return
		}

		jsonResponse(c, http.StatusOK, "Success", "All data deleted from the database.")
	}
}

// Dashboard handlers

// parseFilter builds the series filter from query parameters: from/to bound
// the session number range, bands and lobes are comma-separated selections.
// An absent parameter leaves that criterion inactive; an explicitly empty
// one selects nothing.
func parseFilter(c *gin.Context) (analytics.Filter, error) {
	var filter analytics.Filter

	fromStr, hasFrom := c.GetQuery("from")
	toStr, hasTo := c.GetQuery("to")
	if hasFrom || hasTo {
		filter.Range = &analytics.SessionRange{}
		if hasFrom {
			from, err := strconv.Atoi(fromStr)
			if err != nil {
				return filter, fmt.Errorf("from must be an integer")
			}
			filter.Range.Start = &from
		}
		if hasTo {
			to, err := strconv.Atoi(toStr)
			if err != nil {
				return filter, fmt.Errorf("to must be an integer")
			}
			filter.Range.End = &to
		}
	}

	if bandsStr, ok := c.GetQuery("bands"); ok {
		var bands []sessions.Band
		for _, name := range strings.Split(bandsStr, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			band := sessions.Band(name)
			if !band.Valid() {
				return filter, fmt.Errorf("unknown brainwave band: %s", name)
			}
			bands = append(bands, band)
		}
		filter.Bands = analytics.SelectBands(bands...)
	}

	if lobesStr, ok := c.GetQuery("lobes"); ok {
		var lobes []sessions.Lobe
		for _, name := range strings.Split(lobesStr, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			lobes = append(lobes, sessions.Lobe(name))
		}
		filter.Lobes = analytics.SelectLobes(lobes...)
	}

	return filter, nil
}

// serveSeries runs one engine computation and maps its outcome onto the
// response envelope.
func serveSeries(as *AppState, c *gin.Context, compute func(ctx context.Context, userID string, filter analytics.Filter) (interface{}, error)) {
	userID := c.Query("user_id")
	if userID == "" {
		badRequestResponse(c, "user_id is required")
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	data, err := compute(c.Request.Context(), userID, filter)
	if err != nil {
		switch {
		case analytics.IsNoMatchingData(err):
			noDataResponse(c, "No data matched the current filters.")
		case analytics.IsDataUnavailable(err):
			as.Logger.Error("Session data unavailable", zap.String("user_id", userID), zap.Error(err))
			errorResponse(c, "There was an issue when retrieving the session data.")
		case sessions.IsValidationError(err):
			badRequestResponse(c, err.Error())
		default:
			as.Logger.Error("Failed to compute dashboard series", zap.String("user_id", userID), zap.Error(err))
			errorResponse(c, "There was an issue when computing the dashboard data.")
		}
		return
	}

	jsonWithDataResponse(c, http.StatusOK, "Success", "Data retrieved successfully.", data)
}

func groupedZScores(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveSeries(as, c, func(ctx context.Context, userID string, filter analytics.Filter) (interface{}, error) {
			return as.Engine.GroupedZScores(ctx, userID, filter)
		})
	}
}

func stackedFrequencies(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveSeries(as, c, func(ctx context.Context, userID string, filter analytics.Filter) (interface{}, error) {
			return as.Engine.StackedFrequencies(ctx, userID, filter)
		})
	}
}

func bandProportions(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveSeries(as, c, func(ctx context.Context, userID string, filter analytics.Filter) (interface{}, error) {
			return as.Engine.Proportions(ctx, userID, filter)
		})
	}
}

func zScoreTrends(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveSeries(as, c, func(ctx context.Context, userID string, filter analytics.Filter) (interface{}, error) {
			return as.Engine.Trends(ctx, userID, filter)
		})
	}
}

func sessionSummary(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			badRequestResponse(c, "user_id is required")
			return
		}

		sessionNumber, err := strconv.Atoi(c.Param("sessionNumber"))
		if err != nil || sessionNumber <= 0 {
			badRequestResponse(c, "sessionNumber must be a positive integer")
			return
		}

		summary, err := as.Engine.SessionSummary(c.Request.Context(), userID, sessionNumber)
		if err != nil {
			switch {
			case analytics.IsNoMatchingData(err):
				noDataResponse(c, "No data matched the current filters.")
			case analytics.IsDataUnavailable(err):
				as.Logger.Error("Session data unavailable", zap.String("user_id", userID), zap.Error(err))
				errorResponse(c, "There was an issue when retrieving the session data.")
			default:
				as.Logger.Error("Failed to compute session summary",
					zap.String("user_id", userID),
					zap.Int("session_number", sessionNumber),
					zap.Error(err))
				errorResponse(c, "There was an issue when computing the dashboard data.")
			}
			return
		}

		jsonWithDataResponse(c, http.StatusOK, "Success", "Data retrieved successfully.", summary)
	}
}
