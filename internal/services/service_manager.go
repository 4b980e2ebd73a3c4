package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/crypticandwired/StudentFeedback/internal/auth"
	"github.com/crypticandwired/StudentFeedback/internal/cache"
	"github.com/crypticandwired/StudentFeedback/internal/events"
	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Analytics cache tuning
	AnalyticsCacheTTL time.Duration

	// Export tuning
	ExportBatchSize int

	DefaultTimeout time.Duration
}

// ServiceManagerDeps bundles the shared dependencies every service draws from.
type ServiceManagerDeps struct {
	DB        *gorm.DB
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	JWT       *auth.JWTService
	Publisher events.EventPublisher
	Cache     *cache.CacheManager
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceManagerDeps
	config ServiceManagerConfig

	// Service instances
	authService      AuthService
	userService      UserService
	courseService    CourseService
	feedbackService  FeedbackService
	analyticsService AnalyticsService
	exportService    ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceManagerDeps, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceManagerDeps) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		AnalyticsCacheTTL:  5 * time.Minute,
		ExportBatchSize:    500,
		DefaultTimeout:     30 * time.Second,
	}

	return NewServiceManager(deps, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	sm.authService = NewAuthService(sm.deps.Repo, sm.deps.Logger, sm.deps.Validator, sm.deps.JWT)
	sm.deps.Logger.Info("Auth service initialized")

	sm.userService = NewUserService(sm.deps.Repo, sm.deps.DB, sm.deps.Logger, sm.deps.Validator, sm.deps.Cache)
	sm.deps.Logger.Info("User service initialized")

	sm.courseService = NewCourseService(sm.deps.Repo, sm.deps.Logger, sm.deps.Validator, sm.deps.Cache)
	sm.deps.Logger.Info("Course service initialized")

	sm.feedbackService = NewFeedbackService(sm.deps.Repo, sm.deps.Logger, sm.deps.Validator, sm.deps.Publisher, sm.deps.Cache)
	sm.deps.Logger.Info("Feedback service initialized")

	sm.analyticsService = NewAnalyticsService(sm.deps.Repo, sm.deps.Logger, sm.deps.Cache, sm.config.AnalyticsCacheTTL)
	sm.deps.Logger.Info("Analytics service initialized")

	sm.exportService = NewExportService(sm.deps.Repo, sm.deps.Logger, sm.deps.Validator, sm.config.ExportBatchSize)
	sm.deps.Logger.Info("Export service initialized")

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.userService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.courseService
}

func (sm *serviceManager) Feedback() FeedbackService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.feedbackService
}

func (sm *serviceManager) Analytics() AnalyticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.analyticsService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.exportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	if sm.deps.Cache != nil {
		if err := sm.deps.Cache.HealthCheck(ctx); err != nil {
			sm.deps.Logger.Warn("Cache health check failed", "error", err)
		}
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if repoManager, ok := sm.deps.Repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.deps.Logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}
