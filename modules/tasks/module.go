package tasks

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/localstore"
	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module owns the task table and the task service.
type Module struct {
	db       *gorm.DB
	service  *Service
	dbPath   string
	localMod *localstore.Module
	cacheMod *cache.Module
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the tasks module. The local store and cache modules
// must start before this one.
func NewModule(localMod *localstore.Module, cacheMod *cache.Module) *Module {
	dbPath := os.Getenv("TASK_DB_PATH")
	if dbPath == "" {
		dbPath = "task_manager.db"
	}
	return &Module{
		dbPath:   dbPath,
		localMod: localMod,
		cacheMod: cacheMod,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "tasks"
}

// Dependencies returns the list of module dependencies. They order the
// framework's startup so the cache and local store exist before the
// service is built.
func (m *Module) Dependencies() []string {
	return []string{"cache", "localstore"}
}

// SetDependencyServiceContainer receives service containers from
// dependencies. Wiring happens through the constructor references, so
// the containers are not used.
func (m *Module) SetDependencyServiceContainer(string, mono.ServiceContainer) {}

// Start opens the database, migrates the task table and builds the
// service.
func (m *Module) Start(_ context.Context) error {
	store := m.localMod.Store()
	taskCache := m.cacheMod.Cache()
	if store == nil || taskCache == nil {
		return fmt.Errorf("localstore and cache modules must start before tasks")
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(m.dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewService(NewRepository(db), store, taskCache)

	log.Printf("[tasks] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[tasks] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// Service returns the task service. Valid after Start.
func (m *Module) Service() *Service {
	return m.service
}

// sqliteDSN appends a busy timeout so concurrent writers to the shared
// database file back off instead of failing with "database is locked".
func sqliteDSN(path string) string {
	return path + "?_busy_timeout=5000"
}
