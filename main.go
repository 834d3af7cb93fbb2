package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"

	"github.com/example/task-manager/modules/api"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/cache"
	"github.com/example/task-manager/modules/localstore"
	"github.com/example/task-manager/modules/tasks"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Missing .env is fine, configuration falls back to process env.
	_ = godotenv.Load()

	log.Println("=== Task Manager ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	localModule := localstore.NewModule()
	cacheModule := cache.NewModule()
	tasksModule := tasks.NewModule(localModule, cacheModule)

	app.Register(auth.NewModule())
	app.Register(cacheModule)
	app.Register(localModule)
	app.Register(tasksModule)
	app.Register(api.NewModule(tasksModule)) // Depends on auth module

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("REST API Endpoints (http://localhost:3000):")
	log.Println("")
	log.Println("  Auth:")
	log.Println("  POST   /api/v1/auth/register    - Register a new user")
	log.Println("  POST   /api/v1/auth/login       - Login and get tokens")
	log.Println("  POST   /api/v1/auth/refresh     - Refresh access token")
	log.Println("  GET    /api/v1/profile          - Current user profile (Bearer token)")
	log.Println("")
	log.Println("  Tasks (Bearer token optional; anonymous requests use the local store):")
	log.Println("  GET    /api/v1/tasks            - List with ?status= &search= &sort=")
	log.Println("  POST   /api/v1/tasks            - Create a task")
	log.Println("  PATCH  /api/v1/tasks/:id        - Edit a task")
	log.Println("  POST   /api/v1/tasks/:id/toggle - Toggle completion")
	log.Println("  DELETE /api/v1/tasks/:id        - Delete a task")
	log.Println("  GET    /api/v1/tasks/stats      - Task counters")
	log.Println("  GET    /api/v1/tasks/export     - Download tasks as JSON")
	log.Println("  POST   /api/v1/tasks/import     - Upload a previously exported file")
	log.Println("")
	log.Println("  GET    /health                  - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
