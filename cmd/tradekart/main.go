package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tradekart/tradekart/app/repository"
	"github.com/tradekart/tradekart/internal/pkg/cache"
	"github.com/tradekart/tradekart/internal/pkg/database"
	"github.com/tradekart/tradekart/internal/pkg/env"
	"github.com/tradekart/tradekart/internal/pkg/events"
	"github.com/tradekart/tradekart/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	events.SetupEmitter(zapLogger)
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{
		AppName:   "tradekart",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// SWAGGER / OPENAPI
	if specPath := findOpenAPISpec(); specPath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: specPath,
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app)

	return app
}

// findOpenAPISpec locates the OpenAPI document relative to the working
// directory, which differs between `go run ./cmd/tradekart` and the container.
func findOpenAPISpec() string {
	candidates := []string{
		"./public/docs/v1/openapi.yml",
		"../../public/docs/v1/openapi.yml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	log.Println("OpenAPI spec not found, swagger UI disabled")
	return ""
}
