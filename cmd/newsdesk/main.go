package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/NewsDesk/app/controllers"
	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/app/services"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/cache"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/database"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/imageprocessor"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/router"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/session"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/statistics"
)

func main() {
	app, repos, err := NewApplication(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	err = app.Listen(env.ListenAddr())
	if cerr := repos.Close(context.Background()); cerr != nil {
		log.Printf("Closing store: %v", cerr)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func NewApplication(ctx context.Context) (*fiber.App, *repository.Repositories, error) {
	env.SetupEnvFile()
	cacheClient := cache.SetupCache()

	factory := database.NewRepositoryFactory()
	repos, err := factory.GetRepositories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", factory.Driver(), err)
	}
	log.Printf("Using %s store", repos.Driver)

	hasher, err := services.NewPasswordHasher(env.GetEnv("PASSWORD_HASHING", services.PasswordPlain))
	if err != nil {
		return nil, nil, err
	}

	var statsCache statistics.Cache
	if cacheClient != nil {
		statsCache = cache.NewStore(cacheClient)
	}
	stats := statistics.NewService(repos, statsCache)
	news := services.NewNewsService(repos.News, imageprocessor.NewNormalizer(imageprocessor.LoadConfig()))
	questions := services.NewQuestionService(repos.Question)
	accounts := services.NewAccountService(repos.User, hasher)
	news.AfterWrite = stats.Invalidate
	questions.AfterWrite = stats.Invalidate
	accounts.AfterWrite = stats.Invalidate

	adminLogin := env.GetEnv("ADMIN_LOGIN", "admin")
	adminPassword := env.GetEnv("ADMIN_PASSWORD", "123")
	if err := accounts.EnsureAdmin(ctx, adminLogin, adminPassword); err != nil {
		return nil, nil, err
	}

	sessions := session.NewSessionStore(cacheClient)
	tokenSecret := env.GetEnv("JWT_SECRET", "")

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:   "NewsDesk",
		BodyLimit: env.GetEnvInt("BODY_LIMIT_MB", 50) * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())
	app.Use(cors.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			adminLogin: adminPassword,
		},
	}), monitor.New())

	// static front-end
	staticDir := env.GetEnv("STATIC_DIR", "./public")
	if _, err := os.Stat(staticDir); err == nil {
		app.Static("/", staticDir, fiber.Static{
			CacheDuration: 15 * time.Second,
			Compress:      true,
		})

		// SWAGGER / OPENAPI
		specPath := staticDir + "/docs/v1/openapi.yml"
		if _, err := os.Stat(specPath); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/docs/api/",
				FilePath: specPath,
				Path:     "v1",
			}))
		}
	} else {
		log.Printf("Static directory %s not found, serving API only", staticDir)
	}

	var limiterStorage fiber.Storage
	if cacheClient != nil {
		limiterStorage = session.NewRedisStorage(cacheClient)
	}

	// ROUTER
	router.InstallRouter(app, router.Deps{
		News:           controllers.NewNewsController(news),
		Questions:      controllers.NewQuestionController(questions),
		Auth:           controllers.NewAuthController(accounts, sessions, tokenSecret),
		System:         controllers.NewSystemController(stats, repos.Driver),
		Sessions:       sessions,
		TokenSecret:    tokenSecret,
		LimiterStorage: limiterStorage,
	})

	return app, repos, nil
}
