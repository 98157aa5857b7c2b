// Package app wires configuration, MongoDB, object storage and the services
// shared by the HTTP server and the coursectl CLI.
package app

import (
	"context"
	"fmt"
	"lessonhub/internal/api"
	"lessonhub/internal/config"
	"lessonhub/internal/repository/mongo"
	"lessonhub/internal/service"
	"lessonhub/internal/storage"

	"github.com/charmbracelet/log"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config   config.Config
	Logger   *log.Logger
	DB       *mongodriver.Database
	Services api.Services

	client *mongodriver.Client
}

// Open connects to MongoDB and builds every service.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	location, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("app.timezone: %w", err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", "name", cfg.Database.Name)

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			_ = mongo.DisconnectDB(dbClient)
			return nil, fmt.Errorf("initialize S3 storage: %w", err)
		}
	} else {
		logger.Warn("s3.bucket_name is empty, PDF uploads are disabled")
	}

	// --- Initialize Repositories ---
	courseRepo := mongo.NewMongoCourseRepository(appDB)
	userRepo := mongo.NewMongoUserRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)

	// --- Initialize Services ---
	userService := service.NewUserService(userRepo, progressRepo, routineRepo, logger)
	sessionService, err := service.NewSessionService(userService, cfg.Admin.Password, cfg.JWT.Secret, cfg.JWT.Expiration)
	if err != nil {
		_ = mongo.DisconnectDB(dbClient)
		return nil, err
	}

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     appDB,
		Services: api.Services{
			Sessions: sessionService,
			Users:    userService,
			Courses:  service.NewCourseService(courseRepo, progressRepo, fileStorage, logger),
			Progress: service.NewProgressService(courseRepo, progressRepo, location, logger),
			Routines: service.NewRoutineService(routineRepo),
		},
		client: dbClient,
	}, nil
}

// EnsureIndexes creates the collection indexes.
func (a *App) EnsureIndexes(ctx context.Context) error {
	return mongo.EnsureIndexes(ctx, a.DB)
}

// Close disconnects from MongoDB.
func (a *App) Close() error {
	return mongo.DisconnectDB(a.client)
}
