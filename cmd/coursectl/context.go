package main

import (
	"context"
	"lessonhub/internal/app"
	"lessonhub/internal/config"
	"lessonhub/internal/logging"
	"lessonhub/internal/service"
	"os"
	"strings"
	"sync"
)

// backend is what the commands need; tests supply one backed by in-memory stores.
type backend struct {
	Courses       service.CourseService
	Users         service.UserService
	Progress      service.ProgressService
	EnsureIndexes func(ctx context.Context) error
}

type commandContext struct {
	configDir *string
	logLevel  *string

	openOnce sync.Once
	backend  *backend
	openErr  error
	app      *app.App
}

func newCommandContext(configDir, logLevel *string) *commandContext {
	return &commandContext{configDir: configDir, logLevel: logLevel}
}

// withBackend returns a context that never touches MongoDB.
func withBackend(b *backend) *commandContext {
	dir, level := ".", ""
	c := newCommandContext(&dir, &level)
	c.openOnce.Do(func() { c.backend = b })
	return c
}

func (c *commandContext) ensureBackend(ctx context.Context) (*backend, error) {
	c.openOnce.Do(func() {
		cfg, err := config.LoadConfig(strings.TrimSpace(*c.configDir))
		if err != nil {
			c.openErr = err
			return
		}
		level := cfg.Log.Level
		if c.logLevel != nil && *c.logLevel != "" {
			level = *c.logLevel
		}
		application, err := app.Open(ctx, cfg, logging.New(os.Stderr, level))
		if err != nil {
			c.openErr = err
			return
		}
		c.app = application
		c.backend = &backend{
			Courses:       application.Services.Courses,
			Users:         application.Services.Users,
			Progress:      application.Services.Progress,
			EnsureIndexes: application.EnsureIndexes,
		}
	})
	return c.backend, c.openErr
}

func (c *commandContext) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}
