package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/config"
	"github.com/PhelGc/fieldops/internal/database"
	"github.com/PhelGc/fieldops/internal/discord"
	"github.com/PhelGc/fieldops/internal/evaluator"
	"github.com/PhelGc/fieldops/internal/importer"
	"github.com/PhelGc/fieldops/internal/logging"
	"github.com/PhelGc/fieldops/internal/repository"
	"github.com/PhelGc/fieldops/internal/review"
	"github.com/PhelGc/fieldops/internal/storage"
)

// app estado compartido por los comandos de una ejecución
type app struct {
	env *Env

	cfg      *config.Config
	logger   *zap.Logger
	store    storage.Store
	repo     *repository.Repository
	notifier discord.Notifier
	svc      *review.Service
}

// start carga configuración, logger, almacenamiento y servicios
func (a *app) start(ctx context.Context, logLevel string) error {
	cfg := a.env.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("error cargando configuración: %w", err)
		}
	}
	a.cfg = cfg

	a.logger = a.env.Logger
	if a.logger == nil {
		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		logger, err := logging.New(level, cfg.Log.Format)
		if err != nil {
			return err
		}
		a.logger = logger
	}

	store, err := openStore(ctx, cfg, a.logger)
	if err != nil {
		return err
	}
	a.store = store

	a.repo, err = repository.Open(ctx, store, repository.Options{
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
		Now:           a.env.Now,
		Logger:        a.logger.Named("repository"),
	})
	if err != nil {
		return fmt.Errorf("error cargando datos: %w", err)
	}

	analyzer, err := a.newAnalyzer(ctx)
	if err != nil {
		return err
	}

	a.notifier = a.env.Notifier
	if a.notifier == nil {
		a.notifier, err = discord.New(&discord.Config{
			BotToken:       cfg.Discord.BotToken,
			GuildID:        cfg.Discord.GuildID,
			Channels:       cfg.Discord.Channels,
			DefaultChannel: cfg.Discord.DefaultChannel,
		}, a.logger.Named("discord"))
		if err != nil {
			return err
		}
	}

	a.svc = review.New(a.repo, analyzer, a.notifier, review.Options{
		Normalizer:    importer.Normalizer{Now: a.env.Now},
		Concurrency:   cfg.Gemini.Concurrency,
		JiraFields:    cfg.Jira.Fields,
		DefaultVendor: cfg.Jira.DefaultVendor,
		Logger:        a.logger.Named("review"),
	})
	return nil
}

func (a *app) newAnalyzer(ctx context.Context) (evaluator.Analyzer, error) {
	cfg := a.cfg.Gemini

	prompts, err := evaluator.LoadPrompts(cfg.PromptPath)
	if err != nil {
		return nil, err
	}

	gen := a.env.Generator
	if gen == nil {
		if cfg.APIKey == "" {
			a.logger.Debug("GEMINI_API_KEY no configurada; análisis deshabilitado")
			gen = evaluator.Unavailable{}
		} else {
			gen, err = evaluator.NewGeminiGenerator(ctx, evaluator.GeminiOptions{
				APIKey:         cfg.APIKey,
				Model:          cfg.Model,
				ThinkingBudget: cfg.ThinkingBudget,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return evaluator.NewClient(gen, prompts, cfg.Timeout, a.logger.Named("evaluator")), nil
}

func (a *app) now() time.Time {
	if a.env.Now != nil {
		return a.env.Now()
	}
	return time.Now()
}

// stop cierra lo que start haya alcanzado a abrir
func (a *app) stop() {
	if a.notifier != nil && a.env.Notifier == nil {
		a.notifier.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Error cerrando almacenamiento", zap.Error(err))
		}
	}
	if a.logger != nil && a.env.Logger == nil {
		_ = a.logger.Sync()
	}
}

// openStore elige el backend según STORAGE_DRIVER
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "", "file":
		store, err := storage.NewFileStore(cfg.Storage.BasePath)
		if err != nil {
			return nil, fmt.Errorf("error inicializando storage: %w", err)
		}
		return store, nil
	case database.DriverSQLite, database.DriverMySQL:
		client, err := database.NewClient(ctx, &database.Config{
			Driver:   cfg.Storage.Driver,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
			Path:     cfg.Storage.SQLitePath,
		}, logger.Named("database"))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q (file, sqlite o mysql)", cfg.Storage.Driver)
	}
}
