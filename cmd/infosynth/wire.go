package main

import (
	"context"
	"path/filepath"

	"github.com/custodia-labs/infosynth/internal/adapters/driven/ai"
	"github.com/custodia-labs/infosynth/internal/adapters/driven/config/env"
	"github.com/custodia-labs/infosynth/internal/adapters/driven/config/file"
	"github.com/custodia-labs/infosynth/internal/adapters/driven/extraction"
	"github.com/custodia-labs/infosynth/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/infosynth/internal/adapters/driven/sheets"
	"github.com/custodia-labs/infosynth/internal/adapters/driven/tabular"
	"github.com/custodia-labs/infosynth/internal/adapters/driving/cli"
	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
	"github.com/custodia-labs/infosynth/internal/core/services"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// app composes adapters into services. dir is resolved by settings and
// reused for prompts.
type app struct {
	dir string
}

// settings builds the settings service from config.toml and .env files.
// A .env in the working directory wins over one in the config directory.
func (a *app) settings(configDir string) (driving.SettingsService, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	a.dir = configDir

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, err
	}
	secrets, err := env.NewSecretSource(env.DefaultFile, filepath.Join(configDir, env.DefaultFile))
	if err != nil {
		return nil, err
	}
	logger.Debug("Config file: %s", store.Path())

	return services.NewSettingsService(store, secrets), nil
}

// runtime builds the services one command needs.
func (a *app) runtime(ctx context.Context, settings *domain.AppSettings, needs cli.Needs) (*cli.Runtime, error) {
	files := tabular.NewFiles()

	var gateway driven.SheetGateway
	if needs.Sheets {
		gw, err := newSheetGateway(ctx, settings.Sheets)
		if err != nil {
			return nil, err
		}
		gateway = gw
	}

	rt := &cli.Runtime{
		Sources: services.NewSourceService(files, gateway),
		Export:  services.NewExportService(files, gateway),
	}

	if !needs.Pipeline {
		pipeline := services.NewRowPipeline(nil, nil, nil, settings.Pipeline)
		rt.Enricher, rt.Previewer = pipeline, pipeline
		return rt, nil
	}

	limiter := ratelimit.New(ratelimit.ConfigFrom(settings.Pipeline))
	search, err := ai.CreateSearchProvider(&settings.Search, limiter)
	if err != nil {
		return nil, err
	}
	llm, err := ai.CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(a.promptDir(), map[string]string{
		driven.PromptExtract: extraction.DefaultPrompt,
	})
	if err != nil {
		_ = llm.Close()
		return nil, err
	}

	logger.Debug("Search provider: %s, model: %s", search.Name(), llm.ModelName())
	pipeline := services.NewRowPipeline(search, extraction.New(llm, prompts), limiter, settings.Pipeline)
	rt.Enricher, rt.Previewer = pipeline, pipeline
	rt.Close = llm.Close
	return rt, nil
}

func (a *app) promptDir() string {
	if a.dir == "" {
		return ""
	}
	return filepath.Join(a.dir, "prompts")
}

func newSheetGateway(ctx context.Context, s domain.SheetsSettings) (*sheets.Gateway, error) {
	creds, err := sheets.LoadCredentials(ctx, s.CredentialsFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using service account %s", creds.Email())
	return sheets.New(ctx, sheets.Config{Credentials: creds})
}
