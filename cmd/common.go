/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valpere/pipetran/internal/config"
	"github.com/valpere/pipetran/internal/detector"
	"github.com/valpere/pipetran/internal/markdown"
	"github.com/valpere/pipetran/internal/pipeline"
	"github.com/valpere/pipetran/internal/secrets"
	"github.com/valpere/pipetran/internal/store"
	"github.com/valpere/pipetran/internal/validator"
)

// loadSettings reads the config file and environment, then applies the
// persistent --db override.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		settings.DBPath = dbPath
	}
	return settings, nil
}

// applyOverrides pushes command-line values into the global fallback level.
// Empty values leave the loaded configuration untouched.
func applyOverrides(settings *config.Settings, provider, model string, temperature float64, temperatureSet bool) {
	if provider != "" {
		settings.Global.Provider = &provider
	}
	if model != "" {
		settings.Global.Model = &model
	}
	if temperatureSet {
		settings.Global.Temperature = &temperature
	}
}

func openStore(settings *config.Settings) (*store.Store, error) {
	if dir := filepath.Dir(settings.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// newPipeline assembles the pipeline for run/bulk/analyze from settings and
// shared command flags. db may be nil to disable the translation memory.
func newPipeline(ctx context.Context, settings *config.Settings, db *store.Store, chunkSize int) (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{pipeline.WithValidation(validator.New())}
	if db != nil {
		opts = append(opts, pipeline.WithMemory(db))
	}
	if chunkSize > 0 {
		opts = append(opts, pipeline.WithChunking(chunkSize))
	}

	if settings.Engine == "google" {
		engine, err := pipeline.NewGoogleEngine(ctx, settings.GoogleCredentials)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithEngine(engine))
	}

	return pipeline.New(settings, secrets.Env{}, opts...), nil
}

// readDocument loads an input file, flattening markdown to plain text.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	if markdown.IsMarkdownPath(path) {
		return markdown.ToPlainText(data), nil
	}
	return string(data), nil
}

// resolveSourceLang replaces "auto" with a detected language code when the
// text gives the detector enough to work with.
func resolveSourceLang(lang, text string) string {
	if lang != "auto" {
		return lang
	}
	det := detector.New()
	if detected, ok := det.DetectISO(text); ok {
		fmt.Fprintf(os.Stderr, "Detected source language: %s\n", detected)
		return detected
	}
	fmt.Fprintf(os.Stderr, "Warning: could not detect source language\n")
	return ""
}

// loadGlossary fetches the glossary terms for a language pair; a nil store or
// an empty glossary yields nil.
func loadGlossary(ctx context.Context, db *store.Store, sourceLang, targetLang string) map[string]string {
	if db == nil {
		return nil
	}
	terms, err := db.GetGlossaryTerms(ctx, sourceLang, targetLang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load glossary: %v\n", err)
		return nil
	}
	if len(terms) > 0 {
		fmt.Fprintf(os.Stderr, "Using %d glossary terms\n", len(terms))
	}
	return terms
}
