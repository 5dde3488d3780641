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
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/pipetran/internal/bulk"
	"github.com/valpere/pipetran/internal/store"
)

var (
	bulkFolder     string
	bulkSourceLang string
	bulkTargetLang string

	bulkProvider    string
	bulkModel       string
	bulkTemperature float64

	bulkNoGrammar   bool
	bulkNoGlossary  bool
	bulkNoCache     bool
	bulkChunkSize   int
	bulkConcurrency int
	bulkTimeout     time.Duration
	bulkResume      string
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Translate every document in a folder",
	Long: `Translate all .txt and .md files in a folder through the pipeline.

Each file gets its own artifact directory next to it containing the
source and target sentence files (e.g. "English Sentences.txt" and
"French Sentences.txt" for en→fr). A cumulative translation_results.csv
at the folder root records the sentence counts per file.

One failing file does not stop the batch; its error is reported and the
remaining files are still processed.

A run ID is printed at the start. If the job is interrupted, use
--resume with that ID to skip files that already completed.

Example:
  pipetran bulk -f ./essays -t fr
  pipetran bulk -f ./essays -t fr --concurrency 4 --timeout 5m
  pipetran bulk -f ./essays -t fr --resume 4f1c2a...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		applyOverrides(settings, bulkProvider, bulkModel, bulkTemperature, cmd.Flags().Changed("temperature"))

		paths, err := bulk.Discover(bulkFolder)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no .txt or .md files found in %s", bulkFolder)
		}
		fmt.Fprintf(os.Stderr, "Found %d files in %s\n", len(paths), bulkFolder)

		ctx := context.Background()

		var db *store.Store
		if !bulkNoCache {
			db, err = openStore(settings)
			if err != nil {
				return err
			}
			defer db.Close()
		}
		if bulkResume != "" && db == nil {
			return fmt.Errorf("--resume requires the database (remove --no-cache)")
		}

		pipe, err := newPipeline(ctx, settings, db, bulkChunkSize)
		if err != nil {
			return err
		}

		// The folder's source language is detected per batch from the first
		// file, not per file, so every artifact shares one label.
		sourceLang := bulkSourceLang
		if sourceLang == "auto" {
			text, readErr := readDocument(paths[0])
			if readErr != nil {
				return readErr
			}
			sourceLang = resolveSourceLang(bulkSourceLang, text)
		}

		var glossary map[string]string
		if !bulkNoGlossary {
			glossary = loadGlossary(ctx, db, sourceLang, bulkTargetLang)
		}

		runner := bulk.New(pipe, db, bulk.Options{
			SourceLang:     sourceLang,
			CorrectGrammar: !bulkNoGrammar,
			Glossary:       glossary,
			Workers:        bulkConcurrency,
			FileTimeout:    bulkTimeout,
			ResumeID:       bulkResume,
		})

		report, err := runner.Run(ctx, paths, bulkTargetLang, bulkFolder)
		if err != nil {
			return err
		}
		if report.RunID != "" && bulkResume == "" {
			fmt.Fprintf(os.Stderr, "Run ID: %s (use --resume %s if interrupted)\n", report.RunID, report.RunID)
		}

		fmt.Printf("Processed %d files: %d succeeded, %d failed, %d skipped\n",
			len(report.Outcomes), report.Succeeded, report.Failed, report.Skipped)
		fmt.Printf("Summary: %s\n", report.SummaryPath)

		if report.Failed > 0 {
			for _, o := range report.Outcomes {
				if o.Err != nil {
					fmt.Fprintf(os.Stderr, "  failed: %s: %v\n", o.Path, o.Err)
				}
			}
			return fmt.Errorf("%d of %d files failed", report.Failed, len(report.Outcomes))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bulkCmd)

	bulkCmd.Flags().StringVarP(&bulkFolder, "folder", "f", "", "Folder containing documents to translate (required)")
	bulkCmd.Flags().StringVarP(&bulkSourceLang, "source", "s", "auto", "Source language code")
	bulkCmd.Flags().StringVarP(&bulkTargetLang, "target", "t", "fr", "Target language code")

	bulkCmd.Flags().StringVar(&bulkProvider, "provider", "", "LLM provider for all steps (openai, anthropic, gemini)")
	bulkCmd.Flags().StringVar(&bulkModel, "model", "", "LLM model for all steps (default: provider default)")
	bulkCmd.Flags().Float64Var(&bulkTemperature, "temperature", 0, "LLM temperature for all steps")

	bulkCmd.Flags().BoolVar(&bulkNoGrammar, "no-grammar", false, "Skip the grammar correction step")
	bulkCmd.Flags().BoolVar(&bulkNoGlossary, "no-glossary", false, "Ignore glossary terms for this batch")
	bulkCmd.Flags().BoolVar(&bulkNoCache, "no-cache", false, "Disable translation memory and run history")
	bulkCmd.Flags().IntVar(&bulkChunkSize, "chunk-size", 0, "Split long texts into chunks of at most this many characters (0 = no chunking)")
	bulkCmd.Flags().IntVar(&bulkConcurrency, "concurrency", 1, "Number of files to process in parallel")
	bulkCmd.Flags().DurationVar(&bulkTimeout, "timeout", 0, "Per-file time limit (e.g. 5m; 0 = no limit)")
	bulkCmd.Flags().StringVar(&bulkResume, "resume", "", "Resume a run by ID, skipping completed files")

	bulkCmd.MarkFlagRequired("folder")
}
