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

	"github.com/spf13/cobra"

	"github.com/valpere/pipetran/internal/pipeline"
	"github.com/valpere/pipetran/internal/store"
)

var (
	runInputFile  string
	runOutputFile string
	runSourceLang string
	runTargetLang string

	runProvider    string
	runModel       string
	runTemperature float64

	runNoGrammar  bool
	runNoGlossary bool
	runNoCache    bool
	runChunkSize  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Translate a single document through the pipeline",
	Long: `Translate one document through the full pipeline: grammar correction
in the source language, translation, then a fluency adjustment pass in
the target language.

Each step resolves its provider and model independently. Set
PIPETRAN_LLM_PROVIDER for a global choice, or per-step variables such as
PIPETRAN_GRAMMAR_LLM_MODEL and PIPETRAN_ADJUSTMENT_LLM_PROVIDER to mix
vendors within one run.

Example:
  pipetran run -i essay.txt -o essay.fr.txt -t fr
  pipetran run -i notes.md -o notes.uk.txt -s en -t uk --provider anthropic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runInputFile == runOutputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		settings, err := loadSettings()
		if err != nil {
			return err
		}
		applyOverrides(settings, runProvider, runModel, runTemperature, cmd.Flags().Changed("temperature"))

		text, err := readDocument(runInputFile)
		if err != nil {
			return err
		}

		ctx := context.Background()
		sourceLang := resolveSourceLang(runSourceLang, text)

		var db *store.Store
		if !runNoCache {
			db, err = openStore(settings)
			if err != nil {
				return err
			}
			defer db.Close()
		}

		pipe, err := newPipeline(ctx, settings, db, runChunkSize)
		if err != nil {
			return err
		}

		var glossary map[string]string
		if !runNoGlossary {
			glossary = loadGlossary(ctx, db, sourceLang, runTargetLang)
		}

		res, err := pipe.Run(ctx, pipeline.Request{
			Text:           text,
			SourceLang:     sourceLang,
			TargetLang:     runTargetLang,
			CorrectGrammar: !runNoGrammar,
			Glossary:       glossary,
		})
		if err != nil {
			return err
		}

		if res.FromCache {
			fmt.Fprintf(os.Stderr, "Using cached translation\n")
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}

		if dir := filepath.Dir(runOutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(runOutputFile, []byte(res.FinalText), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Successfully translated %s to %s\n", sourceLang, runTargetLang)
		fmt.Printf("Sentences: %d source, %d target\n", res.SourceCount(), res.TargetCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runInputFile, "input", "i", "", "Input file to translate (required)")
	runCmd.Flags().StringVarP(&runOutputFile, "output", "o", "", "Output file for translation (required)")
	runCmd.Flags().StringVarP(&runSourceLang, "source", "s", "auto", "Source language code")
	runCmd.Flags().StringVarP(&runTargetLang, "target", "t", "", "Target language code (required)")

	runCmd.Flags().StringVar(&runProvider, "provider", "", "LLM provider for all steps (openai, anthropic, gemini)")
	runCmd.Flags().StringVar(&runModel, "model", "", "LLM model for all steps (default: provider default)")
	runCmd.Flags().Float64Var(&runTemperature, "temperature", 0, "LLM temperature for all steps")

	runCmd.Flags().BoolVar(&runNoGrammar, "no-grammar", false, "Skip the grammar correction step")
	runCmd.Flags().BoolVar(&runNoGlossary, "no-glossary", false, "Ignore glossary terms for this run")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "Disable translation memory cache")
	runCmd.Flags().IntVar(&runChunkSize, "chunk-size", 0, "Split long texts into chunks of at most this many characters (0 = no chunking)")

	runCmd.MarkFlagRequired("input")
	runCmd.MarkFlagRequired("output")
	runCmd.MarkFlagRequired("target")
}
