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
	"strings"

	"github.com/spf13/cobra"
)

var (
	analyzeInputFile  string
	analyzeOutputFile string
	analyzeSourceLang string
	analyzeNoGrammar  bool
	analyzeProvider   string
	analyzeModel      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Correct and sentence-split a document without translating",
	Long: `Run only the source-language half of the pipeline: grammar correction
followed by sentence splitting. Useful for checking what the translation
step would receive, or for producing a sentence inventory of a document.

Sentences are printed one per line to stdout, or written to a file
with -o.

Example:
  pipetran analyze -i essay.txt -s en
  pipetran analyze -i essay.txt --no-grammar -o sentences.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		applyOverrides(settings, analyzeProvider, analyzeModel, 0, false)

		text, err := readDocument(analyzeInputFile)
		if err != nil {
			return err
		}

		ctx := context.Background()
		sourceLang := resolveSourceLang(analyzeSourceLang, text)

		// The translation step never runs here, so the engine is irrelevant
		// and its credentials should not be required.
		settings.Engine = "llm"

		pipe, err := newPipeline(ctx, settings, nil, 0)
		if err != nil {
			return err
		}

		analysis, err := pipe.Analyze(ctx, text, sourceLang, !analyzeNoGrammar)
		if err != nil {
			return err
		}

		out := strings.Join(analysis.Sentences, "\n")
		if out != "" {
			out += "\n"
		}
		if analyzeOutputFile != "" {
			if err := os.WriteFile(analyzeOutputFile, []byte(out), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
		} else {
			fmt.Print(out)
		}

		fmt.Fprintf(os.Stderr, "%d sentences\n", len(analysis.Sentences))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeInputFile, "input", "i", "", "Input file to analyze (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "output", "o", "", "Write sentences to this file instead of stdout")
	analyzeCmd.Flags().StringVarP(&analyzeSourceLang, "source", "s", "auto", "Source language code")
	analyzeCmd.Flags().BoolVar(&analyzeNoGrammar, "no-grammar", false, "Skip grammar correction, only split sentences")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "LLM provider for grammar correction")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "LLM model for grammar correction")

	analyzeCmd.MarkFlagRequired("input")
}
