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
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	configFile string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "pipetran",
	Short: "LLM Document Translation Pipeline",
	Long: `A CLI application that translates documents through a three-step LLM pipeline:
grammar correction in the source language, translation, and a fluency
adjustment pass in the target language. Each step can run on a different
provider (OpenAI, Anthropic, Google Gemini).

Use "pipetran run --help" for single-file translation options and
"pipetran bulk --help" for folder processing.`,
	Version: version,
}

func Execute() {
	// A .env file in the working directory supplies API keys during local
	// development; absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path for translation memory and run history")
}
