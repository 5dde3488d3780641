package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Configuration keys. Per-step variants are the same names prefixed with the
// step, e.g. grammar_llm_provider, translation_llm_model,
// adjustment_llm_temperature. Environment variables carry the PIPETRAN_
// prefix (PIPETRAN_LLM_PROVIDER, PIPETRAN_GRAMMAR_LLM_MODEL, ...).
const (
	keyProvider    = "llm_provider"
	keyModel       = "llm_model"
	keyTemperature = "llm_temperature"
	keyMaxTokens   = "llm_max_tokens"

	keyEngine            = "translation_engine"
	keyGoogleCredentials = "google_credentials"
	keyDBPath            = "db_path"
)

const (
	envPrefix = "PIPETRAN"

	systemDefaultProvider = "gemini"
	defaultEngine         = "llm"
	defaultDBPath         = "./data/pipetran.db"
)

// Load reads configuration once at startup: an optional YAML file, overlaid
// by PIPETRAN_* environment variables. The result is a plain value with no
// remaining viper state, so resolution stays testable and reentrant.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Steps:           make(map[string]StepSetting, len(Steps)),
		DefaultProvider: systemDefaultProvider,
		Engine:          defaultEngine,
		DBPath:          defaultDBPath,
	}

	var err error
	if s.Global, err = readStepSetting(v, ""); err != nil {
		return nil, err
	}
	for _, step := range Steps {
		setting, err := readStepSetting(v, step+"_")
		if err != nil {
			return nil, err
		}
		s.Steps[step] = setting
	}

	if engine := v.GetString(keyEngine); engine != "" {
		s.Engine = engine
	}
	if creds := v.GetString(keyGoogleCredentials); creds != "" {
		s.GoogleCredentials = creds
	}
	if dbPath := v.GetString(keyDBPath); dbPath != "" {
		s.DBPath = dbPath
	}

	return s, nil
}

// readStepSetting reads one fallback level. An empty value means "unset";
// malformed numeric values are configuration errors rather than silent
// fallthrough.
func readStepSetting(v *viper.Viper, prefix string) (StepSetting, error) {
	var setting StepSetting

	if raw := v.GetString(prefix + keyProvider); raw != "" {
		value := strings.ToLower(raw)
		setting.Provider = &value
	}
	if raw := v.GetString(prefix + keyModel); raw != "" {
		value := raw
		setting.Model = &value
	}
	if raw := v.GetString(prefix + keyTemperature); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return setting, fmt.Errorf("invalid %s%s %q: %w", prefix, keyTemperature, raw, err)
		}
		setting.Temperature = &value
	}
	if raw := v.GetString(prefix + keyMaxTokens); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return setting, fmt.Errorf("invalid %s%s %q: %w", prefix, keyMaxTokens, raw, err)
		}
		setting.MaxTokens = &value
	}

	return setting, nil
}
