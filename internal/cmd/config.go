package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/buzzin/internal/game"
)

// Config is the optional YAML config for round timing. Every field
// falls back to the production default when absent.
type Config struct {
	Game struct {
		QuestionReadMs   int `yaml:"question_read_ms"`
		ButtonDelayMinMs int `yaml:"button_delay_min_ms"`
		ButtonDelayMaxMs int `yaml:"button_delay_max_ms"`
		PressWindowMs    int `yaml:"press_window_ms"`
		AnswerTimeoutMs  int `yaml:"answer_timeout_ms"`
		BaseScore        int `yaml:"base_score"`
		ResultPauseMs    int `yaml:"result_pause_ms"`
		NextRoundDelayMs int `yaml:"next_round_delay_ms"`
		ReopenDelayMs    int `yaml:"reopen_delay_ms"`
		DedupeTTLMs      int `yaml:"dedupe_ttl_ms"`
	} `yaml:"game"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// gameConfig merges the YAML overrides onto the defaults.
func gameConfig(cfg *Config) game.Config {
	gc := game.DefaultConfig()
	if cfg == nil {
		return gc
	}
	applyMs(&gc.QuestionRead, cfg.Game.QuestionReadMs)
	applyMs(&gc.ButtonDelayMin, cfg.Game.ButtonDelayMinMs)
	applyMs(&gc.ButtonDelayMax, cfg.Game.ButtonDelayMaxMs)
	applyMs(&gc.PressWindow, cfg.Game.PressWindowMs)
	applyMs(&gc.AnswerTimeout, cfg.Game.AnswerTimeoutMs)
	if cfg.Game.BaseScore > 0 {
		gc.BaseScore = cfg.Game.BaseScore
	}
	applyMs(&gc.ResultPause, cfg.Game.ResultPauseMs)
	applyMs(&gc.NextRoundDelay, cfg.Game.NextRoundDelayMs)
	applyMs(&gc.ReopenDelay, cfg.Game.ReopenDelayMs)
	applyMs(&gc.DedupeTTL, cfg.Game.DedupeTTLMs)
	return gc
}

func applyMs(dst *time.Duration, ms int) {
	if ms > 0 {
		*dst = time.Duration(ms) * time.Millisecond
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
