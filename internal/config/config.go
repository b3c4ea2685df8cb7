package config

import (
  "os"
  "strings"
  "gopkg.in/yaml.v3"
  "github.com/shiftline/shiftline-backend/internal/logger"
  "github.com/shiftline/shiftline-backend/internal/utils"
)

// Config carries the non-secret server settings. Values come from an
// optional shiftline.yaml in the working directory; environment variables
// win over the file so deploys can override without editing it.
type Config struct {
  Port           string   `yaml:"port"`
  Mode           string   `yaml:"mode"`
  AllowedOrigins []string `yaml:"allowed_origins"`
  WorkerInterval int      `yaml:"worker_interval_seconds"`
}

func Load(path string, log *logger.Logger) *Config {
  cfg := &Config{
    Port:           "8080",
    Mode:           "dev",
    AllowedOrigins: []string{"http://localhost:5173"},
    WorkerInterval: 5,
  }

  if path == "" {
    path = "shiftline.yaml"
  }
  if raw, err := os.ReadFile(path); err == nil {
    if err := yaml.Unmarshal(raw, cfg); err != nil && log != nil {
      log.Warn("Failed to parse config file, using defaults", "path", path, "error", err)
    }
  }

  cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
  cfg.Mode = utils.GetEnv("APP_MODE", cfg.Mode, log)
  if origins := utils.GetEnv("ALLOWED_ORIGINS", "", log); origins != "" {
    cfg.AllowedOrigins = splitAndTrim(origins)
  }
  cfg.WorkerInterval = utils.GetEnvAsInt("WORKER_INTERVAL_SECONDS", cfg.WorkerInterval, log)
  return cfg
}

func splitAndTrim(s string) []string {
  var out []string
  for _, piece := range strings.Split(s, ",") {
    piece = strings.TrimSpace(piece)
    if piece != "" {
      out = append(out, piece)
    }
  }
  return out
}
