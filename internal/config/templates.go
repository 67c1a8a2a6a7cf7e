package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Decay Monitor Configuration

[simulation]
# Number of Monte Carlo paths per run
n_paths = 5000
# RNG seed; identical configs reproduce identical path matrices
seed = 42

[drag]
# Leverage multiplier of the instrument under diagnosis
leverage_k = 1.0
# Trailing window (trading days) for trend/drag reduction
lookback_window = 10
# Reserved for future drift correction
risk_free_rate = 0.0
# Worker goroutines for the per-path reduction; 0 = sequential
workers = 0

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
`

const credentialsTemplate = `# Decay Monitor Credentials
# Keep this file private (chmod 600).

[marketdata]
# Token for the marketdata.app options chain API
api_token = ""

[openai]
# Optional: enables the regime commentary agent
api_key = ""
model = "gpt-4o-mini"
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate, 0o644)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate, 0o600)
}

func writeTemplate(configDir, name, content string, perm os.FileMode) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s template: %w", name, err)
	}
	return nil
}
