package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if cfg.Orchestrator.EarlyStopRatio < 0 || cfg.Orchestrator.EarlyStopRatio > 1 {
		errs = append(errs, fmt.Sprintf("orchestrator.early_stop_ratio must be in [0,1], got %v", cfg.Orchestrator.EarlyStopRatio))
	}
	if cfg.Orchestrator.DefaultTarget < 0 {
		errs = append(errs, "orchestrator.default_target must be >= 0")
	}
	if cfg.Orchestrator.ContactsPerCompany < 0 {
		errs = append(errs, "orchestrator.contacts_per_company must be >= 0")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
