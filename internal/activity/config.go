// Package activity describes the app bundle, activity and work items that
// run the parameter update job on a design-automation engine.
package activity

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultOSSBaseURL = "https://developer.api.autodesk.com/oss/v2"

type Config struct {
	Engine        string `yaml:"engine"`
	EngineVersion int    `yaml:"engine_version"`
	BundleID      string `yaml:"bundle_id"`
	Label         string `yaml:"label"`
	Description   string `yaml:"description"`

	DocumentLocalName string `yaml:"document_local_name"`
	PathInZip         string `yaml:"path_in_zip"`
	ParamsLocalName   string `yaml:"params_local_name"`
	OutputLocalName   string `yaml:"output_local_name"`

	OSSBaseURL string `yaml:"oss_base_url"`
}

func DefaultConfig() Config {
	return Config{
		Engine:            "Autodesk.Inventor",
		EngineVersion:     24,
		BundleID:          "DaWrenchConfig",
		Label:             "alpha",
		Description:       "Batch update of assembly user parameters",
		DocumentLocalName: "Wrench",
		PathInZip:         "Wrench.iam",
		ParamsLocalName:   "documentParams.json",
		OutputLocalName:   "result.zip",
		OSSBaseURL:        DefaultOSSBaseURL,
	}
}

// LoadConfig reads a YAML override file on top of DefaultConfig. An empty
// path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read activity config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse activity config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Engine) == "" {
		return errors.New("engine is required")
	}
	if c.EngineVersion <= 0 {
		return errors.New("engine_version must be positive")
	}
	if strings.TrimSpace(c.BundleID) == "" {
		return errors.New("bundle_id is required")
	}
	if strings.TrimSpace(c.Label) == "" {
		return errors.New("label is required")
	}
	if strings.ContainsAny(c.BundleID+c.Label, ".+ ") {
		return fmt.Errorf("bundle_id and label must not contain '.', '+' or spaces")
	}
	if strings.TrimSpace(c.DocumentLocalName) == "" || strings.TrimSpace(c.ParamsLocalName) == "" || strings.TrimSpace(c.OutputLocalName) == "" {
		return errors.New("local names are required")
	}
	if strings.TrimSpace(c.OSSBaseURL) == "" {
		return errors.New("oss_base_url is required")
	}
	return nil
}

// EngineID is the engine reference, e.g. "Autodesk.Inventor+24".
func (c Config) EngineID() string {
	return fmt.Sprintf("%s+%d", c.Engine, c.EngineVersion)
}
