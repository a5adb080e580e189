package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a weight document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// EncodeConfig serializes cfg. JSON output is indented by two spaces.
func EncodeConfig(cfg domain.WeightConfig, format Format) ([]byte, error) {
	if cfg.Weights == nil {
		cfg.Weights = map[string]domain.WeightVector{}
	}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to encode weights as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode weights as yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode weights as json: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// DecodeConfig parses a weight document. Syntax errors and non-finite or
// negative weights are reported as domain.ErrConfigCorrupt. A document
// without a weights field decodes to an empty configuration.
func DecodeConfig(data []byte, format Format) (domain.WeightConfig, error) {
	var cfg domain.WeightConfig
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return domain.WeightConfig{}, fmt.Errorf("%w: %v", domain.ErrConfigCorrupt, err)
	}

	for strategy, vec := range cfg.Weights {
		for sig, w := range vec {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return domain.WeightConfig{}, fmt.Errorf("%w: %s.%s=%v", domain.ErrConfigCorrupt, strategy, sig, w)
			}
		}
	}
	return cfg, nil
}

// Revision returns the blake3 digest of an encoded document.
func Revision(data []byte) string {
	hasher := blake3.New()
	_, _ = hasher.Write(data)
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
