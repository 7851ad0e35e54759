package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/papapumpkin/mnoda/internal/config"
	"github.com/papapumpkin/mnoda/internal/logging"
	"github.com/papapumpkin/mnoda/pkg/mnoda"
	"github.com/papapumpkin/mnoda/pkg/mnoda/codec"
)

// setup loads configuration and builds the logger shared by all commands.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// loadFile reads the document at path with the codec matching its extension.
func loadFile(path string) (*mnoda.Document, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	return codec.LoadDocument(path, c, nil)
}

// saveFile writes doc to path with the codec matching its extension, or the
// configured format when path has none. JSON output is indented when the
// indent setting is on.
func saveFile(doc *mnoda.Document, path string, cfg config.Config) error {
	name := strings.TrimPrefix(filepath.Ext(path), ".")
	if name == "" {
		name = cfg.Format
	}
	c, err := codec.ByName(name)
	if err != nil {
		return err
	}
	if c == codec.JSON && cfg.Indent {
		c = codec.IndentedJSON
	}
	return codec.SaveDocument(doc, path, c)
}
