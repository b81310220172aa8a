// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package config holds the options that change how a script is parsed.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edmundito/agsscript/internal/exc"
	"github.com/edmundito/agsscript/internal/fs"
)

// Config is the set of parse options. The zero value is not the default; use
// Default.
type Config struct {
	// RecoverOnError collects errors and keeps parsing instead of stopping at
	// the first one. The partial tree is returned alongside the diagnostics.
	RecoverOnError bool `yaml:"recoverOnError"`
	// TrackTrivia attaches comments to the tokens that follow them.
	TrackTrivia bool `yaml:"trackTrivia"`
	// MaxErrors stops a recovering parse after this many errors. Zero means
	// no limit. Only valid together with RecoverOnError.
	MaxErrors int `yaml:"maxErrors"`
	// SourceEncoding is the character encoding of input files. "auto" reads
	// files that are not valid UTF-8 as Windows-1252. Empty means UTF-8.
	SourceEncoding string `yaml:"sourceEncoding"`
}

func Default() Config {
	return Config{
		RecoverOnError: false,
		TrackTrivia:    true,
		SourceEncoding: fs.EncodingAuto,
	}
}

// Validate rejects option combinations that cannot be honoured.
func (c Config) Validate() error {
	if c.MaxErrors < 0 {
		return exc.New(exc.Location{}, exc.CodeInvalidConfig, fmt.Sprintf("maxErrors must not be negative, got %d", c.MaxErrors))
	}
	if c.MaxErrors > 0 && !c.RecoverOnError {
		return exc.New(exc.Location{}, exc.CodeInvalidConfig, "maxErrors requires recoverOnError")
	}
	if c.SourceEncoding != "" && !fs.KnownEncoding(c.SourceEncoding) {
		return exc.New(exc.Location{}, exc.CodeInvalidConfig, fmt.Sprintf("unknown sourceEncoding %q", c.SourceEncoding))
	}
	return nil
}

// NonFatalCodes returns the exception codes a reporter must tolerate for this
// configuration.
func (c Config) NonFatalCodes() []string {
	if !c.RecoverOnError {
		return nil
	}
	return exc.RecoverableCodes()
}

// Load decodes a YAML document on top of the defaults. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func Load(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, exc.Wrap(exc.Location{}, exc.CodeInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadFile reads and decodes the YAML configuration at path.
func LoadFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, exc.Wrap(exc.Location{URI: path}, exc.CodeFileNotFound, err)
		}
		return Config{}, exc.WrapUnknown(exc.Location{URI: path}, err)
	}
	c, err := Load(bytes.NewReader(b))
	if err != nil {
		var e exc.Exception
		if errors.As(err, &e) {
			return Config{}, exc.Wrap(exc.Location{URI: path}, e.Code(), e)
		}
		return Config{}, err
	}
	return c, nil
}
