// Package config loads the project file that describes which local resource
// files are synchronized and how.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/digitalmediaserver/crowdinsync/internal/langsync"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile       = "crowdin.yml"
	DefaultAPIKeyEnv  = "CROWDIN_API_KEY"
	DefaultRootBranch = "master"
	DefaultStagingDir = ".crowdinsync/staging"
)

// Config is the decoded project file.
type Config struct {
	Project          string          `yaml:"project"`
	BaseURL          string          `yaml:"base_url"`
	APIKeyEnv        string          `yaml:"api_key_env"`
	RootBranch       string          `yaml:"root_branch"`
	CreateBranch     *bool           `yaml:"create_branch"`
	StagingDir       string          `yaml:"staging_dir"`
	ExportBeforePull bool            `yaml:"export_before_pull"`
	Files            []FileSetConfig `yaml:"files"`
	Status           []StatusConfig  `yaml:"status"`

	// Dir is the directory holding the project file. Relative paths are
	// resolved against it.
	Dir string `yaml:"-"`
}

type FileSetConfig struct {
	SourceFolder            string `yaml:"source_folder"`
	BaseName                string `yaml:"base_name"`
	RemotePath              string `yaml:"remote_path"`
	ExportPattern           string `yaml:"export_pattern"`
	Type                    string `yaml:"type"`
	Title                   string `yaml:"title"`
	EscapeQuotes            *int   `yaml:"escape_quotes"`
	EscapeSpecialCharacters *int   `yaml:"escape_special_characters"`
	UpdateOption            string `yaml:"update_option"`
}

type StatusConfig struct {
	Language string `yaml:"language"`
	File     string `yaml:"file"`
}

// Load reads, validates and normalizes the project file at path. Every
// problem is reported as a *langsync.ConfigurationError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &langsync.ConfigurationError{Field: path, Reason: "project file does not exist"}
		}
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return Parse(data, dir)
}

// Parse validates and decodes a project file whose relative paths are
// anchored at dir.
func Parse(data []byte, dir string) (*Config, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, &langsync.ConfigurationError{Reason: err.Error()}
	}
	cfg.Dir = dir
	cfg.applyDefaults()
	return &cfg, nil
}

func validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &langsync.ConfigurationError{Reason: "invalid YAML: " + err.Error()}
	}
	if raw == nil {
		return &langsync.ConfigurationError{Reason: "project file is empty"}
	}
	// Round-trip through JSON so the validator sees JSON-typed values.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return &langsync.ConfigurationError{Reason: err.Error()}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return &langsync.ConfigurationError{Reason: err.Error()}
	}
	schema, err := projectSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &langsync.ConfigurationError{Field: instanceField(verr), Reason: strings.TrimSpace(verr.Error())}
		}
		return &langsync.ConfigurationError{Reason: err.Error()}
	}
	return nil
}

// instanceField names the deepest failing location, e.g. "files.0.base_name".
func instanceField(verr *jsonschema.ValidationError) string {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	return strings.Join(verr.InstanceLocation, ".")
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.APIKeyEnv) == "" {
		c.APIKeyEnv = DefaultAPIKeyEnv
	}
	if strings.TrimSpace(c.RootBranch) == "" {
		c.RootBranch = DefaultRootBranch
	}
	if c.CreateBranch == nil {
		create := true
		c.CreateBranch = &create
	}
	if strings.TrimSpace(c.StagingDir) == "" {
		c.StagingDir = DefaultStagingDir
	}
	c.StagingDir = c.resolve(c.StagingDir)
	for i := range c.Files {
		c.Files[i].SourceFolder = c.resolve(c.Files[i].SourceFolder)
	}
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.Dir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Dir, filepath.FromSlash(p))
}

// FileSets converts the configured file sets for the syncer.
func (c *Config) FileSets() []langsync.FileSet {
	out := make([]langsync.FileSet, 0, len(c.Files))
	for _, f := range c.Files {
		out = append(out, langsync.FileSet{
			SourceFolder:  f.SourceFolder,
			BaseName:      f.BaseName,
			RemotePath:    strings.Trim(f.RemotePath, "/"),
			ExportPattern: f.ExportPattern,
			Type:          f.Type,
			Title:         f.Title,
			Options: langsync.FileOptions{
				EscapeQuotes:            f.EscapeQuotes,
				EscapeSpecialCharacters: f.EscapeSpecialCharacters,
				UpdateOption:            f.UpdateOption,
			},
		})
	}
	return out
}

// StatusArtifacts converts the configured status documents for the syncer.
func (c *Config) StatusArtifacts() []langsync.StatusArtifact {
	out := make([]langsync.StatusArtifact, 0, len(c.Status))
	for _, s := range c.Status {
		out = append(out, langsync.StatusArtifact{Language: strings.TrimSpace(s.Language), File: s.File})
	}
	return out
}

// SyncerOptions assembles the syncer settings held in the project file. The
// project directory is protected from the pull purge.
// Branches and Logger are left for the caller.
func (c *Config) SyncerOptions() langsync.SyncerOptions {
	return langsync.SyncerOptions{
		RootBranch:       c.RootBranch,
		CreateBranch:     c.CreateBranch != nil && *c.CreateBranch,
		FileSets:         c.FileSets(),
		StagingDir:       c.StagingDir,
		ExportBeforePull: c.ExportBeforePull,
		StatusArtifacts:  c.StatusArtifacts(),
		ProtectedDirs:    []string{c.Dir},
	}
}
