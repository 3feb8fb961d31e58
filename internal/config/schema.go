package config

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://schemas.digitalmediaserver.org/crowdinsync/config.json"

const schemaText = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["project", "files"],
  "properties": {
    "project": {"type": "string", "minLength": 1},
    "base_url": {"type": "string"},
    "api_key_env": {"type": "string", "minLength": 1},
    "root_branch": {"type": "string", "minLength": 1},
    "create_branch": {"type": "boolean"},
    "staging_dir": {"type": "string", "minLength": 1},
    "export_before_pull": {"type": "boolean"},
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["source_folder", "base_name"],
        "properties": {
          "source_folder": {"type": "string", "minLength": 1},
          "base_name": {"type": "string", "minLength": 1, "pattern": "^[^/\\\\]+$"},
          "remote_path": {"type": "string"},
          "export_pattern": {"type": "string"},
          "type": {"type": "string"},
          "title": {"type": "string"},
          "escape_quotes": {"type": "integer", "minimum": 0, "maximum": 3},
          "escape_special_characters": {"type": "integer", "minimum": 0, "maximum": 1},
          "update_option": {"enum": ["", "update_as_unapproved", "update_without_changes"]}
        }
      }
    },
    "status": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["file"],
        "properties": {
          "language": {"type": "string"},
          "file": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func projectSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaText))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
