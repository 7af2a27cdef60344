/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// manifestSchema validates deck.json before it is trusted; a manifest that
// fails validation is treated as corrupt and Open falls back to backups.
const manifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "kitedeck deck manifest",
  "type": "object",
  "required": ["kites", "currentKiteIndex", "currentTheme", "title", "totalDurationMinutes"],
  "properties": {
    "kites": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "contentBlocks", "createdAt", "updatedAt"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "contentBlocks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "type", "position"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "type": {"enum": ["h1", "h2", "h3", "h4", "text", "image"]},
                "position": {
                  "type": "object",
                  "required": ["x", "y", "width", "height"],
                  "properties": {
                    "x": {"type": "number"},
                    "y": {"type": "number"},
                    "width": {"type": "number"},
                    "height": {"type": "number"}
                  }
                },
                "content": {"type": "string"},
                "zIndex": {"type": "integer", "minimum": 1}
              }
            }
          },
          "backgroundColor": {"type": "string"},
          "speakerNotes": {"type": "string"},
          "themeOverride": {"type": "string"},
          "durationOverride": {"type": "integer", "minimum": 0}
        }
      }
    },
    "currentKiteIndex": {"type": "integer", "minimum": 0},
    "currentTheme": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "totalDurationMinutes": {"type": "number", "minimum": 0}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(manifestSchema)

// ValidateManifest checks raw manifest bytes against the embedded schema.
func ValidateManifest(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("manifest does not conform to schema: %s", errs[0])
		}
		return fmt.Errorf("manifest does not conform to schema")
	}
	return nil
}
