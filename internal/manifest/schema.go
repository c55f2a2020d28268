package manifest

// matrixSchema guards manifest reads against hand-edited or truncated files.
// Toolchain versions may be empty (the tool was not installed at pin time);
// the revision fields are required.
const matrixSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["superset_sha", "superset_version", "superset_branch", "app_version", "build_timestamp"],
  "properties": {
    "superset_sha": {
      "type": "string",
      "minLength": 7,
      "pattern": "^[0-9a-f]+$"
    },
    "superset_version": {"type": "string", "minLength": 1},
    "superset_branch": {"type": "string", "minLength": 1},
    "python_version": {"type": "string"},
    "node_version": {"type": "string"},
    "npm_version": {"type": "string"},
    "app_version": {"type": "string", "minLength": 1},
    "build_timestamp": {
      "type": "string",
      "pattern": "^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}:\\d{2}Z$"
    },
    "build_host": {"type": "string"}
  },
  "additionalProperties": false
}`
