package server

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// intentSchema 入站消息格式；不符合的消息直接丢弃
const intentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"enum": ["join", "leave", "move", "pickup", "useItem", "rejoin"]},
    "dir": {"type": "integer", "minimum": 0, "maximum": 3},
    "seq": {"type": "integer", "minimum": 0},
    "profile": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1, "maxLength": 32},
        "color": {"type": "string", "pattern": "^[0-9a-fA-F]{3}([0-9a-fA-F]{3})?$"},
        "imageUrl": {"type": "string", "maxLength": 512}
      }
    }
  },
  "allOf": [
    {"if": {"properties": {"type": {"const": "move"}}}, "then": {"required": ["dir"]}},
    {"if": {"properties": {"type": {"enum": ["join", "rejoin"]}}}, "then": {"required": ["profile"]}}
  ]
}`

var intentValidator = jsonschema.MustCompileString("intent.schema.json", intentSchema)
