package openai

import "github.com/sashabaranov/go-openai/jsonschema"

func str() jsonschema.Definition { return jsonschema.Definition{Type: jsonschema.String} }
func num() jsonschema.Definition { return jsonschema.Definition{Type: jsonschema.Number} }

func enum(values ...string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Enum: values}
}

// object builds a strict object: every property is required and no others
// are allowed
func object(props map[string]jsonschema.Definition, order ...string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           props,
		Required:             order,
		AdditionalProperties: false,
	}
}

func arrayOf(item jsonschema.Definition) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Array, Items: &item}
}

// ExtractionSchema describes the answer the model must produce. The key
// order of the top level object is the order categories are streamed in.
func ExtractionSchema() *jsonschema.Definition {
	users := object(map[string]jsonschema.Definition{
		"name":        str(),
		"type":        enum("human", "robot", "system", "other"),
		"description": str(),
	}, "name", "type", "description")

	phases := object(map[string]jsonschema.Definition{
		"name":     str(),
		"order":    num(),
		"duration": str(),
	}, "name", "order", "duration")

	contexts := object(map[string]jsonschema.Definition{
		"name":        str(),
		"description": str(),
		"order":       num(),
	}, "name", "description", "order")

	nodes := object(map[string]jsonschema.Definition{
		"userName":     str(),
		"phaseName":    str(),
		"contextName":  str(),
		"action":       str(),
		"emotion":      enum("positive", "neutral", "negative"),
		"emotionScore": num(),
		"painPoint":    str(),
		"opportunity":  str(),
	}, "userName", "phaseName", "contextName", "action", "emotion", "emotionScore", "painPoint", "opportunity")

	connectors := object(map[string]jsonschema.Definition{
		"fromNodeIndex": num(),
		"toNodeIndex":   num(),
		"description":   str(),
	}, "fromNodeIndex", "toNodeIndex", "description")

	intersections := object(map[string]jsonschema.Definition{
		"phaseName":   str(),
		"contextName": str(),
		"userNames":   arrayOf(str()),
		"description": str(),
	}, "phaseName", "contextName", "userNames", "description")

	root := object(map[string]jsonschema.Definition{
		"users":         arrayOf(users),
		"phases":        arrayOf(phases),
		"contexts":      arrayOf(contexts),
		"nodes":         arrayOf(nodes),
		"connectors":    arrayOf(connectors),
		"intersections": arrayOf(intersections),
	}, "users", "phases", "contexts", "nodes", "connectors", "intersections")
	return &root
}
