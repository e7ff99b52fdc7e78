package llm

import (
	"github.com/google/generative-ai-go/genai"
)

// SchemaType is the JSON type of a schema node
type SchemaType string

// Schema node types
const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the JSON a model must return.
// It is converted to the provider's native schema when a request is made and
// can also be rendered as a JSON Schema document for local validation.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string

	// Bounds are not sent to the provider; they only appear in JSONSchema.
	Minimum *float64
	Maximum *float64
}

// ToGenai converts the schema into a Gemini response schema.
func (s *Schema) ToGenai() *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Items != nil {
		out.Items = s.Items.ToGenai()
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.ToGenai()
		}
	}
	return out
}

// JSONSchema renders the schema as a draft-07 JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	doc := s.jsonSchemaNode()
	doc["$schema"] = "http://json-schema.org/draft-07/schema#"
	return doc
}

func (s *Schema) jsonSchemaNode() map[string]any {
	node := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		node["description"] = s.Description
	}
	if s.Minimum != nil {
		node["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		node["maximum"] = *s.Maximum
	}
	if len(s.Required) > 0 {
		node["required"] = append([]string(nil), s.Required...)
	}
	if s.Items != nil {
		node["items"] = s.Items.jsonSchemaNode()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.jsonSchemaNode()
		}
		node["properties"] = props
	}
	return node
}

func genaiType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeString:
		return genai.TypeString
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
