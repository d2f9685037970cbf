package toolretriever

import (
	"strings"

	"github.com/deepnoodle-ai/contextcore/schema"
)

// CompressionLevel selects how aggressively a tool's schema and
// descriptions are trimmed before being sent to the model.
type CompressionLevel int

const (
	// None passes the tool through unchanged.
	None CompressionLevel = iota
	// Moderate truncates descriptions and drops property examples.
	Moderate
	// Aggressive strips description, examples, and default at every level,
	// keeping only type, required, properties, and items.
	Aggressive
)

// Truncation budgets for [Moderate] compression.
const (
	moderateToolDescChars   = 100
	moderateSchemaRootChars = 120
	moderatePropertyChars   = 80
)

// CompressedTool is the result of applying a CompressionLevel to a Tool: it
// retains the original tool's identity, with only description/schema
// surface changed.
type CompressedTool struct {
	Name        string
	Description string
	Parameters  *schema.Schema
}

// Compress applies level to t, returning a new CompressedTool. t's own
// fields are never mutated.
func Compress(t Tool, level CompressionLevel) CompressedTool {
	switch level {
	case Aggressive:
		return CompressedTool{
			Name:       t.Name,
			Parameters: compressSchemaAggressive(t.Parameters),
		}
	case Moderate:
		return CompressedTool{
			Name:        t.Name,
			Description: truncateDescription(t.Description, moderateToolDescChars),
			Parameters:  compressSchemaModerate(t.Parameters),
		}
	default:
		return CompressedTool{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
	}
}

func compressSchemaModerate(s *schema.Schema) *schema.Schema {
	if s == nil {
		return nil
	}
	out := &schema.Schema{
		Type:                 s.Type,
		Description:          truncateDescription(s.Description, moderateSchemaRootChars),
		Required:             s.Required,
		AdditionalProperties: s.AdditionalProperties,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*schema.Property, len(s.Properties))
		for k, p := range s.Properties {
			out.Properties[k] = compressPropertyModerate(p)
		}
	}
	return out
}

func compressPropertyModerate(p *schema.Property) *schema.Property {
	if p == nil {
		return nil
	}
	out := &schema.Property{
		Type:        p.Type,
		Description: truncateDescription(p.Description, moderatePropertyChars),
		Enum:        p.Enum,
		Required:    p.Required,
		Default:     p.Default,
	}
	if p.Items != nil {
		out.Items = compressPropertyModerate(p.Items)
	}
	if len(p.Properties) > 0 {
		out.Properties = make(map[string]*schema.Property, len(p.Properties))
		for k, child := range p.Properties {
			out.Properties[k] = compressPropertyModerate(child)
		}
	}
	return out
}

func compressSchemaAggressive(s *schema.Schema) *schema.Schema {
	if s == nil {
		return nil
	}
	out := &schema.Schema{Type: s.Type, Required: s.Required}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*schema.Property, len(s.Properties))
		for k, p := range s.Properties {
			out.Properties[k] = compressPropertyAggressive(p)
		}
	}
	return out
}

func compressPropertyAggressive(p *schema.Property) *schema.Property {
	if p == nil {
		return nil
	}
	out := &schema.Property{Type: p.Type, Required: p.Required}
	if p.Items != nil {
		out.Items = compressPropertyAggressive(p.Items)
	}
	if len(p.Properties) > 0 {
		out.Properties = make(map[string]*schema.Property, len(p.Properties))
		for k, child := range p.Properties {
			out.Properties[k] = compressPropertyAggressive(child)
		}
	}
	return out
}

// truncateDescription shortens s when it exceeds max characters, preferring
// to cut at the last "." past half the budget, then at the last space, then
// a hard cut at max. The space and hard cuts append "...", so the result can
// be up to max+3 characters long.
func truncateDescription(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]

	half := max / 2
	if idx := strings.LastIndex(cut, "."); idx >= half {
		return cut[:idx+1]
	}
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return cut[:idx] + "..."
	}
	return cut + "..."
}
