package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Instructions renders s as plain-text prompt instructions listing every
// field with its type, whether it is required and its description.
func Instructions(s *Schema) string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else. ")
	b.WriteString("Do not add any text before or after it and do not wrap it in markdown code fences.\n")
	b.WriteString("Every field listed below is required unless marked optional, and no other fields are allowed.\n")
	if s.Description != "" {
		fmt.Fprintf(&b, "The object is %s.\n", lowerFirst(s.Description))
	}
	b.WriteString("Fields:\n")
	writeFields(&b, s, 0)
	return b.String()
}

func writeFields(b *strings.Builder, s *Schema, depth int) {
	switch s.Type {
	case TypeObject:
		for _, p := range s.Properties {
			writeField(b, p.Name, p.Schema, s.IsRequired(p.Name), depth)
		}
	case TypeArray:
		if s.Items != nil {
			writeFields(b, s.Items, depth)
		}
	}
}

func writeField(b *strings.Builder, name string, s *Schema, required bool, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "- %s (%s", name, typeLabel(s))
	if required {
		b.WriteString(", required")
	} else {
		b.WriteString(", optional")
	}
	if c := constraints(s); c != "" {
		b.WriteString(", ")
		b.WriteString(c)
	}
	b.WriteString(")")
	if s.Description != "" {
		b.WriteString(": ")
		b.WriteString(s.Description)
	}
	b.WriteString("\n")
	writeFields(b, s, depth+1)
}

func typeLabel(s *Schema) string {
	if s.Type == TypeArray && s.Items != nil {
		return "array of " + string(s.Items.Type) + "s"
	}
	return string(s.Type)
}

func constraints(s *Schema) string {
	var parts []string
	switch {
	case s.Minimum != nil && s.Maximum != nil:
		parts = append(parts, fmt.Sprintf("between %s and %s", formatFloat(*s.Minimum), formatFloat(*s.Maximum)))
	case s.Minimum != nil:
		parts = append(parts, fmt.Sprintf("at least %s", formatFloat(*s.Minimum)))
	case s.Maximum != nil:
		parts = append(parts, fmt.Sprintf("at most %s", formatFloat(*s.Maximum)))
	}
	if len(s.Enum) > 0 {
		parts = append(parts, "one of "+strings.Join(quoteAll(s.Enum), ", "))
	}
	if s.NonEmpty {
		parts = append(parts, "non-empty")
	}
	return strings.Join(parts, ", ")
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Quote(v)
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
