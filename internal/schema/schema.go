// Package schema describes the structure a model response must follow. A
// single Schema value is rendered into prompt instructions, converted into a
// provider's structured-output schema and used to validate the raw response.
package schema

// Type is a JSON value type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Schema is one node of the contract tree.
type Schema struct {
	Type        Type
	Description string

	// Object nodes. Properties keep declaration order so the prompt and the
	// provider schema list fields the same way every time. Keys not listed
	// are rejected.
	Properties []Property
	Required   []string

	// Array nodes.
	Items *Schema

	// Scalar constraints.
	Enum     []string
	Minimum  *float64
	Maximum  *float64
	NonEmpty bool
}

// Property is a named child of an object node.
type Property struct {
	Name   string
	Schema *Schema
}

// Property returns the child schema named name, or nil.
func (s *Schema) Property(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// IsRequired reports whether name must be present on an object node.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Field is shorthand for building a Property.
func Field(name string, s *Schema) Property {
	return Property{Name: name, Schema: s}
}

// Object builds an object node where every property is required.
func Object(description string, props ...Property) *Schema {
	required := make([]string, 0, len(props))
	for _, p := range props {
		required = append(required, p.Name)
	}
	return &Schema{
		Type:        TypeObject,
		Description: description,
		Properties:  props,
		Required:    required,
	}
}

// ArrayOf builds an array node.
func ArrayOf(description string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: description, Items: items}
}

// String builds a string node.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Text builds a string node that must not be blank.
func Text(description string) *Schema {
	return &Schema{Type: TypeString, Description: description, NonEmpty: true}
}

// Integer builds an integer node bounded to [min, max].
func Integer(description string, min, max float64) *Schema {
	return &Schema{Type: TypeInteger, Description: description, Minimum: &min, Maximum: &max}
}

// NonNegative builds a number node with a lower bound of zero.
func NonNegative(description string) *Schema {
	zero := 0.0
	return &Schema{Type: TypeNumber, Description: description, Minimum: &zero}
}
