// Package validation checks configuration and pipeline definitions.
//
// Validate runs go-playground/validator over `validate` struct tags and
// reports fields by their YAML keys:
//
//	type NodeDefinition struct {
//	    Name string `yaml:"name" validate:"required"`
//	}
//	err := validation.Validate(def) // INVALID_INPUT: nodes[1].name: is required
//
// A Validator collects the cross-field rules tags cannot express:
//
//	v := validation.New().Unique("nodes", names)
//	v.Each("outputs", def.Outputs, declared, "unknown node %q")
//	if appErr := v.Err(); appErr != nil { ... }
package validation
