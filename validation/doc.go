// Package validation checks request and configuration structs against
// `validate` struct tags and converts failures into INVALID_INPUT
// AppErrors with per-field details.
package validation
