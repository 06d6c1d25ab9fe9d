package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ParameterType identifies the value type of a service parameter.
type ParameterType string

const (
	TypeInteger   ParameterType = "integer"
	TypeDecimal   ParameterType = "decimal"
	TypeText      ParameterType = "text"
	TypeFlag      ParameterType = "flag"
	TypeChoice    ParameterType = "choice"
	TypeFile      ParameterType = "file"
	TypeUndefined ParameterType = "undefined"
	// TypeUnknown marks parameter types this client does not recognize.
	// The raw server attributes are preserved in Parameter.Attributes.
	TypeUnknown ParameterType = "unknown"
)

// Parameter is one named, typed input slot of a service. Exactly one of the
// constraint fields is set, matching Type; the rest are nil. Parameters are
// immutable once decoded and identified by ID within their owning service.
type Parameter struct {
	ID          string
	Type        ParameterType
	Name        string
	Description string
	Required    bool
	Array       bool
	Default     any

	Integer *IntegerConstraints
	Decimal *DecimalConstraints
	Text    *TextConstraints
	Choice  *ChoiceConstraints
	File    *FileConstraints

	// Attributes holds the raw parameter object as sent by the server for
	// types the client does not recognize.
	Attributes map[string]any
}

// IntegerConstraints bounds an integer parameter. Nil pointers mean the bound
// is absent.
type IntegerConstraints struct {
	Min *int64 `json:"min"`
	Max *int64 `json:"max"`
}

// DecimalConstraints bounds a decimal parameter. Bounds are kept as exact
// decimals so that comparisons do not suffer binary float rounding.
type DecimalConstraints struct {
	Min          *decimal.Decimal `json:"min"`
	Max          *decimal.Decimal `json:"max"`
	MinExclusive bool             `json:"minExclusive"`
	MaxExclusive bool             `json:"maxExclusive"`
}

// TextConstraints bounds the length of a text parameter.
type TextConstraints struct {
	MinLength *int `json:"minLength"`
	MaxLength *int `json:"maxLength"`
}

// ChoiceConstraints enumerates the allowed values of a choice parameter.
type ChoiceConstraints struct {
	Choices []string `json:"choices"`
}

// FileConstraints annotates the expected content of a file parameter.
type FileConstraints struct {
	MediaType           string         `json:"mediaType"`
	MediaTypeParameters map[string]any `json:"mediaTypeParameters"`
}

// rawParameter mirrors the flat JSON layout of a parameter object. The typed
// constraint fields of Parameter are split out from it during decoding.
type rawParameter struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Required    *bool           `json:"required"`
	Array       bool            `json:"array"`
	Default     any             `json:"default"`
	Min         json.RawMessage `json:"min"`
	Max         json.RawMessage `json:"max"`
	MinExclusive bool           `json:"minExclusive"`
	MaxExclusive bool           `json:"maxExclusive"`
	MinLength   *int            `json:"minLength"`
	MaxLength   *int            `json:"maxLength"`
	Choices     []string        `json:"choices"`
	MediaType   string          `json:"mediaType"`
	MediaTypeParameters map[string]any `json:"mediaTypeParameters"`
}

// UnmarshalJSON decodes the flat parameter object and attaches the constraint
// struct matching its declared type. Parameters of unrecognized types are kept
// with Type set to the server-provided string and the raw object preserved in
// Attributes.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var raw rawParameter
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.ID = raw.ID
	p.Name = raw.Name
	p.Description = raw.Description
	p.Array = raw.Array
	p.Default = raw.Default
	// The server omits "required" for mandatory parameters.
	p.Required = raw.Required == nil || *raw.Required

	switch ParameterType(raw.Type) {
	case TypeInteger:
		p.Type = TypeInteger
		c := &IntegerConstraints{}
		if err := decodeBound(raw.Min, &c.Min); err != nil {
			return err
		}
		if err := decodeBound(raw.Max, &c.Max); err != nil {
			return err
		}
		p.Integer = c
	case TypeDecimal:
		p.Type = TypeDecimal
		c := &DecimalConstraints{
			MinExclusive: raw.MinExclusive,
			MaxExclusive: raw.MaxExclusive,
		}
		if err := decodeBound(raw.Min, &c.Min); err != nil {
			return err
		}
		if err := decodeBound(raw.Max, &c.Max); err != nil {
			return err
		}
		p.Decimal = c
	case TypeText:
		p.Type = TypeText
		p.Text = &TextConstraints{
			MinLength: raw.MinLength,
			MaxLength: raw.MaxLength,
		}
	case TypeFlag:
		p.Type = TypeFlag
	case TypeChoice:
		p.Type = TypeChoice
		p.Choice = &ChoiceConstraints{Choices: raw.Choices}
	case TypeFile:
		p.Type = TypeFile
		p.File = &FileConstraints{
			MediaType:           raw.MediaType,
			MediaTypeParameters: raw.MediaTypeParameters,
		}
	case TypeUndefined:
		p.Type = TypeUndefined
	default:
		p.Type = ParameterType(raw.Type)
		var attrs map[string]any
		if err := json.Unmarshal(data, &attrs); err != nil {
			return err
		}
		p.Attributes = attrs
	}

	return nil
}

// MarshalJSON renders the parameter back into the flat wire layout. It is
// the inverse of UnmarshalJSON and exists mainly for test fixtures and
// tooling that serve parameter schemas.
func (p *Parameter) MarshalJSON() ([]byte, error) {
	if p.Attributes != nil {
		return json.Marshal(p.Attributes)
	}

	out := map[string]any{
		"id":       p.ID,
		"type":     string(p.Type),
		"name":     p.Name,
		"required": p.Required,
	}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if p.Array {
		out["array"] = true
	}
	if p.Default != nil {
		out["default"] = p.Default
	}
	switch {
	case p.Integer != nil:
		if p.Integer.Min != nil {
			out["min"] = *p.Integer.Min
		}
		if p.Integer.Max != nil {
			out["max"] = *p.Integer.Max
		}
	case p.Decimal != nil:
		if p.Decimal.Min != nil {
			out["min"] = *p.Decimal.Min
		}
		if p.Decimal.Max != nil {
			out["max"] = *p.Decimal.Max
		}
		if p.Decimal.MinExclusive {
			out["minExclusive"] = true
		}
		if p.Decimal.MaxExclusive {
			out["maxExclusive"] = true
		}
	case p.Text != nil:
		if p.Text.MinLength != nil {
			out["minLength"] = *p.Text.MinLength
		}
		if p.Text.MaxLength != nil {
			out["maxLength"] = *p.Text.MaxLength
		}
	case p.Choice != nil:
		out["choices"] = p.Choice.Choices
	case p.File != nil:
		if p.File.MediaType != "" {
			out["mediaType"] = p.File.MediaType
		}
		if p.File.MediaTypeParameters != nil {
			out["mediaTypeParameters"] = p.File.MediaTypeParameters
		}
	}
	return json.Marshal(out)
}

// decodeBound parses an optional numeric bound into the destination pointer,
// leaving it nil when the field is absent or null.
func decodeBound[T any](data json.RawMessage, dst **T) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	*dst = v
	return nil
}
