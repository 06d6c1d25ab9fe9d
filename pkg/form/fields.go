package form

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/bartongroup/slivka-go/pkg/model"
)

// checkValue validates a single scalar value against the parameter's type and
// constraints. It returns nil when the value is acceptable.
func checkValue(p *model.Parameter, value any) *ParameterError {
	switch p.Type {
	case model.TypeInteger:
		return checkInteger(p, value)
	case model.TypeDecimal:
		return checkDecimal(p, value)
	case model.TypeText:
		return checkText(p, value)
	case model.TypeFlag:
		return checkFlag(p, value)
	case model.TypeChoice:
		return checkChoice(p, value)
	case model.TypeFile:
		return checkFile(p, value)
	default:
		// Undefined and unrecognized types are passed through for the server
		// to judge.
		return nil
	}
}

func checkInteger(p *model.Parameter, value any) *ParameterError {
	n, ok := asInt64(value)
	if !ok {
		return &ParameterError{p.ID, fmt.Sprintf("%v is not an integer", value), CodeValue}
	}
	if c := p.Integer; c != nil {
		if c.Min != nil && n < *c.Min {
			return &ParameterError{p.ID, fmt.Sprintf("%d is less than the minimum %d", n, *c.Min), CodeMin}
		}
		if c.Max != nil && n > *c.Max {
			return &ParameterError{p.ID, fmt.Sprintf("%d exceeds the maximum %d", n, *c.Max), CodeMax}
		}
	}
	return nil
}

func checkDecimal(p *model.Parameter, value any) *ParameterError {
	d, ok := asDecimal(value)
	if !ok {
		return &ParameterError{p.ID, fmt.Sprintf("%v is not a decimal number", value), CodeValue}
	}
	if c := p.Decimal; c != nil {
		if c.Min != nil {
			cmp := d.Cmp(*c.Min)
			if cmp < 0 || (c.MinExclusive && cmp == 0) {
				return &ParameterError{p.ID, fmt.Sprintf("%s is below the minimum %s", d, c.Min), CodeMin}
			}
		}
		if c.Max != nil {
			cmp := d.Cmp(*c.Max)
			if cmp > 0 || (c.MaxExclusive && cmp == 0) {
				return &ParameterError{p.ID, fmt.Sprintf("%s is above the maximum %s", d, c.Max), CodeMax}
			}
		}
	}
	return nil
}

func checkText(p *model.Parameter, value any) *ParameterError {
	s, ok := value.(string)
	if !ok {
		return &ParameterError{p.ID, fmt.Sprintf("%v is not a string", value), CodeValue}
	}
	if c := p.Text; c != nil {
		if c.MinLength != nil && len(s) < *c.MinLength {
			return &ParameterError{p.ID, "text is too short", CodeMinLen}
		}
		if c.MaxLength != nil && len(s) > *c.MaxLength {
			return &ParameterError{p.ID, "text is too long", CodeMaxLen}
		}
	}
	return nil
}

func checkFlag(p *model.Parameter, value any) *ParameterError {
	if _, ok := value.(bool); !ok {
		return &ParameterError{p.ID, fmt.Sprintf("%v is not a boolean", value), CodeValue}
	}
	return nil
}

func checkChoice(p *model.Parameter, value any) *ParameterError {
	s, ok := value.(string)
	if !ok {
		return &ParameterError{p.ID, fmt.Sprintf("%v is not a string", value), CodeValue}
	}
	if c := p.Choice; c != nil && len(c.Choices) > 0 {
		for _, choice := range c.Choices {
			if s == choice {
				return nil
			}
		}
		return &ParameterError{p.ID, fmt.Sprintf("invalid choice %q", s), CodeChoice}
	}
	return nil
}

// checkFile validates a file parameter supplied through the data map, which
// only works with a server-side file reference. Local content goes through
// the files map instead.
func checkFile(p *model.Parameter, value any) *ParameterError {
	switch v := value.(type) {
	case *model.File:
		if v.ID == "" {
			return &ParameterError{p.ID, "file reference has no id", CodeValue}
		}
		return nil
	case string:
		// Server-assigned file id passed directly.
		if v == "" {
			return &ParameterError{p.ID, "empty file id", CodeValue}
		}
		return nil
	default:
		return &ParameterError{p.ID, "expected a remote file reference; pass local content via the files map", CodeValue}
	}
}

// stringify converts a validated scalar value to its wire representation.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.String()
	case *model.File:
		return v.ID
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		if n, ok := asInt64(value); ok {
			return strconv.FormatInt(n, 10)
		}
		return fmt.Sprintf("%v", value)
	}
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		// JSON numbers decode as float64; integral values are accepted.
		if v == math.Trunc(v) {
			return int64(v), true
		}
	}
	return 0, false
}

func asDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case float32:
		return decimal.NewFromFloat32(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	}
	if n, ok := asInt64(value); ok {
		return decimal.NewFromInt(n), true
	}
	return decimal.Decimal{}, false
}
