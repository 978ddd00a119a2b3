package fields

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"dealdocs-backend/internal/templates"
)

const dateLayout = "2006-01-02"

// FieldError is one validation failure, tagged with a stable code so callers
// can branch without parsing text.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of resolving raw values against a template schema.
// Values holds the coerced, validated data; a non-empty Errors slice means
// the input must not be rendered.
type Result struct {
	Values map[string]any `json:"values"`
	Errors []FieldError   `json:"errors,omitempty"`
}

// OK reports whether resolution produced no errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Resolve validates and normalizes rawValues against the schema. It is
// deterministic and total: fields are processed in schema order, unknown keys
// in sorted order, and the same input always yields the same result.
func Resolve(schema templates.FieldSchema, rawValues map[string]any) Result {
	res := Result{Values: make(map[string]any, len(schema.Fields))}

	for _, f := range schema.Fields {
		if !dependencyMet(f, res.Values) {
			// Unmet dependency exempts the field entirely, present or not.
			continue
		}

		raw, present := rawValues[f.Name]
		if !present || raw == nil {
			if f.Default != nil {
				res.Values[f.Name] = f.Default
				continue
			}
			if f.Required {
				res.Errors = append(res.Errors, FieldError{
					Field:   f.Name,
					Code:    ErrorCodeMissingRequired,
					Message: fmt.Sprintf("%s is required", f.Name),
				})
			}
			continue
		}

		value, err := coerce(f, raw)
		if err != nil {
			res.Errors = append(res.Errors, *err)
			continue
		}
		if err := validate(f, value); err != nil {
			res.Errors = append(res.Errors, *err)
			continue
		}
		res.Values[f.Name] = value
	}

	declared := make(map[string]struct{}, len(schema.Fields))
	for _, f := range schema.Fields {
		declared[f.Name] = struct{}{}
	}
	unknown := make([]string, 0)
	for name := range rawValues {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		if schema.AllowUnknown {
			// Pass-through metadata keeps its raw value.
			res.Values[name] = rawValues[name]
			continue
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   name,
			Code:    ErrorCodeUnknownField,
			Message: fmt.Sprintf("%s is not a field of template %s", name, schema.TemplateCode),
		})
	}

	return res
}

// dependencyMet evaluates a field's dependsOn condition against already
// resolved sibling values. A missing dependency value means unmet.
func dependencyMet(f templates.FieldDescriptor, resolved map[string]any) bool {
	cond := f.DependsOn
	if cond == nil {
		return true
	}
	actual, ok := resolved[cond.Field]
	if !ok {
		return false
	}

	switch cond.Op {
	case templates.OpEquals:
		return equalValues(actual, cond.Value)
	case templates.OpNotEquals:
		return !equalValues(actual, cond.Value)
	case templates.OpContains:
		return strings.Contains(stringify(actual), stringify(cond.Value))
	case templates.OpGreaterThan:
		a, aok := toNumber(actual)
		b, bok := toNumber(cond.Value)
		return aok && bok && a > b
	case templates.OpLessThan:
		a, aok := toNumber(actual)
		b, bok := toNumber(cond.Value)
		return aok && bok && a < b
	default:
		return false
	}
}

func equalValues(a, b any) bool {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return an == bn
		}
	}
	return stringify(a) == stringify(b)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// coerce converts raw input to the field's declared type.
func coerce(f templates.FieldDescriptor, raw any) (any, *FieldError) {
	switch f.Type {
	case templates.FieldText:
		s, ok := raw.(string)
		if !ok {
			return nil, typeError(f, "expected text")
		}
		return s, nil

	case templates.FieldNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil, typeError(f, "expected a number")
		}
		return n, nil

	case templates.FieldBoolean:
		switch t := raw.(type) {
		case bool:
			return t, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, typeError(f, "expected a boolean")
			}
			return parsed, nil
		default:
			return nil, typeError(f, "expected a boolean")
		}

	case templates.FieldDate:
		s, ok := raw.(string)
		if !ok {
			return nil, typeError(f, "expected a date string")
		}
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, typeError(f, "expected date formatted as "+dateLayout)
		}
		return parsed.Format(dateLayout), nil

	case templates.FieldSelect:
		s, ok := raw.(string)
		if !ok {
			return nil, typeError(f, "expected one of the declared options")
		}
		for _, opt := range f.Options {
			if s == opt {
				return s, nil
			}
		}
		return nil, &FieldError{
			Field:   f.Name,
			Code:    ErrorCodeInvalidValue,
			Message: fmt.Sprintf("%s must be one of %s", f.Name, strings.Join(f.Options, ", ")),
		}

	default:
		return nil, typeError(f, fmt.Sprintf("unsupported field type %q", f.Type))
	}
}

// validate applies the declared validation rules to a coerced value.
func validate(f templates.FieldDescriptor, value any) *FieldError {
	v := f.Validation
	if v == nil {
		return nil
	}

	switch t := value.(type) {
	case float64:
		if v.Min != nil && t < *v.Min {
			return valueError(f, fmt.Sprintf("%s must be at least %v", f.Name, *v.Min))
		}
		if v.Max != nil && t > *v.Max {
			return valueError(f, fmt.Sprintf("%s must be at most %v", f.Name, *v.Max))
		}
	case string:
		if v.MinLength > 0 && len(t) < v.MinLength {
			return valueError(f, fmt.Sprintf("%s must be at least %d characters", f.Name, v.MinLength))
		}
		if v.MaxLength > 0 && len(t) > v.MaxLength {
			return valueError(f, fmt.Sprintf("%s must be at most %d characters", f.Name, v.MaxLength))
		}
		if v.Pattern != "" {
			re, err := regexp.Compile(v.Pattern)
			if err != nil {
				return valueError(f, fmt.Sprintf("%s has an invalid validation pattern", f.Name))
			}
			if !re.MatchString(t) {
				return valueError(f, fmt.Sprintf("%s does not match the expected format", f.Name))
			}
		}
	}
	return nil
}

func typeError(f templates.FieldDescriptor, msg string) *FieldError {
	return &FieldError{Field: f.Name, Code: ErrorCodeInvalidType, Message: fmt.Sprintf("%s: %s", f.Name, msg)}
}

func valueError(f templates.FieldDescriptor, msg string) *FieldError {
	return &FieldError{Field: f.Name, Code: ErrorCodeInvalidValue, Message: msg}
}
