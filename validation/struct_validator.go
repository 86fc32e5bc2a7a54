package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/dagpipe/errors"
)

var structs = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(tagName)
	return v
})

// tagName reports fields by the key used in YAML definitions and config
// files.
func tagName(fld reflect.StructField) string {
	for _, key := range []string{"yaml", "mapstructure", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "-":
			return snake(fld.Name)
		case "":
			continue
		default:
			return name
		}
	}
	return snake(fld.Name)
}

// Validate checks s against its `validate` struct tags. Failures come back
// as one INVALID_INPUT AppError listing every field.
func Validate(s any) error {
	err := structs().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Validation("validation failed").WithCause(err)
	}

	fields := make([]FieldError, len(verrs))
	for i, e := range verrs {
		fields[i] = FieldError{Field: fieldPath(e), Message: describe(e)}
	}
	return fieldsError(fields)
}

// fieldPath drops the root struct name: "Definition.nodes[1].name" becomes
// "nodes[1].name".
func fieldPath(e validator.FieldError) string {
	if _, rest, ok := strings.Cut(e.Namespace(), "."); ok {
		return rest
	}
	return e.Field()
}

func describe(e validator.FieldError) string {
	p := e.Param()
	switch e.Tag() {
	case "required", "required_if", "required_without":
		return "is required"
	case "excluded_with":
		return "must be empty when " + snake(p) + " is set"
	case "min", "max":
		bound := map[string]string{"min": "at least", "max": "at most"}[e.Tag()]
		switch e.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return "must have " + bound + " " + p + " items"
		}
		return "must be " + bound + " " + p
	case "gte":
		return "must be greater than or equal to " + p
	case "lte":
		return "must be less than or equal to " + p
	case "oneof":
		return "must be one of: " + p
	case "unique":
		return "must not contain duplicates"
	}
	return "failed " + e.Tag() + " check"
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
