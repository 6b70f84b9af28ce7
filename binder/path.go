package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
)

// Path binds fields tagged `path:"name"` using extractor, typically chi.URLParam.
// Supported field kinds are string, signed and unsigned integers, and bool.
func Path(extractor func(r *http.Request, key string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrInvalidPath)
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a pointer to struct", ErrInvalidPath)
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rt.NumField() {
			sf := rt.Field(i)
			name, ok := sf.Tag.Lookup("path")
			if !ok || name == "-" || !sf.IsExported() {
				continue
			}
			raw := extractor(r, name)
			if raw == "" {
				continue
			}
			if err := setValue(rv.Field(i), raw); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidPath, name, err)
			}
		}
		return nil
	}
}

func setValue(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
