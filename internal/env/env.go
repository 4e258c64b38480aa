// Package env decodes environment variables into tagged config structs.
package env

import (
	"encoding"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Validator is implemented by config structs that need validation.
type Validator interface {
	Validate() error
}

// LookupFunc resolves a variable name. It has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ErrInvalidValue is returned when an environment variable value cannot be parsed.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrNotStructPointer is returned when Load is called with a non-pointer or non-struct argument.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return fmt.Sprintf("env.Load: argument must be a pointer to struct, got %s", e.Type)
}

// ErrUnsupportedType is returned when a field has an unsupported type.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Kind)
}

var (
	durationType        = reflect.TypeFor[time.Duration]()
	timeType            = reflect.TypeFor[time.Time]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Load fills v from the process environment. See LoadFrom.
func Load(v any) error {
	return LoadFrom(v, os.LookupEnv)
}

// LoadFrom fills the struct pointed to by v using lookup.
//
// Fields are mapped with `env:"NAME"` and fall back to `default:"value"`
// when NAME is unset. A variable that is set but empty is kept as empty.
// Supported fields: string, bool, signed and unsigned integers,
// time.Duration and any type whose pointer implements
// encoding.TextUnmarshaler (slog.Level, for example).
//
// Nested structs are decoded recursively and validated bottom-up through
// Validator, ending with v itself.
func LoadFrom(v any, lookup LookupFunc) error {
	root := reflect.ValueOf(v)
	if root.Kind() != reflect.Pointer || root.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}
	return decodeStruct(root.Elem(), lookup)
}

func decodeStruct(val reflect.Value, lookup LookupFunc) error {
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		sf := typ.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != timeType && !isTextUnmarshaler(field) {
			if err := decodeStruct(field, lookup); err != nil {
				return err
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := lookup(name)
		if !ok {
			if raw, ok = sf.Tag.Lookup("default"); !ok {
				continue
			}
		}

		if err := decodeValue(field, raw); err != nil {
			return ErrInvalidValue{Field: sf.Name, EnvVar: name, Value: raw, Err: err}
		}
	}

	if val.CanAddr() {
		if validator, ok := val.Addr().Interface().(Validator); ok {
			return validator.Validate()
		}
	}
	return nil
}

func isTextUnmarshaler(field reflect.Value) bool {
	return field.CanAddr() && field.Addr().Type().Implements(textUnmarshalerType)
}

func decodeValue(field reflect.Value, raw string) error {
	if isTextUnmarshaler(field) {
		return field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw))
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
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

	default:
		return ErrUnsupportedType{Kind: field.Kind().String()}
	}
	return nil
}

// LoadDotEnv reads variables from the given files (".env" when none are given)
// into the process environment. Variables that are already set win, and
// missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
