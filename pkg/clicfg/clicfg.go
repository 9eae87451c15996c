// Package clicfg binds parsed command line flags onto a tagged config struct.
package clicfg

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/urfave/cli/v3"
)

var (
	ErrCannotParseFlags = errors.New("cannot parse flags")
)

var durationType = reflect.TypeOf(time.Duration(0))

// ParseFlags fills every exported field of s carrying a `flag:"name"` tag with the
// value of the flag of the same name. Flags that are not defined on c leave
// the field at its zero value.
func ParseFlags(c *cli.Command, s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("%w: expected pointer to struct, got %T", ErrCannotParseFlags, s)
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected pointer to struct, got pointer to %s", ErrCannotParseFlags, v.Kind())
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		value := v.Field(i)

		name := field.Tag.Get("flag")
		if name == "" || !value.CanSet() {
			continue
		}

		if err := setField(c, name, value); err != nil {
			return fmt.Errorf("%w: field %s: %w", ErrCannotParseFlags, field.Name, err)
		}
	}

	return nil
}

func setField(c *cli.Command, name string, value reflect.Value) error {
	if value.Type() == durationType {
		value.SetInt(int64(c.Duration(name)))
		return nil
	}

	switch value.Kind() {
	case reflect.String:
		value.SetString(c.String(name))
	case reflect.Bool:
		value.SetBool(c.Bool(name))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value.SetInt(int64(c.Int(name)))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value.SetUint(uint64(c.Uint(name)))
	case reflect.Float32, reflect.Float64:
		value.SetFloat(c.Float64(name))
	case reflect.Slice:
		if value.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", value.Type())
		}
		value.Set(reflect.ValueOf(c.StringSlice(name)).Convert(value.Type()))
	default:
		return fmt.Errorf("unsupported type: %s", value.Type())
	}

	return nil
}
