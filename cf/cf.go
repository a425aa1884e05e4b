package cf

import (
	"fmt"
	"github.com/pkg/errors"
	"reflect"
	"sort"
)

// Load binds the values in data onto the exported fields of the struct pointed to by cf. Keys are taken from the
// `cf` field tag, falling back to the field name. Keys without a matching field are ignored.
func Load(data map[string]interface{}, cf interface{}) error {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() != reflect.Ptr {
		return errors.Errorf("cf type [%s] not pointer", cfV.Type())
	}
	cfV = cfV.Elem()
	if cfV.Kind() != reflect.Struct {
		return errors.Errorf("cf type [%s] not struct", cfV.Type())
	}
	for i := 0; i < cfV.NumField(); i++ {
		field := cfV.Field(i)
		if !field.CanSet() {
			continue
		}
		key := keyName(cfV.Type().Field(i))
		v, found := data[key]
		if !found {
			continue
		}
		if err := setField(key, field, v); err != nil {
			return err
		}
	}
	return nil
}

func setField(key string, field reflect.Value, v interface{}) error {
	switch field.Interface().(type) {
	case int:
		switch n := v.(type) {
		case int:
			field.SetInt(int64(n))
		case int64:
			field.SetInt(n)
		default:
			return mismatch(key, v, field)
		}

	case float64:
		switch f := v.(type) {
		case float64:
			field.SetFloat(f)
		case int:
			field.SetFloat(float64(f))
		default:
			return mismatch(key, v, field)
		}

	case bool:
		if b, ok := v.(bool); ok {
			field.SetBool(b)
		} else {
			return mismatch(key, v, field)
		}

	case string:
		if s, ok := v.(string); ok {
			field.SetString(s)
		} else {
			return mismatch(key, v, field)
		}

	case map[string]interface{}:
		switch m := v.(type) {
		case map[string]interface{}:
			field.Set(reflect.ValueOf(m))
		case map[interface{}]interface{}:
			field.Set(reflect.ValueOf(MapIToMapS(m)))
		default:
			return mismatch(key, v, field)
		}

	default:
		return errors.Errorf("unsupported field type [%s]", field.Type())
	}
	return nil
}

func mismatch(key string, v interface{}, field reflect.Value) error {
	return errors.Errorf("field '%s' type mismatch, got [%s], expected [%s]", key, reflect.TypeOf(v), field.Type())
}

// Dump renders the exported fields of cf, one key per line, under label.
func Dump(label string, cf interface{}) string {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() == reflect.Ptr {
		cfV = cfV.Elem()
	}
	if cfV.Kind() != reflect.Struct {
		return ""
	}
	out := label + " {\n"
	format := fmt.Sprintf("\t%%-%ds %%v\n", maxKeyLength(cfV))
	for i := 0; i < cfV.NumField(); i++ {
		if cfV.Field(i).CanInterface() {
			key := keyName(cfV.Type().Field(i))
			out += fmt.Sprintf(format, key, dumpValue(cfV.Field(i).Interface()))
		}
	}
	out += "}"
	return out
}

func dumpValue(v interface{}) interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}
	return v
}

func keyName(v reflect.StructField) string {
	key := v.Name
	tag := v.Tag.Get("cf")
	if tag != "" {
		key = tag
	}
	return key
}

func maxKeyLength(cfV reflect.Value) int {
	maxKeyLength := 0
	for i := 0; i < cfV.NumField(); i++ {
		key := keyName(cfV.Type().Field(i))
		keyLength := len(key)
		if keyLength > maxKeyLength {
			maxKeyLength = keyLength
		}
	}
	return maxKeyLength
}
