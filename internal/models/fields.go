// internal/models/fields.go
package models

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// IsEmptyValue reports whether v counts as "not populated" on a record:
// a nil pointer, an empty string, or an empty slice or map. Other kinds
// fall back to their zero value.
func IsEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return v.Len() == 0
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

// FieldName returns the json name of a struct field, or its Go name when it
// has no json tag.
func FieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return f.Name
}

// PopulatedFields lists the json names of the non-empty fields of record.
// record must be a struct or a pointer to one; anything else yields nil.
func PopulatedFields(record any) []string {
	v, ok := structValue(record)
	if !ok {
		return nil
	}
	t := v.Type()
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if !IsEmptyValue(v.Field(i)) {
			out = append(out, FieldName(f))
		}
	}
	return out
}

// HasFields reports whether every named field is populated on record. Names
// match either the json name or the Go field name, case-insensitively. An
// unknown name counts as missing. No names means true.
func HasFields(record any, names []string) bool {
	if len(names) == 0 {
		return true
	}
	v, ok := structValue(record)
	if !ok {
		return false
	}
	t := v.Type()
	for _, name := range names {
		found := false
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !strings.EqualFold(FieldName(f), name) && !strings.EqualFold(f.Name, name) {
				continue
			}
			found = !IsEmptyValue(v.Field(i))
			break
		}
		if !found {
			return false
		}
	}
	return true
}

// Completeness is the share of exported fields that are populated, in [0,1].
// externalIds does not count towards it.
func Completeness(record any) float64 {
	v, ok := structValue(record)
	if !ok {
		return 0
	}
	t := v.Type()
	total, filled := 0, 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("merge") == "union" {
			continue
		}
		total++
		if !IsEmptyValue(v.Field(i)) {
			filled++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(filled) / float64(total)
}

// DecodeLenient maps a loosely typed provider payload onto out using json
// field names. Values are converted where that is unambiguous ("42" into an
// int, 42 into a string); a field whose value cannot be converted is left
// empty instead of failing the whole record.
func DecodeLenient(raw map[string]interface{}, out any) {
	if raw == nil {
		return
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return
	}
	// Per-field failures are collected and the remaining fields still land.
	_ = dec.Decode(raw)

	v, ok := structValue(out)
	if !ok {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.CanSet() && field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
			field.Set(compactStrings(field))
		}
	}
}

// compactStrings drops the empty elements a failed element conversion leaves
// behind.
func compactStrings(s reflect.Value) reflect.Value {
	if s.Len() == 0 {
		return s
	}
	out := reflect.MakeSlice(s.Type(), 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if s.Index(i).Len() > 0 {
			out = reflect.Append(out, s.Index(i))
		}
	}
	if out.Len() == 0 {
		return reflect.Zero(s.Type())
	}
	return out
}

func structValue(record any) (reflect.Value, bool) {
	v := reflect.ValueOf(record)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}
