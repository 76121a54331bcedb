// internal/orchestrator/merge.go
package orchestrator

import (
	"reflect"

	"enrichment-workers/internal/models"
)

// Merge folds secondary into primary and returns a new record. A field of
// primary that already holds a value keeps it; empty fields take
// secondary's value. Map fields tagged merge:"union" are combined key by
// key with secondary winning on collisions. Neither input is modified.
func Merge[T any](primary, secondary *T) *T {
	switch {
	case primary == nil && secondary == nil:
		return nil
	case primary == nil:
		primary, secondary = secondary, nil
	}

	out := new(T)
	*out = *primary

	ov := reflect.ValueOf(out).Elem()
	if ov.Kind() != reflect.Struct {
		return out
	}

	var sv reflect.Value
	if secondary != nil {
		sv = reflect.ValueOf(secondary).Elem()
	}

	t := ov.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		dst := ov.Field(i)

		if f.Tag.Get("merge") == "union" && f.Type.Kind() == reflect.Map {
			var src reflect.Value
			if sv.IsValid() {
				src = sv.Field(i)
			}
			dst.Set(unionMaps(dst, src))
			continue
		}

		if !sv.IsValid() {
			continue
		}
		if models.IsEmptyValue(dst) && !models.IsEmptyValue(sv.Field(i)) {
			dst.Set(sv.Field(i))
		}
	}
	return out
}

// unionMaps returns a fresh map holding a's entries overlaid with b's.
func unionMaps(a, b reflect.Value) reflect.Value {
	bLen := 0
	if b.IsValid() {
		bLen = b.Len()
	}
	if a.Len() == 0 && bLen == 0 {
		return a
	}

	out := reflect.MakeMapWithSize(a.Type(), a.Len()+bLen)
	for _, m := range []reflect.Value{a, b} {
		if !m.IsValid() {
			continue
		}
		iter := m.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
	}
	return out
}
