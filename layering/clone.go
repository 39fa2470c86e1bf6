package layering

import "reflect"

// Clone deep copies a snapshot map. Nil stays nil.
func Clone(snapshot map[string]any) map[string]any {
	if snapshot == nil {
		return nil
	}
	return cloneValue(reflect.ValueOf(snapshot)).Interface().(map[string]any)
}

// CloneValue deep copies an arbitrary snapshot value.
func CloneValue(value any) any {
	if value == nil {
		return nil
	}
	out := cloneValue(reflect.ValueOf(value))
	if !out.IsValid() {
		return nil
	}
	return out.Interface()
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		return elem.Convert(v.Type())
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return reflect.ValueOf(v.Interface())
	}
}
