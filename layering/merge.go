package layering

import "reflect"

// Merge composes snapshots ordered from strongest to weakest, returning a new
// map that keeps explicit settings from stronger layers while filling any
// missing data from weaker ones. Nested maps merge recursively; every other
// value replaces as a whole. Nil snapshots contribute nothing.
func Merge(layers ...map[string]any) map[string]any {
	if len(layers) == 0 {
		return map[string]any{}
	}

	merged := cloneValue(reflect.ValueOf(layers[len(layers)-1]))
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeValue(reflect.ValueOf(layers[i]), merged)
	}

	if !merged.IsValid() || merged.IsNil() {
		return map[string]any{}
	}
	out, ok := merged.Interface().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return out
}

func mergeValue(strong, weak reflect.Value) reflect.Value {
	if !strong.IsValid() {
		return cloneValue(weak)
	}

	switch strong.Kind() {
	case reflect.Pointer:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && weak.Kind() == reflect.Pointer && !weak.IsNil() {
			weakElem = weak.Elem()
		}
		merged := mergeValue(strong.Elem(), weakElem)
		result := reflect.New(strong.Type().Elem())
		result.Elem().Set(merged)
		return result
	case reflect.Interface:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && !weak.IsNil() {
			weakElem = weak.Elem()
		}
		merged := mergeValue(strong.Elem(), weakElem)
		return merged.Convert(strong.Type())
	case reflect.Struct:
		result := reflect.New(strong.Type()).Elem()
		var weakStruct reflect.Value
		if weak.IsValid() && weak.Type() == strong.Type() {
			weakStruct = weak
		}
		for i := 0; i < strong.NumField(); i++ {
			field := result.Field(i)
			if !field.CanSet() {
				continue
			}
			var weakField reflect.Value
			if weakStruct.IsValid() {
				weakField = weakStruct.Field(i)
			}
			merged := mergeValue(strong.Field(i), weakField)
			field.Set(merged)
		}
		return result
	case reflect.Map:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		result := reflect.MakeMapWithSize(strong.Type(), strong.Len())
		if weak.IsValid() && weak.Kind() == reflect.Map && !weak.IsNil() {
			iter := weak.MapRange()
			for iter.Next() {
				result.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
			}
		}
		iter := strong.MapRange()
		for iter.Next() {
			key := iter.Key()
			value := iter.Value()
			existing := result.MapIndex(key)
			if existing.IsValid() {
				result.SetMapIndex(key, mergeValue(value, existing))
				continue
			}
			result.SetMapIndex(key, cloneValue(value))
		}
		return result
	case reflect.Slice:
		if strong.IsNil() {
			return cloneValue(weak)
		}
		result := reflect.MakeSlice(strong.Type(), strong.Len(), strong.Len())
		for i := 0; i < strong.Len(); i++ {
			result.Index(i).Set(cloneValue(strong.Index(i)))
		}
		return result
	case reflect.Array:
		result := reflect.New(strong.Type()).Elem()
		for i := 0; i < strong.Len(); i++ {
			var weakElem reflect.Value
			if weak.IsValid() && weak.Kind() == reflect.Array && weak.Len() > i {
				weakElem = weak.Index(i)
			}
			result.Index(i).Set(mergeValue(strong.Index(i), weakElem))
		}
		return result
	default:
		return cloneValue(strong)
	}
}
