package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// JSONResponse writes data with the given status and encodes nil slices as [] instead of null.
// Check results, override blocked checks and history lists are always arrays for clients.
func JSONResponse(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(normalizeSlices(data))
}

// normalizeSlices returns a copy of data in which every nil slice reachable through
// pointers, slices and exported struct fields is empty
func normalizeSlices(data interface{}) interface{} {
	if data == nil {
		return nil
	}
	v := normalizeValue(reflect.ValueOf(data))
	return v.Interface()
}

func normalizeValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() || v.Elem().Type() == timeType {
			return v
		}
		out := reflect.New(v.Elem().Type())
		out.Elem().Set(normalizeValue(v.Elem()))
		return out

	case reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0)
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(normalizeValue(v.Index(i)))
		}
		return out

	case reflect.Struct:
		if v.Type() == timeType {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			out.Field(i).Set(normalizeValue(v.Field(i)))
		}
		return out

	default:
		return v
	}
}
