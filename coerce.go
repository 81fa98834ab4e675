// File: declconf/coerce.go
package declconf

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Boolean token sets accepted during coercion, checked case-insensitively.
// The set is total: any other string raises a coercion error.
var (
	truthyTokens = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "on": true, "1": true}
	falsyTokens  = map[string]bool{"false": true, "f": true, "no": true, "n": true, "off": true, "0": true}
)

// coerceScalar converts a raw source value to the canonical Go type for a
// scalar kind: string, int64, float64, bool, or complex128.
func coerceScalar(path string, raw any, kind Kind) (any, error) {
	fail := func() (any, error) {
		return nil, &CoercionError{Path: path, Raw: raw, Kind: kind}
	}

	if num, ok := raw.(json.Number); ok {
		if i, err := num.Int64(); err == nil {
			raw = i
		} else if f, err := num.Float64(); err == nil {
			raw = f
		} else {
			raw = num.String()
		}
	}

	switch kind {
	case KindString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		case fmt.Stringer:
			return v.String(), nil
		}
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(rv.Int(), 10), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(rv.Uint(), 10), nil
		case reflect.Float32, reflect.Float64:
			return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
		case reflect.Bool:
			return strconv.FormatBool(rv.Bool()), nil
		}
		return fail()

	case KindInt:
		switch v := raw.(type) {
		case string:
			// Base 0 lets hex and octal literals through.
			if i, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64); err == nil {
				return i, nil
			}
			return fail()
		case bool:
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		}
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := rv.Uint()
			if u > math.MaxInt64 {
				return fail()
			}
			return int64(u), nil
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) {
				return fail()
			}
			return int64(f), nil
		}
		return fail()

	case KindFloat:
		switch v := raw.(type) {
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, nil
			}
			return fail()
		}
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		}
		return fail()

	case KindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			token := strings.ToLower(strings.TrimSpace(v))
			if truthyTokens[token] {
				return true, nil
			}
			if falsyTokens[token] {
				return false, nil
			}
			return fail()
		}
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			switch rv.Int() {
			case 0:
				return false, nil
			case 1:
				return true, nil
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			switch rv.Uint() {
			case 0:
				return false, nil
			case 1:
				return true, nil
			}
		}
		return fail()

	case KindComplex:
		switch v := raw.(type) {
		case complex64:
			return complex128(v), nil
		case complex128:
			return v, nil
		case string:
			if c, err := strconv.ParseComplex(strings.TrimSpace(v), 128); err == nil {
				return c, nil
			}
			return fail()
		}
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return complex(float64(rv.Int()), 0), nil
		case reflect.Float32, reflect.Float64:
			return complex(rv.Float(), 0), nil
		}
		return fail()
	}

	return fail()
}

// coerceList converts a raw list value to an ordered slice of coerced
// element values. Raw slices keep their order; a bare string splits on
// commas the way the decode hooks treat slice-valued strings.
func coerceList(path string, raw any, elemKind Kind) ([]any, error) {
	var elems []any

	switch v := raw.(type) {
	case []any:
		elems = v
	case []string:
		elems = make([]any, len(v))
		for i, s := range v {
			elems[i] = s
		}
	case string:
		if strings.TrimSpace(v) == "" {
			return []any{}, nil
		}
		parts := strings.Split(v, ",")
		elems = make([]any, len(parts))
		for i, p := range parts {
			elems[i] = strings.TrimSpace(p)
		}
	default:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice {
			return nil, &CoercionError{Path: path, Raw: raw, Kind: KindList}
		}
		elems = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems[i] = rv.Index(i).Interface()
		}
	}

	out := make([]any, len(elems))
	for i, e := range elems {
		coerced, err := coerceScalar(fmt.Sprintf("%s[%d]", path, i), e, elemKind)
		if err != nil {
			return nil, err
		}
		out[i] = coerced
	}
	return out, nil
}
