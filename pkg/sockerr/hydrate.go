package sockerr

import (
	"errors"
	"fmt"
)

// Hydrate converts the wire form of an error into an error value.
//
// nil stays nil. Objects become *Error with the Kind looked up from their
// "name" property; all properties other than name, message, type and code
// are kept in Data. Any other value becomes a KindUnknown *Error whose
// message is the value's text.
func Hydrate(v any) error {
	switch w := v.(type) {
	case nil:
		return nil
	case *Error:
		return w
	case error:
		return w
	case string:
		return &Error{Kind: KindUnknown, Name: KindUnknown.String(), Message: w}
	case map[string]any:
		return hydrateObject(w)
	case map[any]any:
		m := make(map[string]any, len(w))
		for k, val := range w {
			m[fmt.Sprint(k)] = val
		}
		return hydrateObject(m)
	default:
		return &Error{Kind: KindUnknown, Name: KindUnknown.String(), Message: fmt.Sprint(w)}
	}
}

func hydrateObject(obj map[string]any) *Error {
	e := &Error{Kind: KindUnknown, Name: KindUnknown.String()}
	for k, val := range obj {
		switch k {
		case "name":
			if name, ok := val.(string); ok && name != "" {
				e.Name = name
				e.Kind = ParseKind(name)
			}
		case "message":
			if val != nil {
				e.Message = fmt.Sprint(val)
			}
		case "type":
			if t, ok := val.(string); ok {
				e.Type = FailureType(t)
			}
		case "code":
			if code, ok := toInt(val); ok {
				e.Code = code
			}
		default:
			if e.Data == nil {
				e.Data = make(map[string]any)
			}
			e.Data[k] = val
		}
	}
	return e
}

// Dehydrate converts an error into its wire form.
// It returns nil for a nil error.
func Dehydrate(err error) map[string]any {
	if err == nil {
		return nil
	}

	var e *Error
	if !errors.As(err, &e) {
		return map[string]any{
			"name":    KindUnknown.String(),
			"message": err.Error(),
		}
	}

	out := make(map[string]any, len(e.Data)+4)
	for k, v := range e.Data {
		out[k] = v
	}
	name := e.Name
	if name == "" {
		name = e.Kind.String()
	}
	out["name"] = name
	out["message"] = e.Message
	if e.Type != "" {
		out["type"] = string(e.Type)
	}
	if e.Code != 0 {
		out["code"] = e.Code
	}
	return out
}

// toInt converts the numeric types produced by JSON and CBOR decoders.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	case int32:
		return int(n), true
	case uint32:
		return int(n), true
	default:
		return 0, false
	}
}
