package endpoint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shaarli/shaarli-client-go/internal/errors"
)

var validate = validator.New()

// Normalize converts value to the representation sent on the wire for spec:
// integers become int, join parameters collapse to one space-joined string,
// list parameters become []string.
func Normalize(endpoint string, spec ParamSpec, value interface{}) (interface{}, error) {
	switch spec.Kind {
	case KindInteger:
		n, err := toInt(value)
		if err != nil {
			return nil, errors.NewValueError(endpoint, fmt.Sprintf("%s: %v is not an integer", spec.Name, value))
		}
		return n, nil

	case KindChoice:
		s, ok := value.(string)
		if !ok || validate.Var(s, "oneof="+strings.Join(spec.Choices, " ")) != nil {
			return nil, errors.NewValueError(endpoint, fmt.Sprintf("%s: invalid choice %v (choose from %s)",
				spec.Name, value, strings.Join(spec.Choices, ", ")))
		}
		return s, nil

	case KindJoin:
		switch v := value.(type) {
		case string:
			return v, nil
		case []string:
			return strings.Join(v, " "), nil
		}

	case KindList:
		switch v := value.(type) {
		case string:
			return []string{v}, nil
		case []string:
			return append([]string{}, v...), nil
		}

	case KindFlag:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err == nil {
				return b, nil
			}
		}

	default:
		switch value.(type) {
		case string, bool, int, int32, int64, uint, uint32, uint64, float64:
			return value, nil
		}
	}

	return nil, errors.NewValueError(endpoint, fmt.Sprintf("%s: unsupported %s value %v", spec.Name, spec.Kind, value))
}

// ParseResource converts a command-line resource argument according to the
// endpoint's resource spec.
func ParseResource(d Descriptor, raw string) (interface{}, error) {
	if d.Resource == nil {
		return nil, errors.NewValueError(d.Name, "endpoint takes no resource")
	}
	if d.Resource.Kind == ResourceID {
		return CheckPositiveInteger(d.Name, raw)
	}
	return raw, nil
}

// ResourceSegment renders a resource value as the path segment appended to
// the endpoint path.
func ResourceSegment(d Descriptor, value interface{}) (string, error) {
	if d.Resource == nil {
		return "", errors.NewValueError(d.Name, "endpoint takes no resource")
	}

	switch d.Resource.Kind {
	case ResourceID:
		n, err := toInt(value)
		if err != nil || validate.Var(n, "gte=0") != nil {
			return "", errors.NewValueError(d.Name, fmt.Sprintf("%v is not a positive integer", value))
		}
		return strconv.Itoa(n), nil
	default:
		s, ok := value.(string)
		if !ok || s == "" {
			return "", errors.NewValueError(d.Name, fmt.Sprintf("invalid %s: %v", d.Resource.Name, value))
		}
		return s, nil
	}
}

// ResourceFromPath extracts the resource value from a path built for d.
func ResourceFromPath(d Descriptor, path string) (interface{}, error) {
	segment, ok := strings.CutPrefix(path, d.Path+"/")
	if !ok || d.Resource == nil {
		return nil, errors.NewValueError(d.Name, fmt.Sprintf("path %q has no resource", path))
	}
	return ParseResource(d, segment)
}

// CheckPositiveInteger parses raw as a non-negative base-10 integer.
func CheckPositiveInteger(endpoint, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || validate.Var(n, "gte=0") != nil {
		return 0, errors.NewValueError(endpoint, fmt.Sprintf("%s is not a positive integer", raw))
	}
	return n, nil
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}
