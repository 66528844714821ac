package olympus

import (
	"fmt"
	"strings"
)

// PostDataKey names the argument carrying the body of a POST command.
const PostDataKey = "post_data"

// Arg is one command argument. Parameters carry strings; the POST body
// carries []byte under PostDataKey.
type Arg struct {
	Key   string
	Value interface{}
}

func Param(key, value string) Arg {
	return Arg{Key: key, Value: value}
}

func PostData(data []byte) Arg {
	return Arg{Key: PostDataKey, Value: data}
}

// Args keeps arguments in the order the caller gave them; validation walks
// them in that order.
type Args []Arg

func (a Args) Get(key string) (interface{}, bool) {
	for _, arg := range a {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return nil, false
}

func (a Args) String() string {
	parts := make([]string, len(a))
	for i, arg := range a {
		parts[i] = arg.Key + "=" + argText(arg.Value)
	}
	return strings.Join(parts, ", ")
}

func argText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// Validate checks command and args against the schema without touching the
// network. Each argument descends once on its name and once on its value;
// there is no backtracking.
func (s *Schema) Validate(command string, args Args) error {
	descr, ok := s.Lookup(command)
	if !ok {
		return newRequestError(ErrUnsupportedCommand, command, s.Commands(),
			"error: command %s not supported; valid commands: %s", command, strings.Join(s.order, ","))
	}

	node := descr.Args
	for _, arg := range args {
		if arg.Key == PostDataKey && descr.Method == MethodPost {
			if _, ok := arg.Value.([]byte); !ok {
				return newRequestError(ErrPayloadType, command, nil,
					"error in %s: data for method 'post' is of type '%T'; type '[]byte' expected.", command, arg.Value)
			}
			continue
		}

		value := argText(arg.Value)
		if node == nil {
			return newRequestError(ErrUnsupportedParameter, command, nil,
				"error in %s: '%s' in %s=%s not supported.", command, arg.Key, arg.Key, value)
		}

		next, ok := node.Match(arg.Key)
		if !ok {
			accepted := node.names()
			return newRequestError(ErrUnsupportedParameter, command, accepted,
				"error in %s: '%s' in %s=%s not supported; supported: %s.", command, arg.Key, arg.Key, value, strings.Join(accepted, ", "))
		}
		if next == nil {
			return newRequestError(ErrUnsupportedValue, command, nil,
				"error in %s: '%s' in %s=%s not supported; no value accepted.", command, value, arg.Key, value)
		}

		node, ok = next.Match(value)
		if !ok {
			accepted := next.names()
			return newRequestError(ErrUnsupportedValue, command, accepted,
				"error in %s: '%s' in %s=%s not supported; supported: %s.", command, value, arg.Key, value, strings.Join(accepted, ", "))
		}
	}
	return nil
}
