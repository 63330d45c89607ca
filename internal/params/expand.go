package params

import (
	"fmt"
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand substitutes ${NAME} placeholders in value using the given
// parameter map. It returns an error naming the first placeholder that
// has no corresponding parameter.
func Expand(value string, parameters map[string]string) (string, error) {
	var missing string
	expanded := placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := parameters[name]; ok {
			return v
		}
		if missing == "" {
			missing = name
		}
		return match
	})

	if missing != "" {
		return "", fmt.Errorf("undefined parameter %q in %q", missing, value)
	}
	return expanded, nil
}

// ExpandAll applies Expand to every value of a key-value map, returning
// a new map.
func ExpandAll(values map[string]string, parameters map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for k, v := range values {
		expanded, err := Expand(v, parameters)
		if err != nil {
			return nil, err
		}
		out[k] = expanded
	}
	return out, nil
}
