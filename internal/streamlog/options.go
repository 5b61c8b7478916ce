package streamlog

import (
	"slices"
	"strconv"
	"strings"
)

const optCount = "count"

type options map[string]string

// parseOptions folds a flat key/value list into a map with lower-cased keys.
// Odd lists and keys outside permitted are syntax errors.
func parseOptions(in []string, permitted ...string) (options, error) {
	if len(in)%2 != 0 {
		return nil, ErrOptionSyntax
	}
	out := make(options, len(in)/2)
	for i := 0; i < len(in); i += 2 {
		k := strings.ToLower(in[i])
		if !slices.Contains(permitted, k) {
			return nil, ErrOptionSyntax
		}
		out[k] = in[i+1]
	}
	return out, nil
}

// count returns the count option, or -1 when absent.
func (o options) count() (int, error) {
	v, ok := o[optCount]
	if !ok {
		return -1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, ErrOptionValue
	}
	return n, nil
}
