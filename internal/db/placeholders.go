package db

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// rebind rewrites numbered placeholders ($1, $2, ...) into positional '?'
// markers and reorders args to match. A placeholder used twice gets its
// argument twice. Text inside single or double quotes is copied untouched.
func rebind(query string, args []any) (string, []any, error) {
	out := make([]byte, 0, len(query))
	bound := make([]any, 0, len(args))

	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]

		if quote != 0 {
			out = append(out, c)
			if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"':
			quote = c
			out = append(out, c)
		case c == '$' && i+1 < len(query) && isDigit(query[i+1]):
			j := i + 1
			for j < len(query) && isDigit(query[j]) {
				j++
			}
			n, err := strconv.Atoi(query[i+1 : j])
			if err != nil {
				return "", nil, errors.Wrapf(err, "parse placeholder %q", query[i:j])
			}
			if n < 1 || n > len(args) {
				return "", nil, errors.Newf("placeholder $%d has no matching argument (got %d)", n, len(args))
			}
			out = append(out, '?')
			bound = append(bound, args[n-1])
			i = j - 1
		default:
			out = append(out, c)
		}
	}

	return string(out), bound, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
