package config

import "strings"

type Environment int

const (
	Development Environment = iota + 1
	Production
)

// String converts the Environment enum to a human-readable string.
func (e Environment) String() string {
	switch e {
	case Development:
		return "development"
	case Production:
		return "production"
	}
	return "unknown"
}

// ParseEnvironment maps APP_ENV style values onto an Environment.
// Anything other than "production" is treated as development.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), "production") {
		return Production
	}
	return Development
}
