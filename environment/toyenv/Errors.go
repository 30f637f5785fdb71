package toyenv

import (
	"fmt"
	"strings"
)

// ConfigError is returned when a Config violates one of the invariants
// required to construct a ToyEnv. It names the offending fields and
// their values.
type ConfigError struct {
	Fields []string
	Values []interface{}
	Reason string
}

// newConfigError returns a new ConfigError. The kv argument alternates
// field names and values.
func newConfigError(reason string, kv ...interface{}) *ConfigError {
	if len(kv)%2 != 0 {
		panic("newConfigError: fields and values must come in pairs")
	}

	err := &ConfigError{Reason: reason}
	for i := 0; i < len(kv); i += 2 {
		err.Fields = append(err.Fields, fmt.Sprint(kv[i]))
		err.Values = append(err.Values, kv[i+1])
	}
	return err
}

// Error implements the error interface
func (c *ConfigError) Error() string {
	pairs := make([]string, len(c.Fields))
	for i := range c.Fields {
		pairs[i] = fmt.Sprintf("%s = %v", c.Fields[i], c.Values[i])
	}
	return fmt.Sprintf("invalid configuration: %s (%s)", c.Reason,
		strings.Join(pairs, ", "))
}

// HasField returns whether field is one of the offending fields
func (c *ConfigError) HasField(field string) bool {
	for _, f := range c.Fields {
		if f == field {
			return true
		}
	}
	return false
}
