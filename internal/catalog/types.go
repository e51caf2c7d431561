package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Config is the remote configuration document.
type Config struct {
	// Success reports whether the server considered the document valid.
	Success Flag `json:"success"`

	// Data maps platform ids to their services.
	Data map[string]PlatformInfo `json:"data"`
}

// PlatformInfo lists the services offered for one platform, in server order.
type PlatformInfo struct {
	Services []Service `json:"services"`
}

// Service describes one orderable boost action.
type Service struct {
	ID          ServiceID `json:"id"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description"`
	Available   Flag      `json:"available"`
}

// DisplayName returns the service name, or its id when the name is empty.
func (s Service) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return string(s.ID)
}

// ServiceID is a service identifier as sent back in orders.
//
// The server emits ids as JSON numbers; strings are accepted too. The textual
// form is kept verbatim so it can be echoed in form bodies.
type ServiceID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ServiceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ServiceID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("service id must be a number or string: %w", err)
	}
	*id = ServiceID(n.String())
	return nil
}

// Flag is a boolean decoded with loose truthiness: JSON booleans, non-zero
// numbers and strings other than "", "0" and "false" are true; null is false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler for Flag.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(t)
	case float64:
		*f = t != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		*f = s != "" && s != "0" && s != "false"
	default:
		return fmt.Errorf("cannot use %s as a boolean", string(data))
	}
	return nil
}

// Parse decodes a configuration document.
// It does not check Success; callers decide what an unsuccessful document means.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
