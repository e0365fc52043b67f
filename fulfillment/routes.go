package fulfillment

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Routes maps benefit names to delivery endpoints. A benefit without an
// explicit entry falls back to the default endpoint.
type Routes struct {
	DefaultEndpoint string            `yaml:"default_endpoint"`
	Benefits        map[string]string `yaml:"benefits"`
}

// LoadRoutes reads a YAML routes file.
func LoadRoutes(path string) (Routes, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Routes{}, fmt.Errorf("fulfillment: read routes: %w", err)
	}
	var routes Routes
	if err := yaml.Unmarshal(raw, &routes); err != nil {
		return Routes{}, fmt.Errorf("fulfillment: parse routes: %w", err)
	}
	if err := routes.Validate(); err != nil {
		return Routes{}, err
	}
	return routes, nil
}

// Validate checks that every benefit resolves to a non-empty endpoint.
func (r Routes) Validate() error {
	if strings.TrimSpace(r.DefaultEndpoint) == "" && len(r.Benefits) == 0 {
		return fmt.Errorf("fulfillment: routes must define a default endpoint or per-benefit endpoints")
	}
	for benefit, endpoint := range r.Benefits {
		if strings.TrimSpace(endpoint) == "" {
			return fmt.Errorf("fulfillment: empty endpoint for benefit %q", benefit)
		}
	}
	return nil
}

// Endpoint resolves the delivery endpoint for a benefit name.
func (r Routes) Endpoint(benefit string) string {
	if endpoint, ok := r.Benefits[benefit]; ok {
		return endpoint
	}
	return r.DefaultEndpoint
}
