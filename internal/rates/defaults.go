package rates

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the built-in rate template used when the backend has no
// saved sheet, and as the base layer of every merge. Each call returns a
// fresh copy so callers may mutate freely.
func Defaults() Sheet {
	var s Sheet
	if err := yaml.Unmarshal(defaultsYAML, &s); err != nil {
		// the template is compiled in; a parse failure is a build defect
		panic(fmt.Sprintf("rates: bad defaults template: %v", err))
	}
	return s
}
