package content

import (
	_ "embed"
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the content file format major version this build reads.
const SupportedMajor = "v1"

//go:embed alexandra.yaml
var referenceBank []byte

// bankFile is the on-disk YAML layout.
type bankFile struct {
	Version   string          `yaml:"version"`
	Title     string          `yaml:"title"`
	Story     string          `yaml:"story"`
	Glossary  []GlossaryEntry `yaml:"glossary"`
	Questions []Question      `yaml:"questions"`
}

// Parse decodes and validates a YAML content bank.
func Parse(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}

	if !semver.IsValid(f.Version) {
		return nil, fmt.Errorf("content version %q is not a semantic version", f.Version)
	}
	if major := semver.Major(f.Version); major != SupportedMajor {
		return nil, fmt.Errorf("content version %s not supported (want %s.x)", f.Version, SupportedMajor)
	}

	b, err := NewBank(f.Title, f.Story, f.Glossary, f.Questions)
	if err != nil {
		return nil, err
	}
	b.version = semver.Canonical(f.Version)
	return b, nil
}

// Load reads a content bank from a YAML file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	return Parse(data)
}

// Reference returns the bundled exercise: "Alexandra David-Néel, une
// exploratrice sur le toit du monde".
func Reference() *Bank {
	b, err := Parse(referenceBank)
	if err != nil {
		panic(fmt.Sprintf("embedded content is invalid: %v", err))
	}
	return b
}

// Resolve loads the bank at path, or the reference bank when path is empty.
func Resolve(path string) (*Bank, error) {
	if path == "" {
		return Reference(), nil
	}
	return Load(path)
}
