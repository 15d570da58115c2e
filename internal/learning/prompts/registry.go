package prompts

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/learnsphere-backend/internal/platform/promptstyle"
)

//go:embed templates.yaml
var templatesFS embed.FS

type Template struct {
	Name     PromptName
	Version  int
	Mode     string
	System   func(Input) (string, error)
	User     func(Input) (string, error)
	Validate Validator
}

type templateFile struct {
	Prompts []Spec `yaml:"prompts"`
}

var (
	registryMu sync.RWMutex
	registry   = map[PromptName]Template{}
	loadOnce   sync.Once
	loadErr    error
)

// Register registers a compiled Template, replacing any earlier one with the same name.
func Register(t Template) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t.Name] = t
}

// LoadSpecs parses a templates document and registers every prompt in it.
func LoadSpecs(raw []byte) error {
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse prompt templates: %w", err)
	}
	if len(f.Prompts) == 0 {
		return fmt.Errorf("prompt templates: no prompts defined")
	}
	for _, s := range f.Prompts {
		t, err := MakeTemplate(s)
		if err != nil {
			return err
		}
		Register(t)
	}
	return nil
}

func ensureLoaded() error {
	loadOnce.Do(func() {
		raw, err := templatesFS.ReadFile("templates.yaml")
		if err != nil {
			loadErr = fmt.Errorf("read embedded templates: %w", err)
			return
		}
		loadErr = LoadSpecs(raw)
	})
	return loadErr
}

// Build renders the named prompt for in. JSON prompts get the shared style preamble.
func Build(name PromptName, in Input) (Prompt, error) {
	if err := ensureLoaded(); err != nil {
		return Prompt{}, err
	}
	registryMu.RLock()
	t, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.System == nil || t.User == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system/user renderers", string(name))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
		}
	}
	sys, err := t.System(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s system render: %w", string(name), err)
	}
	user, err := t.User(in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s user render: %w", string(name), err)
	}
	return Prompt{
		Name:    string(t.Name),
		Version: t.Version,
		Mode:    t.Mode,
		System:  promptstyle.ApplySystem(sys, t.Mode),
		User:    strings.TrimSpace(user),
	}, nil
}

// Names lists the registered prompts.
func Names() []PromptName {
	_ = ensureLoaded()
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]PromptName, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	return out
}
