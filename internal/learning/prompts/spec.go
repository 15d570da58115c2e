package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Spec is the declaration format used in templates.yaml.
type Spec struct {
	Name    PromptName `yaml:"name"`
	Version int        `yaml:"version"`
	Mode    string     `yaml:"mode"`
	// System and User are go templates over Input.
	System   string   `yaml:"system"`
	User     string   `yaml:"user"`
	Requires []string `yaml:"requires"`
}

// MakeTemplate compiles a Spec into a Template (runtime type)
func MakeTemplate(s Spec) (Template, error) {
	if strings.TrimSpace(string(s.Name)) == "" {
		return Template{}, fmt.Errorf("missing prompt name")
	}
	if s.Version <= 0 {
		return Template{}, fmt.Errorf("invalid version for %s", s.Name)
	}
	mode := strings.ToLower(strings.TrimSpace(s.Mode))
	if mode == "" {
		mode = ModeJSON
	}
	if mode != ModeJSON && mode != ModeText {
		return Template{}, fmt.Errorf("invalid mode %q for %s", s.Mode, s.Name)
	}
	sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return Template{}, fmt.Errorf("%s system template parse: %w", s.Name, err)
	}
	userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return Template{}, fmt.Errorf("%s user template parse: %w", s.Name, err)
	}
	var checks []Validator
	for _, r := range s.Requires {
		v, ok := validators[strings.TrimSpace(r)]
		if !ok {
			return Template{}, fmt.Errorf("%s: unknown requirement %q", s.Name, r)
		}
		checks = append(checks, v)
	}
	render := func(t *template.Template, in Input) (string, error) {
		var b bytes.Buffer
		if err := t.Execute(&b, in); err != nil {
			return "", err
		}
		return strings.TrimSpace(b.String()), nil
	}
	tt := Template{
		Name:    s.Name,
		Version: s.Version,
		Mode:    mode,
		System:  func(in Input) (string, error) { return render(sysT, in) },
		User:    func(in Input) (string, error) { return render(userT, in) },
	}
	if len(checks) > 0 {
		tt.Validate = func(in Input) error {
			for _, v := range checks {
				if err := v(in); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return tt, nil
}
