package prompts

import (
	"errors"
	"fmt"
	"strings"
)

type Validator func(Input) error

type Template struct {
	Name     PromptName
	Version  int
	System   func(Input) string
	User     func(Input) string
	Validate Validator
}

var registry = map[PromptName]Template{}

func Register(t Template) {
	registry[t.Name] = t
}

// Build renders the named template after validating its input.
func Build(name PromptName, in Input) (Prompt, error) {
	t, ok := registry[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	if t.System == nil {
		return Prompt{}, fmt.Errorf("prompt %s missing system renderer", string(name))
	}
	if t.Validate != nil {
		if err := t.Validate(in); err != nil {
			return Prompt{}, fmt.Errorf("%s: %w", string(name), err)
		}
	}
	p := Prompt{
		Name:    string(t.Name),
		Version: t.Version,
		System:  strings.TrimSpace(t.System(in)),
	}
	if t.User != nil {
		p.User = strings.TrimSpace(t.User(in))
	}
	return p, nil
}

func requireTopic(in Input) error {
	if strings.TrimSpace(in.Topic) == "" {
		return errors.New("missing topic")
	}
	return nil
}
