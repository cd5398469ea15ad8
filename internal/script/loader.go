// Package script loads and validates the externally authored tour
// script: the ordered step list plus the watcher rule table, from YAML.
package script

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/guidepost-io/guidepost/internal/domain/step"
	"github.com/guidepost-io/guidepost/internal/engine"
)

// SupportedMajor is the script format major version this engine reads.
const SupportedMajor = "v1"

// ErrUnsupportedVersion is returned for scripts written against a
// different format major.
var ErrUnsupportedVersion = errors.New("unsupported script version")

// File is the on-disk script layout.
type File struct {
	Version string      `yaml:"version"`
	Steps   []step.Step `yaml:"steps"`
	Rules   []ruleYAML  `yaml:"rules,omitempty"`
}

// ruleYAML is engine.Rule with the settle delay in milliseconds, which
// is friendlier to author than Go duration syntax.
type ruleYAML struct {
	Step          string            `yaml:"step"`
	When          engine.Condition  `yaml:"when"`
	Signal        string            `yaml:"signal,omitempty"`
	Element       string            `yaml:"element,omitempty"`
	Value         any               `yaml:"value,omitempty"`
	SettleDelayMs int64             `yaml:"settle_delay_ms,omitempty"`
	Action        engine.RuleAction `yaml:"action"`
	JumpTo        string            `yaml:"jump_to,omitempty"`
	JumpToElse    string            `yaml:"jump_to_else,omitempty"`
	CheckElement  string            `yaml:"check_element,omitempty"`
}

func (r ruleYAML) rule() engine.Rule {
	return engine.Rule{
		StepID:       r.Step,
		Condition:    r.When,
		Signal:       r.Signal,
		Element:      r.Element,
		Value:        r.Value,
		SettleDelay:  time.Duration(r.SettleDelayMs) * time.Millisecond,
		Action:       r.Action,
		JumpTo:       r.JumpTo,
		JumpToElse:   r.JumpToElse,
		CheckElement: r.CheckElement,
	}
}

// Load reads a script file and returns the validated script and rules.
func Load(path string) (*step.Script, []engine.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML script content.
func Parse(data []byte) (*step.Script, []engine.Rule, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if err := checkVersion(f.Version); err != nil {
		return nil, nil, err
	}

	sc, err := step.NewScript(f.Steps)
	if err != nil {
		return nil, nil, err
	}

	rules := make([]engine.Rule, 0, len(f.Rules))
	for _, ry := range f.Rules {
		r := ry.rule()
		if err := r.Validate(); err != nil {
			return nil, nil, err
		}
		if _, err := sc.IndexOf(r.StepID); err != nil {
			return nil, nil, fmt.Errorf("rule references %w", err)
		}
		rules = append(rules, r)
	}

	return sc, rules, nil
}

// checkVersion gates on the script format major. "v1" and "v1.x.y" are
// accepted; anything else is rejected up front rather than half-read.
func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: script has no version", ErrUnsupportedVersion)
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a valid version", ErrUnsupportedVersion, v)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: script is %s, engine reads %s", ErrUnsupportedVersion, v, SupportedMajor)
	}
	return nil
}
