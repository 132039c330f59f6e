package profile

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned for a profile file without any data.
var ErrEmpty = errors.New("profile is empty")

// Load reads a YAML or JSON profile file. A leading ~ in path is expanded.
func Load(path string) (*Profile, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding profile path %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", expanded, err)
	}
	return p, nil
}

// Parse decodes a profile document. JSON input is accepted since it is valid
// YAML.
func Parse(data []byte) (*Profile, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	var p Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			timeToStringHook,
			stringToSkillHook,
		),
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	p.normalize()
	return &p, nil
}

func timeToStringHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if t, ok := data.(time.Time); ok {
		return t.Format("2006-01-02"), nil
	}
	return data, nil
}

func stringToSkillHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(Skill{}) {
		return data, nil
	}
	return map[string]any{"name": data}, nil
}
