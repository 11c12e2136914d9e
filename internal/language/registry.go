// Package language holds the selectable recognition/synthesis locale profiles.
package language

import (
	"fmt"
	"strings"
)

// Profile pairs one menu key with the locales used for a conversation turn.
type Profile struct {
	Key               string
	DisplayName       string
	RecognitionLocale string
	SynthesisLocale   string
}

// Registry is an ordered, immutable set of profiles keyed by menu choice.
type Registry struct {
	profiles []Profile
	byKey    map[string]Profile
}

// Builtin returns the default registry shipped with parley.
func Builtin() Registry {
	reg, err := New([]Profile{
		{Key: "1", DisplayName: "English (US)", RecognitionLocale: "en-US", SynthesisLocale: "en"},
		{Key: "2", DisplayName: "Hindi (India)", RecognitionLocale: "hi-IN", SynthesisLocale: "hi"},
		{Key: "3", DisplayName: "Kannada (India)", RecognitionLocale: "kn-IN", SynthesisLocale: "kn"},
	})
	if err != nil {
		panic(err)
	}
	return reg
}

// New validates and freezes an ordered profile list.
func New(profiles []Profile) (Registry, error) {
	if len(profiles) == 0 {
		return Registry{}, fmt.Errorf("language registry must not be empty")
	}

	byKey := make(map[string]Profile, len(profiles))
	frozen := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		p.Key = strings.TrimSpace(p.Key)
		p.DisplayName = strings.TrimSpace(p.DisplayName)
		p.RecognitionLocale = strings.TrimSpace(p.RecognitionLocale)
		p.SynthesisLocale = strings.TrimSpace(p.SynthesisLocale)

		if p.Key == "" {
			return Registry{}, fmt.Errorf("language profile %q has an empty key", p.DisplayName)
		}
		if _, exists := byKey[p.Key]; exists {
			return Registry{}, fmt.Errorf("duplicate language key %q", p.Key)
		}
		if p.DisplayName == "" {
			return Registry{}, fmt.Errorf("language %q has an empty display name", p.Key)
		}
		if p.RecognitionLocale == "" {
			return Registry{}, fmt.Errorf("language %q has an empty recognition locale", p.Key)
		}
		if p.SynthesisLocale == "" {
			return Registry{}, fmt.Errorf("language %q has an empty synthesis locale", p.Key)
		}

		byKey[p.Key] = p
		frozen = append(frozen, p)
	}

	return Registry{profiles: frozen, byKey: byKey}, nil
}

// List returns profiles in menu order.
func (r Registry) List() []Profile {
	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Resolve looks up a profile by its menu key.
func (r Registry) Resolve(key string) (Profile, bool) {
	p, ok := r.byKey[strings.TrimSpace(key)]
	return p, ok
}
