package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinResolveAllKeys(t *testing.T) {
	reg := Builtin()
	for _, profile := range reg.List() {
		resolved, ok := reg.Resolve(profile.Key)
		require.True(t, ok)
		require.Equal(t, profile, resolved)
	}
}

func TestResolveUnknownKey(t *testing.T) {
	reg := Builtin()
	for _, key := range []string{"", "0", "99", "x", "one"} {
		_, ok := reg.Resolve(key)
		require.False(t, ok, "key %q should not resolve", key)
	}
}

func TestResolveTrimsWhitespace(t *testing.T) {
	reg := Builtin()
	profile, ok := reg.Resolve("  1 ")
	require.True(t, ok)
	require.Equal(t, "en-US", profile.RecognitionLocale)
	require.Equal(t, "en", profile.SynthesisLocale)
}

func TestListPreservesMenuOrder(t *testing.T) {
	reg := Builtin()
	list := reg.List()
	require.Len(t, list, 3)
	require.Equal(t, []string{"1", "2", "3"}, []string{list[0].Key, list[1].Key, list[2].Key})
}

func TestNewRejectsBadProfiles(t *testing.T) {
	tests := []struct {
		name     string
		profiles []Profile
	}{
		{name: "empty", profiles: nil},
		{name: "blank key", profiles: []Profile{{Key: " ", DisplayName: "English", RecognitionLocale: "en-US", SynthesisLocale: "en"}}},
		{name: "duplicate key", profiles: []Profile{
			{Key: "1", DisplayName: "English", RecognitionLocale: "en-US", SynthesisLocale: "en"},
			{Key: "1", DisplayName: "Hindi", RecognitionLocale: "hi-IN", SynthesisLocale: "hi"},
		}},
		{name: "missing recognition locale", profiles: []Profile{{Key: "1", DisplayName: "English", SynthesisLocale: "en"}}},
		{name: "missing synthesis locale", profiles: []Profile{{Key: "1", DisplayName: "English", RecognitionLocale: "en-US"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.profiles)
			require.Error(t, err)
		})
	}
}
