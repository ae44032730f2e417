// ABOUTME: Tests for scene settings parsing and validation
// ABOUTME: Covers defaults, enum parsing and the custom style escape hatch

package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/quality"
)

func TestDefaults_AreValid(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Validate())
	assert.Equal(t, FullBody, s.VisualMode)
	assert.Equal(t, quality.UHQ, s.Quality)
	assert.Equal(t, 170, s.Height)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown mode", func(s *Settings) { s.VisualMode = "panorama" }},
		{"unknown quality", func(s *Settings) { s.Quality = "8k" }},
		{"blank lighting", func(s *Settings) { s.Lighting = "  " }},
		{"blank environment", func(s *Settings) { s.Environment = "" }},
		{"too short", func(s *Settings) { s.Height = 10 }},
		{"too tall", func(s *Settings) { s.Height = 400 }},
		{"blank style", func(s *Settings) { s.Style = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, faults.ErrValidation)
		})
	}
}

func TestStyle_Custom(t *testing.T) {
	assert.False(t, StyleEditorial.Custom())

	s, err := ParseStyle("noir-35mm")
	require.NoError(t, err)
	assert.True(t, s.Custom())

	settings := Defaults()
	settings.Style = s
	assert.NoError(t, settings.Validate())
}

func TestParseGenderAndBodyType(t *testing.T) {
	g, err := ParseGender("neutral")
	require.NoError(t, err)
	assert.Equal(t, Neutral, g)

	_, err = ParseGender("other")
	assert.ErrorIs(t, err, faults.ErrValidation)

	b, err := ParseBodyType("athletic")
	require.NoError(t, err)
	assert.Equal(t, Athletic, b)

	_, err = ParseBodyType("tall")
	assert.ErrorIs(t, err, faults.ErrValidation)
}
