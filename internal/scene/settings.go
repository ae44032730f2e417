// ABOUTME: Scene settings record with enumerated visual mode, quality, style, gender and body type
// ABOUTME: Parsing and validation at the boundary to the generation collaborator

package scene

import (
	"fmt"
	"strings"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/quality"
)

// VisualMode is the framing of the rendered subject.
type VisualMode string

const (
	Portrait VisualMode = "portrait"
	FullBody VisualMode = "full-body"
)

// Style is a photography style. Custom values are allowed.
type Style string

const (
	StyleCinematicUHQ Style = "cinematic-uhq"
	StyleEditorial    Style = "editorial"
	StyleMinimalist   Style = "minimalist"
)

// Gender is the presentation requested for the base model.
type Gender string

const (
	Masculine Gender = "masculine"
	Feminine  Gender = "feminine"
	Neutral   Gender = "neutral"
)

// BodyType is the build requested for the base model.
type BodyType string

const (
	Slim     BodyType = "slim"
	Athletic BodyType = "athletic"
	Curvy    BodyType = "curvy"
	Regular  BodyType = "regular"
)

// Height bounds in centimetres.
const (
	MinHeight = 50
	MaxHeight = 272
)

// Settings is the scene configuration handed to the generation collaborator.
type Settings struct {
	VisualMode  VisualMode   `json:"visual_mode" yaml:"visual_mode"`
	Quality     quality.Tier `json:"quality" yaml:"quality"`
	Lighting    string       `json:"lighting" yaml:"lighting"`
	Environment string       `json:"environment" yaml:"environment"`
	Height      int          `json:"height" yaml:"height"`
	Style       Style        `json:"style" yaml:"style"`
	ShowMirror  bool         `json:"show_mirror,omitempty" yaml:"show_mirror,omitempty"`
}

// Defaults returns the settings a new session starts with.
func Defaults() Settings {
	return Settings{
		VisualMode:  FullBody,
		Quality:     quality.UHQ,
		Lighting:    "Soft Studio Light",
		Environment: "Neutral Professional Studio",
		Height:      170,
		Style:       StyleCinematicUHQ,
	}
}

// Validate checks every field and reports the first problem as a validation error.
func (s Settings) Validate() error {
	if _, err := ParseVisualMode(string(s.VisualMode)); err != nil {
		return faults.Validation("scene settings", err)
	}
	if !s.Quality.Valid() {
		return faults.Validationf("scene settings", "unknown quality tier %q", s.Quality)
	}
	if strings.TrimSpace(s.Lighting) == "" {
		return faults.Validationf("scene settings", "lighting is required")
	}
	if strings.TrimSpace(s.Environment) == "" {
		return faults.Validationf("scene settings", "environment is required")
	}
	if s.Height < MinHeight || s.Height > MaxHeight {
		return faults.Validationf("scene settings", "height %d outside %d..%d cm", s.Height, MinHeight, MaxHeight)
	}
	if _, err := ParseStyle(string(s.Style)); err != nil {
		return faults.Validation("scene settings", err)
	}
	return nil
}

// ParseVisualMode converts a string into a VisualMode.
func ParseVisualMode(s string) (VisualMode, error) {
	switch VisualMode(s) {
	case Portrait, FullBody:
		return VisualMode(s), nil
	default:
		return "", fmt.Errorf("unknown visual mode %q", s)
	}
}

// ParseStyle accepts the house styles and any other non-empty style name.
func ParseStyle(s string) (Style, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("style is required")
	}
	return Style(s), nil
}

// Custom reports whether the style is outside the house set.
func (s Style) Custom() bool {
	switch s {
	case StyleCinematicUHQ, StyleEditorial, StyleMinimalist:
		return false
	default:
		return true
	}
}

// ParseGender converts a string into a Gender.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case Masculine, Feminine, Neutral:
		return Gender(s), nil
	default:
		return "", faults.Validationf("parse gender", "unknown gender %q", s)
	}
}

// ParseBodyType converts a string into a BodyType.
func ParseBodyType(s string) (BodyType, error) {
	switch BodyType(s) {
	case Slim, Athletic, Curvy, Regular:
		return BodyType(s), nil
	default:
		return "", faults.Validationf("parse body type", "unknown body type %q", s)
	}
}
