// ABOUTME: Generation request type, operations and the per-operation request builders
// ABOUTME: Directives are derived from scene settings and the ordered layer names

package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/quality"
	"github.com/2389/fitcheck-studio/internal/scene"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// Operation names a generation step.
type Operation string

const (
	OpBaseModel        Operation = "base_model"
	OpApplyGarment     Operation = "apply_garment"
	OpReconstructScene Operation = "reconstruct_scene"
)

// Request is one call to the generation collaborator.
type Request struct {
	Operation Operation
	Images    []Image
	Prompt    string
	Settings  scene.Settings
}

// Generator produces one image payload (a data URL) per request.
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req *Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req *Request) (string, error) {
	return f(ctx, req)
}

// BaseModelRequest builds the request that turns a source photo into a base render.
func BaseModelRequest(source string, gender scene.Gender, body scene.BodyType, settings scene.Settings) (*Request, error) {
	img, err := ParseDataURL(source)
	if err != nil {
		return nil, faults.Validation("base model request", fmt.Errorf("source image: %w", err))
	}

	var b strings.Builder
	b.WriteString("BASE MODEL:\n")
	fmt.Fprintf(&b, "- Lens and capture: %s.\n", captureDirective(settings.Quality))
	fmt.Fprintf(&b, "- Lighting: %s, soft key light, high micro-contrast.\n", settings.Lighting)
	fmt.Fprintf(&b, "- Set: %s.\n", settings.Environment)
	b.WriteString("- Identity: the subject's features must match the source image exactly.\n")
	fmt.Fprintf(&b, "- Composition: %s.\n", framingDirective(settings.VisualMode))
	fmt.Fprintf(&b, "- Subject: %s presentation, %s build, %d cm tall.\n", gender, body, settings.Height)
	fmt.Fprintf(&b, "- Style: %s.\n", styleDirective(settings.Style))
	if settings.ShowMirror {
		b.WriteString("- Include a full-length mirror reflection of the subject.\n")
	}
	b.WriteString("Return image data only.")

	return &Request{
		Operation: OpBaseModel,
		Images:    []Image{img},
		Prompt:    b.String(),
		Settings:  settings,
	}, nil
}

// GarmentRequest builds the request that layers item onto the current render.
// stack is the ordered list of layer names including item.
func GarmentRequest(base, garment string, item wardrobe.Item, stack []string, settings scene.Settings) (*Request, error) {
	baseImg, err := ParseDataURL(base)
	if err != nil {
		return nil, faults.Validation("garment request", fmt.Errorf("base render: %w", err))
	}
	garmentImg, err := ParseDataURL(garment)
	if err != nil {
		return nil, faults.Validation("garment request", fmt.Errorf("garment image: %w", err))
	}

	var b strings.Builder
	b.WriteString("GARMENT INTEGRATION:\n")
	fmt.Fprintf(&b, "- Frame: keep the current viewport, %s.\n", framingDirective(settings.VisualMode))
	fmt.Fprintf(&b, "- Garment: %s (%s", item.Name, item.Category)
	if item.SubCategory != "" {
		fmt.Fprintf(&b, " / %s", item.SubCategory)
	}
	b.WriteString(").\n")
	fmt.Fprintf(&b, "- Layering, innermost first: %s.\n", outfitList(stack))
	fmt.Fprintf(&b, "- Light wrapping: global illumination from %s.\n", settings.Lighting)
	b.WriteString("- Identity: do not change the subject's face or the background.\n")
	b.WriteString("Return image data only.")

	return &Request{
		Operation: OpApplyGarment,
		Images:    []Image{baseImg, garmentImg},
		Prompt:    b.String(),
		Settings:  settings,
	}, nil
}

// SceneRequest builds the request that re-renders the base under a new directive
// while keeping the current outfit.
func SceneRequest(base string, stack []string, directive string, settings scene.Settings) (*Request, error) {
	directive = strings.TrimSpace(directive)
	if directive == "" {
		return nil, faults.Validationf("scene request", "directive is required")
	}
	baseImg, err := ParseDataURL(base)
	if err != nil {
		return nil, faults.Validation("scene request", fmt.Errorf("base render: %w", err))
	}

	var b strings.Builder
	b.WriteString("SCENE DIRECTION:\n")
	fmt.Fprintf(&b, "- Instruction: %s.\n", directive)
	fmt.Fprintf(&b, "- Outfit consistency: the subject is wearing %s.\n", outfitList(stack))
	fmt.Fprintf(&b, "- Light mapping: adjust shadows and reflections to match the %s environment.\n", directive)
	fmt.Fprintf(&b, "- Capture: %s; %s.\n", captureDirective(settings.Quality), framingDirective(settings.VisualMode))
	fmt.Fprintf(&b, "- Style: %s.\n", styleDirective(settings.Style))
	b.WriteString("- Face lock: preserve the subject's identity from the source.\n")
	b.WriteString("Return image data only.")

	return &Request{
		Operation: OpReconstructScene,
		Images:    []Image{baseImg},
		Prompt:    b.String(),
		Settings:  settings,
	}, nil
}

func outfitList(stack []string) string {
	if len(stack) == 0 {
		return "no additional garments"
	}
	return strings.Join(stack, ", ")
}

func framingDirective(mode scene.VisualMode) string {
	switch mode {
	case scene.Portrait:
		return "portrait framing from the chest up"
	case scene.FullBody:
		return "full-body framing, head to shoes in frame"
	default:
		return "professional framing"
	}
}

func captureDirective(tier quality.Tier) string {
	switch tier {
	case quality.UHQ:
		return "85mm f/1.8, ISO 100, production 8K detail"
	case quality.Standard:
		return "85mm f/2.8, ISO 200, clean web resolution"
	default:
		return "85mm, neutral exposure"
	}
}

func styleDirective(style scene.Style) string {
	switch style {
	case scene.StyleCinematicUHQ:
		return "cinematic grade, rich contrast, shallow depth of field"
	case scene.StyleEditorial:
		return "fashion editorial, crisp and high-key"
	case scene.StyleMinimalist:
		return "minimalist, muted palette, uncluttered set"
	default:
		return string(style)
	}
}
