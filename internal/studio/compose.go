// ABOUTME: Composition steps: base model, garment layering, scene change, undo and reset
// ABOUTME: Each step resolves, generates and registers first, then commits state in one critical section

package studio

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/generation"
	"github.com/2389/fitcheck-studio/internal/history"
	"github.com/2389/fitcheck-studio/internal/layers"
	"github.com/2389/fitcheck-studio/internal/quality"
	"github.com/2389/fitcheck-studio/internal/registry"
	"github.com/2389/fitcheck-studio/internal/scene"
	"github.com/2389/fitcheck-studio/internal/store"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

// BaseOptions describes the subject requested for a base model.
type BaseOptions struct {
	Gender   scene.Gender
	Body     scene.BodyType
	Settings scene.Settings
}

// FinalizeBaseModel turns a source photo into the session's base render.
// The quality tier is graded from the decoded source size and overrides
// opts.Settings.Quality. On success history is [base] and no layers are applied.
func (s *Session) FinalizeBaseModel(ctx context.Context, source string, opts BaseOptions) (string, error) {
	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	img, err := generation.ParseDataURL(source)
	if err != nil {
		return "", faults.Validation("finalize base model", fmt.Errorf("source image: %w", err))
	}
	if _, err := scene.ParseGender(string(opts.Gender)); err != nil {
		return "", err
	}
	if _, err := scene.ParseBodyType(string(opts.Body)); err != nil {
		return "", err
	}

	settings := opts.Settings
	settings.Quality = quality.Classify(img.Size())
	if err := settings.Validate(); err != nil {
		return "", err
	}

	req, err := generation.BaseModelRequest(source, opts.Gender, opts.Body, settings)
	if err != nil {
		return "", err
	}
	id, err := s.generate(ctx, req)
	if err != nil {
		return "", err
	}
	if err := s.persist(ctx, id); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.base = id
	s.gender = opts.Gender
	s.settings = settings
	s.history = history.New(id)
	s.steps = []stepKind{stepBase}
	s.layers.Reset()
	depth := s.history.Len()
	s.mu.Unlock()

	s.metrics.SetHistoryDepth(depth)
	s.logger.Info("base model finalized", "asset_id", id, "quality", settings.Quality, "source_bytes", img.Size())
	return id, nil
}

// LoadCharacter makes a saved character the session base.
func (s *Session) LoadCharacter(ctx context.Context, id string) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	c, err := s.lib.GetCharacter(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return faults.Resolution("load character", fmt.Errorf("character %s: %w", id, err))
	}
	if err != nil {
		return faults.Storage("load character", err)
	}
	if _, err := s.reg.Resolve(ctx, c.ImageRef); err != nil {
		return err
	}
	if err := s.persist(ctx, c.ImageRef); err != nil {
		return err
	}

	s.mu.Lock()
	s.base = c.ImageRef
	s.gender = c.Gender
	s.settings = c.Settings
	s.history = history.New(c.ImageRef)
	s.steps = []stepKind{stepBase}
	s.layers.Reset()
	s.mu.Unlock()

	s.metrics.SetHistoryDepth(1)
	s.logger.Info("character loaded", "character_id", c.ID, "base", c.ImageRef)
	return nil
}

// AddGarment layers item onto the current render.
func (s *Session) AddGarment(ctx context.Context, item wardrobe.Item) (string, error) {
	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	if err := item.Validate(); err != nil {
		return "", faults.Validation("add garment", err)
	}

	s.mu.RLock()
	if s.history == nil {
		s.mu.RUnlock()
		return "", faults.Validationf("add garment", "no base model")
	}
	current := s.history.Current()
	settings := s.settings
	next := s.layers.Clone()
	s.mu.RUnlock()

	if err := next.Insert(item); err != nil {
		return "", err
	}

	base, err := s.reg.Resolve(ctx, current)
	if err != nil {
		return "", err
	}
	garment, err := s.garmentImage(ctx, item)
	if err != nil {
		return "", err
	}

	req, err := generation.GarmentRequest(base, garment, item, next.OrderedNames(), settings)
	if err != nil {
		return "", err
	}
	id, err := s.generate(ctx, req)
	if err != nil {
		return "", err
	}
	if err := s.persist(ctx, id, item.ImageRef); err != nil {
		return "", err
	}

	s.commit(id, stepGarment, next)
	s.logger.Info("garment applied", "asset_id", id, "item_id", item.ID, "category", item.Category, "layers", next.Len())
	return id, nil
}

// garmentImage resolves the item's image to a data URL.
func (s *Session) garmentImage(ctx context.Context, item wardrobe.Item) (string, error) {
	payload, err := s.reg.Resolve(ctx, item.ImageRef)
	if err != nil {
		return "", err
	}
	if !generation.IsRemote(payload) {
		return payload, nil
	}
	inlined, err := s.fetcher.Fetch(ctx, payload)
	if err != nil {
		return "", faults.Resolution("add garment", err)
	}
	return inlined, nil
}

// ChangeScene re-renders the base under directive, keeping the current outfit.
func (s *Session) ChangeScene(ctx context.Context, directive string) (string, error) {
	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	s.mu.RLock()
	if s.history == nil {
		s.mu.RUnlock()
		return "", faults.Validationf("change scene", "no base model")
	}
	baseRef := s.base
	names := s.layers.OrderedNames()
	settings := s.settings
	s.mu.RUnlock()

	base, err := s.reg.Resolve(ctx, baseRef)
	if err != nil {
		return "", err
	}

	req, err := generation.SceneRequest(base, names, directive, settings)
	if err != nil {
		return "", err
	}
	id, err := s.generate(ctx, req)
	if err != nil {
		return "", err
	}
	if err := s.persist(ctx, id); err != nil {
		return "", err
	}

	s.commit(id, stepScene, nil)
	s.logger.Info("scene changed", "asset_id", id, "directive", directive)
	return id, nil
}

// Undo reverts the last step. A garment step also removes its layer.
func (s *Session) Undo(ctx context.Context) (string, error) {
	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	s.mu.Lock()
	if s.history == nil {
		s.mu.Unlock()
		return "", faults.Invariant("undo", history.ErrAtBase)
	}
	current, err := s.history.Undo()
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	step := s.steps[len(s.steps)-1]
	s.steps = s.steps[:len(s.steps)-1]
	var removed wardrobe.Item
	if step == stepGarment {
		removed, _ = s.layers.RemoveLast()
	}
	depth := s.history.Len()
	s.mu.Unlock()

	s.persistQuiet(ctx)
	s.metrics.SetHistoryDepth(depth)
	s.logger.InfoContext(ctx, "undo", "current", current, "removed_layer", removed.ID)
	return current, nil
}

// StartOver clears the session back to no base model and drops its record.
func (s *Session) StartOver(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.mu.Lock()
	s.base = ""
	s.gender = ""
	s.history = nil
	s.steps = nil
	s.layers.Reset()
	s.mu.Unlock()

	if err := s.lib.DeleteSession(ctx, s.id); err != nil {
		s.logger.Warn("failed to drop session record", "error", err)
	}

	s.metrics.SetHistoryDepth(0)
	s.logger.Info("session reset")
	return nil
}

// generate invokes the collaborator and registers the resulting render.
func (s *Session) generate(ctx context.Context, req *generation.Request) (string, error) {
	payload, err := s.gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, faults.ErrGeneration) {
			return "", err
		}
		return "", faults.Generation(string(req.Operation), err)
	}
	if payload == "" {
		return "", faults.Generation(string(req.Operation), generation.ErrNoImage)
	}
	return s.reg.Register(ctx, payload, registry.KindRender)
}

// commit pushes id as the new current render. A non-nil stack replaces the layers.
func (s *Session) commit(id string, step stepKind, stack *layers.Stack) {
	s.mu.Lock()
	s.history.Push(id)
	s.steps = append(s.steps, step)
	if stack != nil {
		s.layers = stack
	}
	depth := s.history.Len()
	s.mu.Unlock()

	s.metrics.SetHistoryDepth(depth)
}
