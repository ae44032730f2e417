// ABOUTME: Interactive studio REPL driving one fitting session
// ABOUTME: Reads commands line by line and prints the session state after each step

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/2389/fitcheck-studio/internal/scene"
	"github.com/2389/fitcheck-studio/internal/studio"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

const studioHelp = `Commands:
  base <image> [--gender G] [--body B] [--mode portrait|full-body] [--style S]
                          Generate a base model from a photo
  load <character-id>     Use a saved character as the base
  wardrobe                List library garments
  add <item-id>           Layer a garment onto the current render
  scene <directive>       Re-render the base in a new scene, keeping the outfit
  undo                    Revert the last step
  layers                  Show applied garments, innermost first
  history                 Show the render history
  state                   Print the session as JSON
  save-character <name>   Save the base model
  save-outfit <name>      Save the current look
  optimize [--force] [--grace D]
                          Report, or with --force delete, assets nothing references
  start-over              Clear the session
  help                    Show this help
  quit                    Leave the studio`

func runStudio(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	color.New(color.FgHiBlack).Printf("    version: %s\n\n", version)

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	a.serveMetrics(ctx)

	if err := seedLibrary(ctx, a); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:     %s\n", a.configPath)
	green.Print("    ▶ ")
	fmt.Printf("Storage:    %s\n", a.cfg.Storage.Driver)
	green.Print("    ▶ ")
	fmt.Printf("Generation: %s\n", valueOr(a.cfg.Generation.Endpoint, "(not configured)"))
	fmt.Println()
	fmt.Println("Type help for commands. Ctrl+D to quit.")

	defer func() {
		if err := a.session.Close(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("failed to close session", "error", err)
		}
	}()

	return repl(ctx, a.session, a.cfg.Registry.OptimizeGrace, os.Stdin, os.Stdout)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// seedLibrary fills an empty library from the configured catalog, or the built-in one.
func seedLibrary(ctx context.Context, a *app) error {
	items, err := a.session.Wardrobe(ctx)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return nil
	}

	seed := wardrobe.DefaultCatalog()
	if a.cfg.Catalog.Path != "" {
		seed, err = wardrobe.LoadCatalog(a.cfg.Catalog.Path)
		if err != nil {
			return err
		}
	}
	_, err = a.session.ImportCatalog(ctx, seed)
	return err
}

// repl runs commands from in until quit, EOF or ctx is cancelled. grace is the
// default optimize grace window.
func repl(ctx context.Context, sess *studio.Session, grace time.Duration, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "studio> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := dispatch(ctx, sess, grace, cmd, rest, out); err != nil {
			color.New(color.FgRed).Fprintf(out, "error: %v\n", err)
		}
	}
}

func dispatch(ctx context.Context, sess *studio.Session, grace time.Duration, cmd, rest string, out io.Writer) error {
	switch cmd {
	case "help":
		fmt.Fprintln(out, studioHelp)
		return nil

	case "base":
		return cmdBase(ctx, sess, rest, out)

	case "load":
		if rest == "" {
			return errors.New("usage: load <character-id>")
		}
		if err := sess.LoadCharacter(ctx, rest); err != nil {
			return err
		}
		fmt.Fprintf(out, "base: %s\n", sess.State().Base)
		return nil

	case "wardrobe":
		items, err := sess.Wardrobe(ctx)
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Fprintf(out, "  %-24s %-20s %s\n", item.ID, item.Category, item.Name)
		}
		return nil

	case "add":
		if rest == "" {
			return errors.New("usage: add <item-id>")
		}
		item, err := sess.Garment(ctx, rest)
		if err != nil {
			return err
		}
		id, err := sess.AddGarment(ctx, *item)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "current: %s\n", id)
		printLayers(sess.State(), out)
		return nil

	case "scene":
		id, err := sess.ChangeScene(ctx, rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "current: %s\n", id)
		return nil

	case "undo":
		id, err := sess.Undo(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "current: %s\n", id)
		printLayers(sess.State(), out)
		return nil

	case "layers":
		printLayers(sess.State(), out)
		return nil

	case "history":
		st := sess.State()
		for i, id := range st.History {
			marker := " "
			if id == st.Current && i == len(st.History)-1 {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %d  %s\n", marker, i, id)
		}
		return nil

	case "state":
		data, err := json.MarshalIndent(sess.State(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil

	case "save-character":
		c, err := sess.SaveCharacter(ctx, rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "saved character %s (%s)\n", c.Name, c.ID)
		return nil

	case "save-outfit":
		o, err := sess.SaveOutfit(ctx, rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "saved outfit %s (%s)\n", o.Name, o.ID)
		return nil

	case "optimize":
		o, err := parseOptimizeArgs(strings.Fields(rest), grace)
		if err != nil {
			return err
		}
		report, err := sess.Optimize(ctx, o.options()...)
		if err != nil {
			return err
		}
		printReport(out, report)
		return nil

	case "start-over":
		return sess.StartOver(ctx)

	default:
		return fmt.Errorf("unknown command %q (type help)", cmd)
	}
}

func cmdBase(ctx context.Context, sess *studio.Session, rest string, out io.Writer) error {
	p, err := parseArgs(strings.Fields(rest), []string{"gender", "body", "mode", "style"}, nil)
	if err != nil {
		return err
	}
	if p.arg(0) == "" {
		return errors.New("usage: base <image> [--gender G] [--body B]")
	}

	source, _, err := readImage(p.arg(0))
	if err != nil {
		return err
	}

	opts := studio.BaseOptions{
		Gender:   scene.Neutral,
		Body:     scene.Regular,
		Settings: sess.Settings(),
	}
	if v := p.get("gender"); v != "" {
		if opts.Gender, err = scene.ParseGender(v); err != nil {
			return err
		}
	}
	if v := p.get("body"); v != "" {
		if opts.Body, err = scene.ParseBodyType(v); err != nil {
			return err
		}
	}
	if v := p.get("mode"); v != "" {
		if opts.Settings.VisualMode, err = scene.ParseVisualMode(v); err != nil {
			return err
		}
	}
	if v := p.get("style"); v != "" {
		if opts.Settings.Style, err = scene.ParseStyle(v); err != nil {
			return err
		}
	}

	id, err := sess.FinalizeBaseModel(ctx, source, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "base: %s (quality %s)\n", id, sess.Settings().Quality)
	return nil
}

func printLayers(st studio.State, out io.Writer) {
	if len(st.Layers) == 0 {
		fmt.Fprintln(out, "layers: none")
		return
	}
	fmt.Fprintln(out, "layers:")
	for i, item := range st.Layers {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, item.Name, item.Category)
	}
}
