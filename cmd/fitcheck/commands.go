// ABOUTME: Non-interactive commands: init, catalog, upload, vault, optimize, classify and listings
// ABOUTME: Each opens the configured stores, runs one operation and prints a short report

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/fitcheck-studio/internal/config"
	"github.com/2389/fitcheck-studio/internal/faults"
	"github.com/2389/fitcheck-studio/internal/quality"
	"github.com/2389/fitcheck-studio/internal/registry"
	"github.com/2389/fitcheck-studio/internal/studio"
	"github.com/2389/fitcheck-studio/internal/wardrobe"
)

func runInit(args []string) error {
	p, err := parseArgs(args, []string{"endpoint", "driver", "config"}, []string{"force"})
	if err != nil {
		return err
	}

	path := p.get("config")
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !p.has("force") {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	cfg := config.Default(dataDir)
	if v := p.get("endpoint"); v != "" {
		cfg.Generation.Endpoint = v
	}
	if v := p.get("driver"); v != "" {
		cfg.Storage.Driver = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Wrote %s\n", path)
	green.Print("✓ ")
	fmt.Printf("Data directory: %s\n", dataDir)
	if cfg.Generation.Endpoint == "" {
		color.Yellow("  Set generation.endpoint before starting a studio session.")
	}
	return nil
}

func runCatalog(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fitcheck catalog import|list|export")
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	switch args[0] {
	case "import":
		if len(args) < 2 {
			return fmt.Errorf("usage: fitcheck catalog import <file>")
		}
		items, err := wardrobe.LoadCatalog(args[1])
		if err != nil {
			return err
		}
		n, err := a.session.ImportCatalog(ctx, items)
		if err != nil {
			return err
		}
		color.Green("Imported %d garments from %s", n, args[1])
		return nil

	case "list":
		items, err := a.session.Wardrobe(ctx)
		if err != nil {
			return err
		}
		printItems(items)
		return nil

	case "export":
		items, err := a.session.Wardrobe(ctx)
		if err != nil {
			return err
		}
		flat := make([]wardrobe.Item, len(items))
		for i, item := range items {
			flat[i] = *item
		}
		data, err := wardrobe.ExportCatalog(flat)
		if err != nil {
			return err
		}
		return writeOutput(args[1:], data)

	default:
		return fmt.Errorf("unknown catalog command: %s", args[0])
	}
}

func printItems(items []*wardrobe.Item) {
	if len(items) == 0 {
		fmt.Println("No garments in the library.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSUB\tBRAND")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Category, item.SubCategory, item.Brand)
	}
	_ = w.Flush()
}

// writeOutput writes data to the file named in rest[0], or stdout.
func writeOutput(rest []string, data []byte) error {
	if len(rest) == 0 || rest[0] == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(rest[0]), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(rest[0], data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", rest[0], err)
	}
	color.Green("Wrote %s", rest[0])
	return nil
}

func runUpload(ctx context.Context, args []string) error {
	p, err := parseArgs(args, []string{"name", "category", "sub"}, nil)
	if err != nil {
		return err
	}
	if p.arg(0) == "" {
		return fmt.Errorf("usage: fitcheck upload <image> --category C [--name N] [--sub S]")
	}

	payload, _, err := readImage(p.arg(0))
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	item, err := a.session.UploadGarment(ctx, studio.Upload{
		Name:        p.get("name"),
		Category:    p.get("category"),
		SubCategory: p.get("sub"),
		Payload:     payload,
	})
	if err != nil {
		return err
	}
	color.Green("Added %s (%s) as %s", item.Name, item.Category, item.ID)
	return nil
}

func runVault(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fitcheck vault export|import|stats")
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	switch args[0] {
	case "export":
		data, err := a.registry.ExportVault(ctx)
		if err != nil {
			return err
		}
		return writeOutput(args[1:], data)

	case "import":
		if len(args) < 2 {
			return fmt.Errorf("usage: fitcheck vault import <file>")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading vault: %w", err)
		}
		n, err := a.registry.ImportVault(ctx, data)
		if err != nil {
			return err
		}
		color.Green("Imported %d assets", n)
		return nil

	case "stats":
		stats, err := a.registry.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Assets:  %d\n", stats.Assets)
		fmt.Printf("Bytes:   %d\n", stats.Bytes)
		fmt.Printf("Pool:    %d/%d\n", stats.PoolLen, stats.PoolMax)
		kinds := make([]string, 0, len(stats.ByKind))
		for k := range stats.ByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("  %-8s %d\n", k, stats.ByKind[registry.Kind(k)])
		}
		return nil

	default:
		return fmt.Errorf("unknown vault command: %s", args[0])
	}
}

func runOptimize(ctx context.Context, args []string) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := parseOptimizeArgs(args, a.cfg.Registry.OptimizeGrace)
	if err != nil {
		return err
	}
	report, err := a.session.Optimize(ctx, o.options()...)
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)
	return nil
}

// optimizeArgs holds the parsed flags of an optimize command.
type optimizeArgs struct {
	grace  time.Duration
	dryRun bool
}

// parseOptimizeArgs reads --grace, --dry-run and --force. Without --force the
// pass only reports what it would remove.
func parseOptimizeArgs(args []string, grace time.Duration) (optimizeArgs, error) {
	p, err := parseArgs(args, []string{"grace"}, []string{"dry-run", "force"})
	if err != nil {
		return optimizeArgs{}, faults.Validation("optimize", err)
	}
	o := optimizeArgs{grace: grace, dryRun: p.has("dry-run") || !p.has("force")}
	if raw := p.get("grace"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return optimizeArgs{}, faults.Validationf("optimize", "invalid --grace %q", raw)
		}
		o.grace = d
	}
	return o, nil
}

func (o optimizeArgs) options() []registry.OptimizeOption {
	opts := []registry.OptimizeOption{registry.WithGraceWindow(o.grace)}
	if o.dryRun {
		opts = append(opts, registry.DryRun())
	}
	return opts
}

func printReport(w io.Writer, report registry.OptimizeReport) {
	if report.Skipped {
		fmt.Fprintln(w, "Nothing registered to keep assets alive; skipped")
		return
	}
	fmt.Fprintf(w, "Scanned %d assets, %d reachable, %d within grace window, ", report.Scanned, report.Reachable, report.Spared)
	if report.DryRun {
		color.New(color.FgYellow).Fprintf(w, "%d would be removed\n", report.Removed)
		fmt.Fprintln(w, "Dry run: pass --force to delete")
		return
	}
	color.New(color.FgGreen).Fprintf(w, "%d removed\n", report.Removed)
}

func runClassify(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: fitcheck classify <image>")
	}
	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	tier := quality.Classify(info.Size())
	fmt.Printf("%s\t%d bytes\t%s\n", args[0], info.Size(), tier)
	return nil
}

func runCharacters(ctx context.Context) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	chars, err := a.session.Characters(ctx)
	if err != nil {
		return err
	}
	if len(chars) == 0 {
		fmt.Println("No saved characters.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGENDER\tMODE\tCREATED")
	for _, c := range chars {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Gender, c.Settings.VisualMode, c.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runOutfits(ctx context.Context) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	outfits, err := a.session.Outfits(ctx)
	if err != nil {
		return err
	}
	if len(outfits) == 0 {
		fmt.Println("No saved outfits.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGARMENTS\tCREATED")
	for _, o := range outfits {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", o.ID, o.Name, len(o.GarmentIDs), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
