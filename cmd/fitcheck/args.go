// ABOUTME: Minimal argument parsing shared by the CLI commands
// ABOUTME: Supports "--flag value", "--flag=value" and boolean flags alongside positionals

package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389/fitcheck-studio/internal/generation"
)

// parsedArgs holds flag values and positional arguments in order.
type parsedArgs struct {
	flags       map[string]string
	positionals []string
}

// parseArgs splits args into flags and positionals. valueFlags take a value;
// boolFlags do not. Any other "--" argument is an error.
func parseArgs(args []string, valueFlags, boolFlags []string) (*parsedArgs, error) {
	isValue := make(map[string]bool, len(valueFlags))
	for _, f := range valueFlags {
		isValue[f] = true
	}
	isBool := make(map[string]bool, len(boolFlags))
	for _, f := range boolFlags {
		isBool[f] = true
	}

	out := &parsedArgs{flags: make(map[string]string)}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			out.positionals = append(out.positionals, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		switch {
		case isBool[name]:
			if hasValue {
				return nil, fmt.Errorf("--%s does not take a value", name)
			}
			out.flags[name] = "true"
		case isValue[name]:
			if !hasValue {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("--%s requires a value", name)
				}
				value = args[i+1]
				i++
			}
			out.flags[name] = value
		default:
			return nil, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	return out, nil
}

func (p *parsedArgs) get(name string) string {
	return p.flags[name]
}

func (p *parsedArgs) has(name string) bool {
	_, ok := p.flags[name]
	return ok
}

// arg returns the i-th positional, or "" if absent.
func (p *parsedArgs) arg(i int) string {
	if i < len(p.positionals) {
		return p.positionals[i]
	}
	return ""
}

// readImage loads a file as a data URL and returns its size on disk.
func readImage(path string) (string, int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("reading image: %w", err)
	}
	if len(raw) == 0 {
		return "", 0, fmt.Errorf("image %s is empty", path)
	}

	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = http.DetectContentType(raw)
		if i := strings.IndexByte(mediaType, ';'); i >= 0 {
			mediaType = mediaType[:i]
		}
	}
	return generation.EncodeDataURL(mediaType, raw), int64(len(raw)), nil
}
