// tactguide answers questions about a Tact workspace: a ranked map in TOON
// format, formatting, and editor queries from the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/phobologic/tactguide/internal/config"
	"github.com/phobologic/tactguide/internal/discover"
	"github.com/phobologic/tactguide/internal/log"
	"github.com/phobologic/tactguide/internal/ranking"
	"github.com/phobologic/tactguide/internal/toon"
	"github.com/phobologic/tactguide/internal/workspace"
)

var version = "dev"

const agentHeader = `# Repository Map

The tables below describe this Tact workspace. Files are ranked by how
central they are; symbols list every declaration with its line;
dependencies, calls and contracts show what uses what.

`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command func(args []string, stdout, stderr io.Writer) error

var commands = map[string]command{
	"init": runInit,
	"fmt": func(args []string, stdout, stderr io.Writer) error {
		return runFmt(args, os.Stdin, stdout, stderr)
	},
	"def":      queryCommand("def", 1, definition),
	"refs":     queryCommand("refs", 1, references),
	"type":     queryCommand("type", 1, typeAt),
	"hover":    queryCommand("hover", 1, hoverAt),
	"complete": queryCommand("complete", 1, complete),
	"rename":   queryCommand("rename", 2, rename),
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		if cmd, ok := commands[args[0]]; ok {
			return cmd(args[1:], stdout, stderr)
		}
	}
	return runMap(args, stdout, stderr)
}

// common holds the flags every command accepts.
type common struct {
	config string
	log    string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "config file (default: nearest "+config.FileName+")")
	fs.StringVar(&c.log, "log", "", "append the debug log to this file")
}

// loadConfig reads explicit, or the nearest config file above dir. It
// returns the path it read, "" when defaults apply.
func loadConfig(explicit, dir string) (config.Config, string, error) {
	path := explicit
	if path == "" {
		found, err := config.Find(dir)
		if errors.Is(err, config.ErrNotFound) {
			return config.Default(), "", nil
		}
		if err != nil {
			return config.Config{}, "", err
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}

// startLog directs the debug log to the --log flag or the log_file setting.
// The returned function closes the log.
func startLog(flagPath string, cfg config.Config) (func(), error) {
	path := flagPath
	if path == "" {
		path = cfg.LogFile
	}
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(nil)
		_ = f.Close()
	}, nil
}

func runMap(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tactguide", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		maxFiles    int
		cachePath   string
		maxFileSize int
		showVersion bool
		raw         bool
		symbol      string
		fileFilter  string
		noTests     bool
		c           common
	)

	fs.IntVar(&maxFiles, "n", 0, "maximum number of files to include")
	fs.IntVar(&maxFiles, "max-files", 0, "maximum number of files to include")
	fs.StringVar(&cachePath, "cache", "", "cache file path")
	fs.IntVar(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (default from config)")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")
	fs.BoolVar(&raw, "raw", false, "print the TOON map without the header")
	fs.StringVar(&symbol, "symbol", "", "only show symbols whose name contains this, with their callers and callees")
	fs.StringVar(&fileFilter, "file", "", "only show files whose path contains this")
	fs.BoolVar(&noTests, "no-tests", false, "leave out test contracts")
	c.register(fs)

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "tactguide %s\n", version)
		return nil
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	cfg, _, err := loadConfig(c.config, root)
	if err != nil {
		return err
	}
	if maxFileSize > 0 {
		cfg.MaxFileSize = maxFileSize
	}
	stopLog, err := startLog(c.log, cfg)
	if err != nil {
		return err
	}
	defer stopLog()

	files, err := discover.Files(root, cfg.Exclude)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no parseable files found")
	}

	// The cache holds the full map; narrowed output is never cached.
	filtered := maxFiles > 0 || symbol != "" || fileFilter != "" || noTests
	useCache := cachePath != "" && !filtered

	if useCache && cacheIsFresh(cachePath, root, files) {
		data, err := os.ReadFile(cachePath)
		if err == nil {
			if !raw {
				_, _ = io.WriteString(stdout, agentHeader)
			}
			_, _ = stdout.Write(data)
			return nil
		}
	}

	w, err := workspace.Load(context.Background(), workspace.Options{
		Root:        root,
		Stdlib:      cfg.Stdlib,
		Exclude:     cfg.Exclude,
		SkipTests:   noTests,
		MaxFileSize: cfg.MaxFileSize,
		CacheSize:   cfg.CacheSize,
		Warn:        stderr,
	})
	if err != nil {
		return err
	}
	if len(w.Files()) == 0 {
		return fmt.Errorf("no parseable files found (all exceeded size limit)")
	}

	rm, err := w.Map(symbol != "")
	if err != nil {
		return err
	}
	if fileFilter != "" {
		rm = ranking.FilterByFile(rm, fileFilter)
	}
	if symbol != "" {
		rm = ranking.FilterBySymbol(rm, symbol, true)
	}
	if maxFiles > 0 {
		rm = ranking.SelectFiles(rm, maxFiles)
	}

	output := toon.Encode(rm) + "\n"

	if useCache {
		_ = os.WriteFile(cachePath, []byte(output), 0o644)
	}

	if !raw {
		_, _ = io.WriteString(stdout, agentHeader)
	}
	_, _ = io.WriteString(stdout, output)
	return nil
}

func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-n": true, "--n": true,
	"-max-files": true, "--max-files": true,
	"-cache": true, "--cache": true,
	"-max-file-size": true, "--max-file-size": true,
	"-symbol": true, "--symbol": true,
	"-file": true, "--file": true,
	"-config": true, "--config": true,
	"-log": true, "--log": true,
	"-stdlib": true, "--stdlib": true,
	"-exclude": true, "--exclude": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			// Keep the terminator so positionals that look like flags
			// stay positional.
			return append(append(flags, "--"), append(positional, args[i+1:]...)...)
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
