// Command poolctl is a scripted driver for the pool allocator library. It
// is explicitly not part of the core engine (spec §1: "command-line ... not
// part of the core specification") but is the ambient entry point a reader
// of this repository would expect next to a library package.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	semver "github.com/Masterminds/semver/v3"

	"github.com/orizon-lang/orizon/internal/config"
	"github.com/orizon-lang/orizon/internal/pool"
)

func main() {
	var (
		size           = flag.Uint64("size", 1<<20, "pool size in bytes")
		policyName     = flag.String("policy", "first-fit", "placement policy: first-fit or best-fit")
		scriptPath     = flag.String("script", "", "command script file (default: stdin)")
		configPath     = flag.String("config", "", "JSON config file with default pool size/policy")
		watchConfig    = flag.Bool("watch", false, "watch -config for changes and report them (does not affect the already-open pool)")
		requireVersion = flag.String("require-version", "", "semver constraint the library's FormatVersion must satisfy, e.g. \">=1.0.0, <2.0.0\"")
		jsonOutput     = flag.Bool("json", false, "emit command output as JSON")
		showVersion    = flag.Bool("version", false, "print the library format version and exit")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Drives a single pool allocator through a command script.\n\n")
		fmt.Fprintf(os.Stderr, "COMMANDS (one per line, read from -script or stdin):\n")
		fmt.Fprintf(os.Stderr, "  alloc <size>   allocate <size> bytes; prints its index\n")
		fmt.Fprintf(os.Stderr, "  free <index>   free the allocation returned by the index'th alloc\n")
		fmt.Fprintf(os.Stderr, "  inspect        print the region list\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Println(pool.FormatVersion)
		return
	}

	if *requireVersion != "" {
		if err := checkVersion(*requireVersion); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	defaults := config.Defaults{PoolSize: uintptr(*size), Policy: *policyName}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "poolctl: loading config: %v\n", err)
			os.Exit(1)
		}
		defaults = loaded

		if *watchConfig {
			w, err := config.NewWatcher(*configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "poolctl: watching config: %v\n", err)
				os.Exit(1)
			}
			defer w.Close()

			go func() {
				for d := range w.Changes() {
					fmt.Fprintf(os.Stderr, "poolctl: config reloaded (poolSize=%d policy=%s); applies to pools opened from now on\n", d.PoolSize, d.Policy)
				}
			}()
		}
	}

	registry := pool.NewRegistry(nil)
	if err := registry.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "poolctl: %v\n", err)
		os.Exit(1)
	}
	defer registry.Shutdown()

	p, err := config.OpenDefault(registry, defaults)
	if err != nil {
		fmt.Fprintf(os.Stderr, "poolctl: opening pool: %v\n", err)
		os.Exit(1)
	}

	script := os.Stdin
	if *scriptPath != "" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "poolctl: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		script = f
	}

	if err := run(p, script, os.Stdout, *jsonOutput); err != nil {
		fmt.Fprintf(os.Stderr, "poolctl: %v\n", err)
		os.Exit(1)
	}
}

func checkVersion(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid -require-version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(pool.FormatVersion)
	if err != nil {
		return fmt.Errorf("internal: FormatVersion %q is not valid semver: %w", pool.FormatVersion, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("library version %s does not satisfy constraint %q", pool.FormatVersion, constraint)
	}

	return nil
}

func run(p *pool.Pool, in io.Reader, out io.Writer, jsonOutput bool) error {
	var allocs []*pool.Allocation

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		switch fields[0] {
		case "alloc":
			if len(fields) < 2 {
				return fmt.Errorf("alloc: missing size argument")
			}

			n, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return fmt.Errorf("alloc: %w", err)
			}

			a, err := p.Allocate(uintptr(n))
			if err != nil {
				return fmt.Errorf("alloc %d: %w", n, err)
			}

			allocs = append(allocs, a)
			writeResult(out, jsonOutput, map[string]any{
				"op": "alloc", "index": len(allocs) - 1, "base": a.Base(), "size": a.Size(),
			})
		case "free":
			if len(fields) < 2 {
				return fmt.Errorf("free: missing index argument")
			}

			idx, err := strconv.Atoi(fields[1])
			if err != nil || idx < 0 || idx >= len(allocs) || allocs[idx] == nil {
				return fmt.Errorf("free: invalid allocation index %q", fields[1])
			}

			if err := p.Free(allocs[idx]); err != nil {
				return fmt.Errorf("free %d: %w", idx, err)
			}
			allocs[idx] = nil
			writeResult(out, jsonOutput, map[string]any{"op": "free", "index": idx})
		case "inspect":
			writeResult(out, jsonOutput, map[string]any{
				"op": "inspect", "regions": p.Inspect(),
				"poolSize": p.Size(), "allocated": p.Allocated(),
				"numAllocs": p.NumAllocs(), "numGaps": p.NumGaps(),
			})
		default:
			return fmt.Errorf("unknown command %q", fields[0])
		}
	}

	return scanner.Err()
}

func writeResult(out io.Writer, jsonOutput bool, result map[string]any) {
	if jsonOutput {
		result["time"] = time.Now().UTC().Format(time.RFC3339)

		enc := json.NewEncoder(out)
		_ = enc.Encode(result)

		return
	}

	fmt.Fprintf(out, "%v\n", result)
}
