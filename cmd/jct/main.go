// Command jct reads, mutates, merges, diffs, and queries JSON
// configuration documents on disk.
//
//	jct [--trace-resolve] <target> <command> [args...]
//
// Commands:
//
//	get <dot.path>           Print the value at a dot-notation path
//	set <dot.path> <value>   Set a value (auto-creating intermediates) and save
//	create                   Create a new empty config file (explicit path only)
//	print                    Print the whole document in canonical form
//	import <source.json>     Recursively merge source into the target and save
//	path <expr>              Evaluate a JSONPath expression
//	restore                  Restore an overlayfs-backed file to its original state
//
// When <target> contains no path separator and does not end in .json it
// is a short name, resolved by trying ./<name>, ./<name>.json, and
// /etc/<name>.json in order.
//
// Exit codes: 0 success, 1 generic failure, 2 not found or bad usage,
// 13 permission denied. restore additionally uses 3 (unlink failed),
// 4 (remount failed), and 5 (bad restore path).
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// config carries the parsed command-line flags.
type config struct {
	traceResolve bool

	// path command flags
	mode         string
	limit        int
	strict       bool
	pretty       bool
	unwrapSingle bool
}

// registerFlags binds the config fields to a flag set.
func (c *config) registerFlags(fl *pflag.FlagSet) {
	fl.BoolVar(&c.traceResolve, "trace-resolve", false, "trace short-name resolution steps")
	fl.StringVar(&c.mode, "mode", "values", "path output mode: values, paths, or pairs")
	fl.IntVar(&c.limit, "limit", 0, "maximum number of path results (0 means no limit)")
	fl.BoolVar(&c.strict, "strict", false, "fail on JSONPath errors instead of yielding empty results")
	fl.BoolVar(&c.pretty, "pretty", false, "pretty-print path results")
	fl.BoolVar(&c.unwrapSingle, "unwrap-single", false, "emit a single values-mode result unwrapped")
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute wires the cobra front end around run and converts the outcome
// to a process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := &config{}
	code := 0

	root := &cobra.Command{
		Use:   "jct [--trace-resolve] <target> <command> [args...]",
		Short: "Read, mutate, merge, and query JSON configuration files",
		Long: `jct manipulates JSON configuration documents on disk: nested reads and
writes with dot notation, recursive merge, canonical pretty printing,
JSONPath queries, and atomic saves.

Commands:
  <target> get <key>              Get a value using dot notation
  <target> set <key> <value>      Set a value (true/false/null/number/string)
  <target> create                 Create a new empty config file
  <target> print                  Print the whole document in canonical form
  <target> import <source.json>   Recursively merge source into target
  <target> path <expr>            Evaluate a JSONPath expression
  <target> restore                Restore an overlayfs-backed file (OverlayFS)

Short-name resolution (when <target> has no '/' and no '.json'):
  Tries ./<name>, ./<name>.json, /etc/<name>.json in order.
  If none is found: exit 2 with the list of tried paths. If a match is
  unreadable: exit 13. 'create' and creating via 'set' require an
  explicit path.

Examples:
  jct prudynt get server.port
  jct ./prudynt.json set app.name 'My App'
  jct config.json print
  jct store.json path '$.store.book[?(@.price<10)].title'
  jct /etc/config.json restore`,
		Args:          cobra.MinimumNArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			code = run(cfg, args, stdin, stdout, stderr)
			return nil
		},
	}

	cfg.registerFlags(root.Flags())

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return code
}
