package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lattice-substrate/jct/jcterr"
	"github.com/lattice-substrate/jct/jctdot"
	"github.com/lattice-substrate/jct/jctfile"
	"github.com/lattice-substrate/jct/jctnum"
	"github.com/lattice-substrate/jct/jctpath"
	"github.com/lattice-substrate/jct/jctser"
	"github.com/lattice-substrate/jct/jctval"
)

// run dispatches a resolved command line. args[0] is the target,
// args[1] the command. The return value is the process exit code.
func run(cfg *config, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	target := args[0]
	command := args[1]
	rest := args[2:]

	path, code := resolveForCommand(cfg, target, command, stderr)
	if code != 0 {
		return code
	}

	switch command {
	case "get":
		if len(rest) < 1 {
			fmt.Fprintln(stderr, "Error: 'get' requires a key.")
			return 2
		}
		return cmdGet(path, rest[0], stdout, stderr)
	case "set":
		if len(rest) < 2 {
			fmt.Fprintln(stderr, "Error: 'set' requires a key and a value.")
			return 2
		}
		return cmdSet(path, rest[0], rest[1], stderr)
	case "create":
		return cmdCreate(path, stderr)
	case "print":
		return cmdPrint(path, stdout, stderr)
	case "import":
		if len(rest) < 1 {
			fmt.Fprintln(stderr, "Error: 'import' requires a source file.")
			return 2
		}
		return cmdImport(path, rest[0], stderr)
	case "path":
		if len(rest) < 1 {
			fmt.Fprintln(stderr, "Error: 'path' requires an expression.")
			return 2
		}
		return cmdPath(cfg, path, rest[0], stdout, stderr)
	case "restore":
		return cmdRestore(path, stderr)
	default:
		fmt.Fprintf(stderr, "Error: Unknown command %q.\n", command)
		return 2
	}
}

// resolveForCommand applies the per-command target resolution policy.
func resolveForCommand(cfg *config, target, command string, stderr io.Writer) (string, int) {
	switch command {
	case "get", "print", "restore", "import", "path":
		// These require an existing readable file.
		return resolveTarget(target, cfg.traceResolve, stderr)
	case "set":
		// A short name must resolve to an existing file; an explicit
		// path may create one.
		if isExplicitPath(target) {
			return target, 0
		}
		path, code := resolveTarget(target, cfg.traceResolve, stderr)
		if code == 2 {
			fmt.Fprintf(stderr, "jct: to create a new file, supply an explicit path (e.g., ./%s.json)\n", target)
		}
		return path, code
	case "create":
		if !isExplicitPath(target) {
			fmt.Fprintf(stderr, "jct: 'create' requires an explicit path; to create a new file, supply an explicit path (e.g., ./%s.json)\n", target)
			return "", 2
		}
		return target, 0
	default:
		return target, 0
	}
}

func cmdGet(path, key string, stdout, stderr io.Writer) int {
	doc, err := jctfile.LoadLenient(path, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	value := jctdot.GetNested(doc, key)
	if value == nil {
		fmt.Fprintf(stderr, "Error: Key %q not found in config file.\n", key)
		return 1
	}
	return printItem(value, stdout, stderr)
}

func cmdSet(path, key, literal string, stderr io.Writer) int {
	doc, err := jctfile.LoadLenient(path, stderr)
	if err != nil {
		if jcterr.ClassOf(err) != jcterr.NotFound {
			return fail(stderr, err)
		}
		// An explicit path may not exist yet; start fresh.
		doc = jctval.Object()
	}
	if err := jctdot.SetNested(doc, key, literal); err != nil {
		return fail(stderr, err)
	}
	if err := jctfile.Save(path, doc); err != nil {
		return fail(stderr, err)
	}
	// Silent success.
	return 0
}

func cmdCreate(path string, stderr io.Writer) int {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stderr, "Error: Config file %q already exists.\n", path)
		return 1
	}
	if err := jctfile.Save(path, jctval.Object()); err != nil {
		return fail(stderr, err)
	}
	return 0
}

func cmdPrint(path string, stdout, stderr io.Writer) int {
	doc, err := jctfile.LoadLenient(path, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	out, err := jctser.Document(doc)
	if err != nil {
		return fail(stderr, err)
	}
	stdout.Write(out)
	return 0
}

func cmdImport(destPath, srcPath string, stderr io.Writer) int {
	dest, err := jctfile.Load(destPath, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	src, err := jctfile.Load(srcPath, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	merged := jctval.MergeInto(dest, src)
	if err := jctfile.Save(destPath, merged); err != nil {
		return fail(stderr, err)
	}
	return 0
}

func cmdPath(cfg *config, path, expr string, stdout, stderr io.Writer) int {
	mode, ok := jctpath.ParseMode(cfg.mode)
	if !ok {
		fmt.Fprintf(stderr, "Error: invalid mode %q (want values, paths, or pairs).\n", cfg.mode)
		return 2
	}
	doc, err := jctfile.LoadLenient(path, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	results, err := jctpath.Evaluate(doc, expr, jctpath.Options{
		Mode:   mode,
		Limit:  cfg.limit,
		Strict: cfg.strict,
	})
	if err != nil {
		return fail(stderr, err)
	}
	assembled := results.Assemble(cfg.unwrapSingle)

	var out []byte
	if cfg.pretty {
		out, err = jctser.Document(assembled)
	} else {
		out, err = jctser.CompactDocument(assembled)
	}
	if err != nil {
		return fail(stderr, err)
	}
	stdout.Write(out)
	return 0
}

// printItem writes a get result: scalars print bare, containers print
// in canonical pretty form.
func printItem(v *jctval.Value, stdout, stderr io.Writer) int {
	switch v.Kind {
	case jctval.KindNull:
		fmt.Fprintln(stdout, "null")
	case jctval.KindBool:
		if v.Bool {
			fmt.Fprintln(stdout, "true")
		} else {
			fmt.Fprintln(stdout, "false")
		}
	case jctval.KindNumber:
		s, err := jctnum.FormatNumber(v.Num)
		if err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintln(stdout, s)
	case jctval.KindString:
		fmt.Fprintln(stdout, v.Str)
	default:
		doc, err := jctser.Document(v)
		if err != nil {
			return fail(stderr, err)
		}
		stdout.Write(doc)
	}
	return 0
}

// fail reports err on stderr and maps it to an exit code through the
// failure taxonomy.
func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return jcterr.ClassOf(err).ExitCode()
}
