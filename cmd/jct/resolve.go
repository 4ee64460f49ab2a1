package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// isExplicitPath reports whether target bypasses short-name resolution:
// it contains a path separator or ends with .json.
func isExplicitPath(target string) bool {
	return strings.ContainsAny(target, `/\`) || strings.HasSuffix(target, ".json")
}

// resolveTarget resolves a config target to a concrete path. Explicit
// paths pass through untouched. Short names try ./<name>, ./<name>.json,
// and /etc/<name>.json in order; the first regular readable file wins.
//
// Returns the path and exit code 0, or "" with exit code 2 (not found)
// or 13 (a matching regular file exists but is unreadable). Diagnostics
// go to stderr; trace enables candidate-by-candidate reporting.
func resolveTarget(target string, trace bool, stderr io.Writer) (string, int) {
	if isExplicitPath(target) {
		if trace {
			fmt.Fprintf(stderr, "[trace] explicit path used: %s\n", target)
		}
		return target, 0
	}

	candidates := []string{
		"./" + target,
		"./" + target + ".json",
		"/etc/" + target + ".json",
	}

	for _, c := range candidates {
		if trace {
			fmt.Fprintf(stderr, "[trace] checking %s... ", c)
		}
		info, err := os.Stat(c)
		if err != nil {
			if trace {
				fmt.Fprintf(stderr, "not found\n")
			}
			continue
		}
		if info.IsDir() {
			if trace {
				fmt.Fprintf(stderr, "is a directory, skip\n")
			}
			continue
		}
		if !info.Mode().IsRegular() {
			if trace {
				fmt.Fprintf(stderr, "not a regular file, skip\n")
			}
			continue
		}
		if !isReadable(c) {
			if trace {
				fmt.Fprintf(stderr, "exists but not readable -> permission denied\n")
			}
			// A matching but unreadable file does not fall through to
			// later candidates.
			fmt.Fprintf(stderr, "jct: permission denied: %s\n", c)
			return "", 13
		}
		if trace {
			fmt.Fprintf(stderr, "selected\n[trace] resolved to: %s\n", c)
		}
		return c, 0
	}

	if trace {
		fmt.Fprintf(stderr, "[trace] no matching file found for '%s'\n", target)
	}
	fmt.Fprintf(stderr, "jct: no JSON file found for '%s'; tried: %s, %s, %s\n",
		target, candidates[0], candidates[1], candidates[2])
	return "", 2
}

func isReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
