package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// cmdRestore restores an overlayfs-backed config file to its original
// state: the pristine copy lives under /rom and the modified copy under
// /overlay; removing the overlay copy and remounting exposes the
// original again.
//
// Exit codes: 0 restored, 1 original missing, 2 nothing to restore,
// 3 unlink failed, 4 remount failed, 5 bad path.
func cmdRestore(path string, stderr io.Writer) int {
	if path == "" || !strings.HasPrefix(path, "/") {
		fmt.Fprintf(stderr, "Error: Config file path must be absolute (start with '/'). Got: %q\n", path)
		return 5
	}

	romPath := "/rom" + path
	overlayPath := "/overlay" + path

	if _, err := os.Stat(romPath); err != nil {
		fmt.Fprintf(stderr, "Error: Original file %q not found\n", romPath)
		return 1
	}
	if _, err := os.Stat(overlayPath); err != nil {
		fmt.Fprintln(stderr, "Error: The file is original, nothing to restore")
		return 2
	}

	if err := os.Remove(overlayPath); err != nil {
		fmt.Fprintf(stderr, "Error: Failed to remove overlay file %q: %v\n", overlayPath, err)
		return 3
	}

	if err := exec.Command("mount", "-o", "remount", "/").Run(); err != nil {
		fmt.Fprintf(stderr, "Error: Failed to remount overlay filesystem: %v\n", err)
		return 4
	}

	// Silent success.
	return 0
}
