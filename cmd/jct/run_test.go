package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jct runs the CLI front end against a fresh stdio set and returns the
// exit code with captured output.
func jct(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = execute(args, strings.NewReader(""), &out, &errb)
	return code, out.String(), errb.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestGetScalars(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{"n":1.5,"i":2,"s":"text","b":true,"z":null}`)

	tcs := map[string]string{
		"n": "1.5\n",
		"i": "2\n",
		"s": "text\n",
		"b": "true\n",
		"z": "null\n",
	}
	for key, want := range tcs {
		code, stdout, stderr := jct(t, cfg, "get", key)
		assert.Equal(t, 0, code, "stderr: %s", stderr)
		assert.Equal(t, want, stdout, "key %s", key)
	}
}

func TestGetContainerPrintsPretty(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{"a":{"b":3}}`)

	code, stdout, _ := jct(t, cfg, "get", "a")
	assert.Equal(t, 0, code)
	assert.Equal(t, "{\n  \"b\": 3\n}\n", stdout)
}

func TestGetMissingKey(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{"a":1}`)

	code, _, stderr := jct(t, cfg, "get", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not found")
}

func TestSetCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")

	// Explicit path may create a new file.
	code, stdout, stderr := jct(t, cfg, "set", "server.port", "8080")
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Empty(t, stdout, "set is silent on success")

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"server\": {\n    \"port\": 8080\n  }\n}\n", string(data))

	// Literal inference covers booleans and strings.
	code, _, _ = jct(t, cfg, "set", "server.tls", "true")
	require.Equal(t, 0, code)
	code, _, _ = jct(t, cfg, "set", "name", "My App")
	require.Equal(t, 0, code)

	code, stdout, _ = jct(t, cfg, "get", "server.tls")
	require.Equal(t, 0, code)
	assert.Equal(t, "true\n", stdout)
	code, stdout, _ = jct(t, cfg, "get", "name")
	require.Equal(t, 0, code)
	assert.Equal(t, "My App\n", stdout)
}

func TestSetStructureMismatchFails(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{"a":1}`)

	code, _, stderr := jct(t, cfg, "set", "a.b.c", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error")
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "new.json")

	code, _, _ := jct(t, cfg, "create")
	require.Equal(t, 0, code)
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	// Refuses to overwrite.
	code, _, stderr := jct(t, cfg, "create")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already exists")
}

func TestCreateRefusesShortName(t *testing.T) {
	code, _, stderr := jct(t, "shortname", "create")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "explicit path")
}

func TestPrintCanonicalizes(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{"b":1,"a":{"z":null,"y":[1,2]}}`)

	code, stdout, _ := jct(t, cfg, "print")
	require.Equal(t, 0, code)
	want := "{\n  \"a\": {\n    \"y\": [\n      1,\n      2\n    ],\n    \"z\": null\n  },\n  \"b\": 1\n}\n"
	assert.Equal(t, want, stdout)
}

func TestImportMergesRecursively(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dest.json")
	src := filepath.Join(dir, "src.json")
	writeFile(t, dest, `{"a":{"x":1},"b":2}`)
	writeFile(t, src, `{"a":{"y":9},"c":3}`)

	code, _, stderr := jct(t, dest, "import", src)
	require.Equal(t, 0, code, "stderr: %s", stderr)

	code, stdout, _ := jct(t, dest, "print")
	require.Equal(t, 0, code)
	want := "{\n  \"a\": {\n    \"x\": 1,\n    \"y\": 9\n  },\n  \"b\": 2,\n  \"c\": 3\n}\n"
	assert.Equal(t, want, stdout)
}

func TestImportMissingSource(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dest.json")
	writeFile(t, dest, `{}`)

	code, _, _ := jct(t, dest, "import", filepath.Join(dir, "nope.json"))
	assert.Equal(t, 2, code)
}

func TestPathCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "store.json")
	writeFile(t, cfg, `{"store":{"book":[
		{"title":"A","price":5},
		{"title":"B","price":15}
	]}}`)

	code, stdout, stderr := jct(t, cfg, "path", "$.store.book[*].title")
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Equal(t, "[\"A\",\"B\"]\n", stdout)

	code, stdout, _ = jct(t, cfg, "path", "$.store.book[?(@.price<10)].title")
	require.Equal(t, 0, code)
	assert.Equal(t, "[\"A\"]\n", stdout)

	code, stdout, _ = jct(t, "--mode", "paths", cfg, "path", "$.store.book[*]")
	require.Equal(t, 0, code)
	assert.Equal(t, "[\"$.store.book[0]\",\"$.store.book[1]\"]\n", stdout)

	code, stdout, _ = jct(t, cfg, "path", "$.store.book[0].title", "--unwrap-single")
	require.Equal(t, 0, code)
	assert.Equal(t, "\"A\"\n", stdout)

	code, stdout, _ = jct(t, cfg, "path", "$.store.book[*].title", "--limit", "1")
	require.Equal(t, 0, code)
	assert.Equal(t, "[\"A\"]\n", stdout)

	code, stdout, _ = jct(t, cfg, "path", "$.store.book[0].price", "--pretty")
	require.Equal(t, 0, code)
	assert.Equal(t, "[\n  5\n]\n", stdout)
}

func TestPathStrictVersusLenient(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{"a":1}`)

	code, stdout, _ := jct(t, cfg, "path", "$[")
	assert.Equal(t, 0, code, "lenient mode yields empty results")
	assert.Equal(t, "[]\n", stdout)

	code, _, stderr := jct(t, cfg, "path", "$[", "--strict")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error")
}

func TestPathInvalidMode(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{}`)

	code, _, stderr := jct(t, cfg, "path", "$.a", "--mode", "bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid mode")
}

func TestShortNameResolution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.json"), `{"k":"v"}`)
	chdir(t, dir)

	code, stdout, _ := jct(t, "app", "get", "k")
	require.Equal(t, 0, code)
	assert.Equal(t, "v\n", stdout)
}

func TestShortNamePrefersExactFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app"), `{"which":"exact"}`)
	writeFile(t, filepath.Join(dir, "app.json"), `{"which":"json"}`)
	chdir(t, dir)

	code, stdout, _ := jct(t, "app", "get", "which")
	require.Equal(t, 0, code)
	assert.Equal(t, "exact\n", stdout)
}

func TestShortNameNotFoundListsCandidates(t *testing.T) {
	chdir(t, t.TempDir())

	code, _, stderr := jct(t, "nosuch", "get", "k")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "./nosuch")
	assert.Contains(t, stderr, "./nosuch.json")
	assert.Contains(t, stderr, "/etc/nosuch.json")
}

func TestShortNameSetSuggestsExplicitPath(t *testing.T) {
	chdir(t, t.TempDir())

	code, _, stderr := jct(t, "newcfg", "set", "a", "1")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "./newcfg.json")
}

func TestTraceResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.json"), `{"k":1}`)
	chdir(t, dir)

	code, _, stderr := jct(t, "--trace-resolve", "app", "get", "k")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "[trace] checking ./app...")
	assert.Contains(t, stderr, "selected")
	assert.Contains(t, stderr, "[trace] resolved to: ./app.json")
}

func TestPermissionDenied(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "locked.json"), `{}`)
	require.NoError(t, os.Chmod(filepath.Join(dir, "locked.json"), 0o000))
	chdir(t, dir)

	code, _, stderr := jct(t, "locked", "get", "k")
	assert.Equal(t, 13, code)
	assert.Contains(t, stderr, "permission denied")
}

func TestUnknownCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{}`)

	code, _, stderr := jct(t, cfg, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Unknown command")
}

func TestMissingArguments(t *testing.T) {
	code, _, _ := jct(t)
	assert.Equal(t, 2, code)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "app.json")
	writeFile(t, cfg, `{}`)

	code, _, stderr := jct(t, cfg, "get")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "requires a key")

	code, _, stderr = jct(t, cfg, "set", "only.key")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "requires a key and a value")
}

func TestMalformedFileRecoversWithDiagnostic(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "bad.json")
	writeFile(t, cfg, `{"broken`)

	code, stdout, stderr := jct(t, cfg, "print")
	assert.Equal(t, 0, code)
	assert.Equal(t, "{}\n", stdout)
	assert.Contains(t, stderr, "Warning")
}
