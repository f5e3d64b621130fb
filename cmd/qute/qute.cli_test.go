package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/go-qute"
)

const (
	testTemplateContent = "Hello {name}!"
	testDataJSON        = `{"name": "Alice"}`
	testDataYAML        = "name: Bob\n"
	testInvalidContent  = "{#if name}unclosed"
)

// setupTestData creates template and data files in a temp directory.
func setupTestData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"template.txt":        testTemplateContent,
		"data.json":           testDataJSON,
		"data.yaml":           testDataYAML,
		"invalid.txt":         testInvalidContent,
		"tags/hello.html":     "Hi {it}",
		"config.yaml":         "render_timeout: 2s\n",
		"config-invalid.yaml": "render_timeout: [",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), FilePermissions))
	}
	return dir
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_Usage(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		res := runCLI(t, "", "--help")
		assert.Equal(t, ExitCodeSuccess, res.code)
		assert.Contains(t, res.stdout, CLIName)
		assert.Contains(t, res.stdout, CmdNameRender)
	})

	t.Run("no command", func(t *testing.T) {
		res := runCLI(t, "")
		assert.Equal(t, ExitCodeUsageError, res.code)
		assert.Contains(t, res.stderr, ErrMsgUsage)
	})

	t.Run("unknown command", func(t *testing.T) {
		res := runCLI(t, "", "unknown")
		assert.Equal(t, ExitCodeUsageError, res.code)
	})

	t.Run("missing config file", func(t *testing.T) {
		res := runCLI(t, "", CmdNameValidate, "-c", filepath.Join(t.TempDir(), "none.yaml"))
		assert.Equal(t, ExitCodeUsageError, res.code)
	})
}

func TestRun_Version(t *testing.T) {
	res := runCLI(t, "", CmdNameVersion)
	assert.Equal(t, ExitCodeSuccess, res.code)
	assert.Contains(t, res.stdout, "qute version "+qute.Version)

	res = runCLI(t, "", CmdNameVersion, "--format", OutputFormatJSON)
	require.Equal(t, ExitCodeSuccess, res.code)
	var out versionOutput
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, qute.Version, out.Version)
	assert.NotEmpty(t, out.GoVersion)
}

func TestRun_Render(t *testing.T) {
	dir := setupTestData(t)
	tmplPath := filepath.Join(dir, "template.txt")

	t.Run("stdin with inline data", func(t *testing.T) {
		res := runCLI(t, testTemplateContent, CmdNameRender, "-d", testDataJSON)
		assert.Equal(t, ExitCodeSuccess, res.code, res.stderr)
		assert.Equal(t, "Hello Alice!", res.stdout)
	})

	t.Run("file with json data file", func(t *testing.T) {
		res := runCLI(t, "", CmdNameRender, tmplPath, "-f", filepath.Join(dir, "data.json"))
		assert.Equal(t, ExitCodeSuccess, res.code, res.stderr)
		assert.Equal(t, "Hello Alice!", res.stdout)
	})

	t.Run("yaml data file", func(t *testing.T) {
		res := runCLI(t, "", CmdNameRender, tmplPath, "--data-file", filepath.Join(dir, "data.yaml"))
		assert.Equal(t, ExitCodeSuccess, res.code, res.stderr)
		assert.Equal(t, "Hello Bob!", res.stdout)
	})

	t.Run("output file", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "out.txt")
		res := runCLI(t, "", CmdNameRender, tmplPath, "-d", testDataJSON, "-o", outPath)
		require.Equal(t, ExitCodeSuccess, res.code, res.stderr)
		assert.Empty(t, res.stdout)

		written, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, "Hello Alice!", string(written))
	})

	t.Run("user tag from template dir", func(t *testing.T) {
		res := runCLI(t, "{#hello name /}", CmdNameRender,
			"--template-dir", dir, "--tag", "hello=tags/hello", "-d", testDataJSON)
		assert.Equal(t, ExitCodeSuccess, res.code, res.stderr)
		assert.Equal(t, "Hi Alice", res.stdout)
	})

	t.Run("config file", func(t *testing.T) {
		res := runCLI(t, "ok", CmdNameRender, "-c", filepath.Join(dir, "config.yaml"))
		assert.Equal(t, ExitCodeSuccess, res.code, res.stderr)
		assert.Equal(t, "ok", res.stdout)
	})

	failures := []struct {
		name  string
		stdin string
		args  []string
		code  int
		msg   string
	}{
		{"data conflict", "x", []string{"-d", "{}", "-f", filepath.Join(dir, "data.json")}, ExitCodeUsageError, ErrMsgDataConflict},
		{"invalid inline data", "x", []string{"-d", "{nope"}, ExitCodeInputError, ErrMsgInvalidData},
		{"missing data file", "x", []string{"-f", filepath.Join(dir, "none.json")}, ExitCodeInputError, ErrMsgReadFileFailed},
		{"missing template", "", []string{filepath.Join(dir, "none.txt")}, ExitCodeInputError, ErrMsgReadFileFailed},
		{"parse error", "", []string{filepath.Join(dir, "invalid.txt")}, ExitCodeValidationError, ErrMsgParseTemplateFailed},
		{"render error", "{#each x}{it}{/each}", []string{"-d", `{"x": 1}`}, ExitCodeError, ErrMsgRenderFailed},
		{"invalid tag", "x", []string{"--tag", "broken"}, ExitCodeUsageError, ErrMsgInvalidTag},
		{"invalid config", "x", []string{"-c", filepath.Join(dir, "config-invalid.yaml")}, ExitCodeInputError, ErrMsgConfigFailed},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.stdin, append([]string{CmdNameRender}, tt.args...)...)
			assert.Equal(t, tt.code, res.code)
			assert.Contains(t, res.stderr, tt.msg)
			assert.Empty(t, res.stdout)
		})
	}

	t.Run("invalid log level", func(t *testing.T) {
		res := runCLI(t, "x", "--log-level", "loud", CmdNameRender)
		assert.Equal(t, ExitCodeInputError, res.code)
		assert.Contains(t, res.stderr, ErrMsgConfigFailed)
	})
}

func TestRun_Validate(t *testing.T) {
	dir := setupTestData(t)

	res := runCLI(t, "", CmdNameValidate, filepath.Join(dir, "template.txt"))
	assert.Equal(t, ExitCodeSuccess, res.code, res.stderr)
	assert.Equal(t, ValidationTextSuccess+"\n", res.stdout)

	res = runCLI(t, "{a}{b.c}{a}", CmdNameValidate, "-e")
	assert.Equal(t, ExitCodeSuccess, res.code, res.stderr)
	assert.Equal(t, "OK\na\nb.c\n", res.stdout)

	res = runCLI(t, "", CmdNameValidate, filepath.Join(dir, "invalid.txt"))
	assert.Equal(t, ExitCodeValidationError, res.code)
	assert.Contains(t, res.stderr, ErrMsgParseTemplateFailed)
}

func TestLoadData(t *testing.T) {
	data, err := loadData("", "")
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NotNil(t, data)

	data, err = loadData(`{"n": [1, 2]}`, "")
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0}, data["n"])

	_, err = loadData("{}", "x.json")
	assert.ErrorIs(t, err, errDataConflict)
}
