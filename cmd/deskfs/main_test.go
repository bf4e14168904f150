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

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	rootCmd := buildRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "deskfs version dev\n", out)
}

func TestExecCommand(t *testing.T) {
	out, err := runCLI(t, "", "exec", "ls", "/desktop")
	require.NoError(t, err)
	assert.Equal(t, "about.md\nresume.pdf\nFiles.app\nTerminal.app\nfolder1/\n", out)

	out, err = runCLI(t, "", "exec", "--cwd", "/documents", "ls")
	require.NoError(t, err)
	assert.Equal(t, "project-docs/\n", out)

	out, err = runCLI(t, "", "exec", "cat", "/documents")
	assert.ErrorIs(t, err, errCommandFailed)
	assert.Equal(t, "cat: /documents: Is a directory\n", out)

	out, err = runCLI(t, "", "exec", "frobnicate")
	assert.ErrorIs(t, err, errCommandFailed)
	assert.Equal(t, "command not found: frobnicate\n", out)
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/desktop/folder1", "navigate\tFilesApp\t/desktop/folder1\tfolder1\n"},
		{"/desktop/Files.app", "launch\tFilesApp\t/\tFiles\n"},
		{"/desktop/about.md", "open\tNotepad\t/desktop/about.md\tabout.md\n"},
		{"/desktop/resume.pdf", "none\t-\t/desktop/resume.pdf\tresume.pdf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			out, err := runCLI(t, "", "open", tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := runCLI(t, "", "open", "/nope")
	assert.Error(t, err)
}

func TestShellCommandReadsStdin(t *testing.T) {
	out, err := runCLI(t, "mkdir /notes\ncd /notes\npwd\nexit\npwd\n", "shell")
	require.NoError(t, err)
	assert.Equal(t, "/notes\n", out)
}

func TestSeedRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			out, err := runCLI(t, "", "seed", "--format", format)
			require.NoError(t, err)

			path := filepath.Join(dir, "seed."+format)
			require.NoError(t, os.WriteFile(path, []byte(out), 0644))

			listing, err := runCLI(t, "", "--seed", path, "exec", "ls", "/documents/project-docs")
			require.NoError(t, err)
			assert.Equal(t, "project1.md\nproject2.md\n", listing)
		})
	}

	_, err := runCLI(t, "", "seed", "--format", "xml")
	assert.Error(t, err)
}

func TestSeedFromConfigFile(t *testing.T) {
	dir := t.TempDir()

	seedPath := filepath.Join(dir, "tree.yaml")
	seed := "type: directory\nname: /\nchildren:\n  - type: file\n    name: hello.txt\n    content: hi\n"
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0644))

	configPath := filepath.Join(dir, "deskfs.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[seed]\npath = \""+seedPath+"\"\n"), 0644))

	out, err := runCLI(t, "", "--config", configPath, "exec", "cat", "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)

	_, err = runCLI(t, "", "--seed", filepath.Join(dir, "missing.json"), "exec", "ls")
	assert.Error(t, err)
}

func TestMountRequiresMountPoint(t *testing.T) {
	t.Setenv("DESKFS_MOUNT_POINT", "")
	_, err := runCLI(t, "", "mount")
	assert.EqualError(t, err, "mount point is required")
}
