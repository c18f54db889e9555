package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/pseudomuto/provkit/pkg/consts"
	"github.com/pseudomuto/provkit/pkg/provider"
	"github.com/pseudomuto/provkit/pkg/template"
	"github.com/stretchr/testify/require"
)

// RequireValidProject asserts that a project is correctly initialized
func RequireValidProject(t *testing.T, fixture *ProjectFixture) {
	t.Helper()

	require.FileExists(t, fixture.ConfigPath(), "%s should exist", consts.ConfigFile)
	RequireTemplate(t, fixture.TemplatePath())
}

// RequireTemplate asserts that a template loads and returns it
func RequireTemplate(t *testing.T, path string) *template.Template {
	t.Helper()

	tmpl, err := provider.Load(path)
	require.NoError(t, err, "Template should load: %s", path)
	return tmpl
}

// RequireTemplateFiles asserts the Src keys of a template's entries, in order
func RequireTemplateFiles(t *testing.T, path string, srcs ...string) *template.Template {
	t.Helper()

	tmpl := RequireTemplate(t, path)

	var actual []string
	for _, f := range tmpl.Files {
		actual = append(actual, f.Src)
	}

	require.Equal(t, srcs, actual, "Template should contain files in order")
	return tmpl
}

// RequireStream asserts the content stored under key in a template
func RequireStream(t *testing.T, tmpl *template.Template, key, expected string) {
	t.Helper()

	rc, err := tmpl.Connector.Open("", key)
	require.NoError(t, err, "Stream should exist: %s", key)
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, expected, string(data), "Stream content should match: %s", key)
}

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		contentStr := string(content)
		for _, check := range checks {
			check(contentStr)
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireNoFile asserts that a file does not exist
func RequireNoFile(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "File should not exist: %s", path)
}

// RequireError asserts that an error occurred and optionally checks the message
func RequireError(t *testing.T, err error, msgContains ...string) {
	t.Helper()

	require.Error(t, err, "Expected an error")

	for _, msg := range msgContains {
		require.Contains(t, err.Error(), msg, "Error message should contain: %s", msg)
	}
}
