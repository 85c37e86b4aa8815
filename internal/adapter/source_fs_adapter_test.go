package adapter

import (
	"os"
	"path/filepath"
	"testing"

	m "github.com/burnlist/burnlist/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("prunes ignored and hidden directories", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "models.py"), "x = 1\n")
		writeTestFile(t, filepath.Join(root, "__pycache__", "models.py"), "x = 1\n")
		writeTestFile(t, filepath.Join(root, ".git", "hook.py"), "x = 1\n")
		writeTestFile(t, filepath.Join(root, "node_modules", "lib.js"), "var a;\n")
		writeTestFile(t, filepath.Join(root, "views", "form.xml"), "<odoo/>\n")

		var visited []string
		err := adapter.Walk(m.Path(root), func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			visited = append(visited, path)
			return nil
		})
		require.NoError(t, err)

		assert.True(t, containsPath(visited, filepath.Join(root, "models.py")))
		assert.True(t, containsPath(visited, filepath.Join(root, "views", "form.xml")))
		assert.False(t, containsPath(visited, filepath.Join(root, "__pycache__", "models.py")))
		assert.False(t, containsPath(visited, filepath.Join(root, ".git", "hook.py")))
		assert.False(t, containsPath(visited, filepath.Join(root, "node_modules", "lib.js")))
	})
}

func TestLocalSourceFSAdapter_Get(t *testing.T) {
	t.Run("returns scannable files sorted with test flags", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "models", "partner.py"), "x = 1\n")
		writeTestFile(t, filepath.Join(root, "tests", "test_partner.py"), "x = 1\n")
		writeTestFile(t, filepath.Join(root, "static", "tests", "tour.js"), "x;\n")
		writeTestFile(t, filepath.Join(root, "README.md"), "# readme\n")
		writeTestFile(t, filepath.Join(root, "check_burn_list.py"), "x = 1\n")
		writeTestFile(t, filepath.Join(root, "views", "partner.xml"), "<odoo/>\n")

		sources, err := adapter.Get(m.Path(root))
		require.NoError(t, err)
		require.Len(t, sources, 4)

		assert.Equal(t, m.Path(filepath.Join(root, "models", "partner.py")), sources[0].Path)
		assert.Equal(t, m.KindPython, sources[0].Kind)
		assert.False(t, sources[0].IsTest)

		assert.Equal(t, m.Path(filepath.Join(root, "static", "tests", "tour.js")), sources[1].Path)
		assert.Equal(t, m.KindJavaScript, sources[1].Kind)
		assert.True(t, sources[1].IsTest)

		assert.Equal(t, m.Path(filepath.Join(root, "tests", "test_partner.py")), sources[2].Path)
		assert.True(t, sources[2].IsTest)

		assert.Equal(t, m.KindXML, sources[3].Kind)
	})

	t.Run("keeps test pages as evidence only", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "tests", "tour.html"), "<div/>\n")
		writeTestFile(t, filepath.Join(root, "static", "page.html"), "<div/>\n")

		sources, err := adapter.Get(m.Path(root))
		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, m.KindOther, sources[0].Kind)
		assert.True(t, sources[0].IsTest)
	})

	t.Run("single file root", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		file := filepath.Join(root, "foo.py")
		writeTestFile(t, file, "x = 1\n")

		sources, err := adapter.Get(m.Path(file))
		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, m.Path(file), sources[0].Path)
	})

	t.Run("unreadable directory is reported and the walk goes on", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission bits do not apply to root")
		}

		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		locked := filepath.Join(root, "locked")
		writeTestFile(t, filepath.Join(locked, "hidden.py"), "x = 1\n")
		writeTestFile(t, filepath.Join(root, "models.py"), "x = 1\n")
		writeTestFile(t, filepath.Join(root, "zeta", "views.xml"), "<odoo/>\n")

		require.NoError(t, os.Chmod(locked, 0o000))
		t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

		sources, err := adapter.Get(m.Path(root))
		require.NoError(t, err)
		require.Len(t, sources, 3)

		assert.Equal(t, m.Path(locked), sources[0].Path)
		assert.Error(t, sources[0].WalkErr)
		assert.Equal(t, m.Path(filepath.Join(root, "models.py")), sources[1].Path)
		assert.NoError(t, sources[1].WalkErr)
		assert.Equal(t, m.Path(filepath.Join(root, "zeta", "views.xml")), sources[2].Path)
	})

	t.Run("missing root is an error", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		_, err := adapter.Get(m.Path(filepath.Join(t.TempDir(), "missing")))
		assert.Error(t, err)
	})
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"addon/tests/test_sale.py", true},
		{"addon/test_sale.py", true},
		{"addon/tests/common.py", true},
		{"addon/static/tests/tours/sale_tour.js", true},
		{"addon/static/src/widget.test.js", true},
		{"addon/tests/data.csv", false},
		{"addon/models/sale.py", false},
		{"addon/models/testing.py", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTestFile(m.Path(tt.path)))
		})
	}
}

func TestIsIgnoredDir(t *testing.T) {
	assert.True(t, IsIgnoredDir(".venv"))
	assert.True(t, IsIgnoredDir("node_modules"))
	assert.True(t, IsIgnoredDir("tools"))
	assert.False(t, IsIgnoredDir("models"))
	assert.False(t, IsIgnoredDir("."))
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}

	return false
}
