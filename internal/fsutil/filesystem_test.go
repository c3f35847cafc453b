package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAll(t *testing.T, fsys FileSystem, name, content string) {
	t.Helper()
	w, err := fsys.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestOSFileSystem_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	writeAll(t, OSFileSystem{}, path, `{"ok":true}`)

	data, err := OSFileSystem{}.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestMemoryFileSystem(t *testing.T) {
	m := NewMemoryFileSystem()

	_, err := m.ReadFile("out/report.json")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	w, err := m.Create("out/./report.json")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	_, err = m.ReadFile("out/report.json")
	assert.Error(t, err, "file is not visible before Close")

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")
	_, err = w.Write([]byte("late"))
	assert.Error(t, err)

	data, err := m.ReadFile("out/report.json")
	require.NoError(t, err)
	assert.Equal(t, "partial", string(data))

	writeAll(t, m, "a.png", "png")
	assert.Equal(t, []string{"a.png", "out/report.json"}, m.Names())
}

func TestMemoryFileSystem_Truncates(t *testing.T) {
	m := NewMemoryFileSystem()
	writeAll(t, m, "x", "first")
	writeAll(t, m, "x", "2nd")
	data, err := m.ReadFile("x")
	require.NoError(t, err)
	assert.Equal(t, "2nd", string(data))
}

func TestMemoryFileSystem_ReadIsCopy(t *testing.T) {
	m := NewMemoryFileSystem()
	writeAll(t, m, "x", "abc")
	data, _ := m.ReadFile("x")
	data[0] = 'z'
	again, _ := m.ReadFile("x")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryFileSystem_EmptyName(t *testing.T) {
	_, err := NewMemoryFileSystem().Create("")
	assert.True(t, errors.Is(err, fs.ErrInvalid))
}
