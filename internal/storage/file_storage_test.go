// internal/storage/file_storage_test.go
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadTextFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveTextFile("sub", "a.txt", []byte("hello")))

	data, err := fs.LoadTextFile("sub", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// 写入后不留下临时文件
	_, err = os.Stat(filepath.Join(fs.BaseDir, "sub", "a.txt.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveAndLoadJSONFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, fs.SaveJSONFile("", "state.json", payload{Name: "会话", Count: 3}))

	var loaded payload
	require.NoError(t, fs.LoadJSONFile("", "state.json", &loaded))
	assert.Equal(t, payload{Name: "会话", Count: 3}, loaded)
}

func TestFileExists(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	assert.False(t, fs.FileExists("", "missing.json"))

	require.NoError(t, fs.SaveTextFile("", "present.json", []byte("{}")))
	assert.True(t, fs.FileExists("", "present.json"))
}

func TestDeleteFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveTextFile("", "gone.txt", []byte("x")))
	require.NoError(t, fs.DeleteFile("", "gone.txt"))
	assert.False(t, fs.FileExists("", "gone.txt"))

	// 删除不存在的文件不报错
	require.NoError(t, fs.DeleteFile("", "never.txt"))
}

func TestLoadMissingFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	_, err = fs.LoadTextFile("", "missing.txt")
	assert.Error(t, err)
}
