package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoei03/nilgo/pkg/parser"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanDir_FiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "A.java", "class A {}")
	writeFile(t, root, "b.py", "pass")
	writeFile(t, root, "notes.txt", "text")
	writeFile(t, root, "sub/C.java", "class C {}")

	files, err := New(parser.LangJava).ScanDir(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "A.java"), files[0])
	assert.Equal(t, filepath.Join(root, "sub", "C.java"), files[1])
}

func TestScanDir_CExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.c", "int main() {}")
	writeFile(t, root, "util.h", "void util();")
	writeFile(t, root, "other.cpp", "")

	files, err := New(parser.LangC).ScanDir(root)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScanDir_Gitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n")
	writeFile(t, root, "A.java", "class A {}")
	writeFile(t, root, "generated/B.java", "class B {}")

	files, err := New(parser.LangJava).ScanDir(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "A.java"), files[0])

	all, err := New(parser.LangJava, WithGitignore(false)).ScanDir(root)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestScanDir_SkipsGitDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/hooks/H.java", "class H {}")
	writeFile(t, root, "A.java", "class A {}")

	files, err := New(parser.LangJava).ScanDir(root)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestScanDir_MissingRoot(t *testing.T) {
	_, err := New(parser.LangJava).ScanDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestScanDir_RootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "A.java", "class A {}")
	_, err := New(parser.LangJava).ScanDir(filepath.Join(root, "A.java"))
	assert.Error(t, err)
}

func TestScanDir_EmptyTree(t *testing.T) {
	files, err := New(parser.LangJava).ScanDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}
