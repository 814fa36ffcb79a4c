package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestContentPathMapping(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home")
	writeFile(t, filepath.Join(dir, "a", "index.md"), "# A")
	writeFile(t, filepath.Join(dir, "b.md"), "# B")

	s := NewFileStorage(dir, "", "")

	require.True(t, s.Exists(""))
	require.True(t, s.Exists("a"))
	require.True(t, s.Exists("b"))
	require.False(t, s.Exists("missing"))
}

func TestReadRejectsParentTraversal(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir, "", "")
	_, err := s.Read("../etc/passwd")
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	require.Equal(t, KindInvalidPath, serr.Kind)
}

func TestReadMissingReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStorage(dir, "", "")
	_, err := s.Read("nope")
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	require.Equal(t, KindNotFound, serr.Kind)
}

func TestScanSkipsDottedAndVendoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home")
	writeFile(t, filepath.Join(dir, "guide.md"), "# Guide")
	writeFile(t, filepath.Join(dir, ".hidden", "x.md"), "# Hidden")
	writeFile(t, filepath.Join(dir, "_drafts", "x.md"), "# Draft")
	writeFile(t, filepath.Join(dir, "node_modules", "x.md"), "# Dep")

	s := NewFileStorage(dir, "", "")
	docs, err := s.Scan()
	require.NoError(t, err)

	paths := map[string]bool{}
	for _, d := range docs {
		paths[d.URLPath] = true
	}
	require.True(t, paths[""])
	require.True(t, paths["guide"])
	require.Len(t, docs, 2)
}

func TestScanProducesVirtualPageForSidecarWithoutIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home")
	writeFile(t, filepath.Join(dir, "billing", "meta.yaml"), "title: Billing\ntype: domain\n")

	s := NewFileStorage(dir, "", "")
	docs, err := s.Scan()
	require.NoError(t, err)

	var virtual *Document
	for i := range docs {
		if docs[i].URLPath == "billing" {
			virtual = &docs[i]
		}
	}
	require.NotNil(t, virtual)
	require.False(t, virtual.HasContent)
	require.Equal(t, "Billing", virtual.Title)
	require.Equal(t, "domain", virtual.PageType)
}

func TestScanSkipsEmptySidecarWithoutIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty", "meta.yaml"), "")

	s := NewFileStorage(dir, "", "")
	docs, err := s.Scan()
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestTitleResolutionPrefersFirstH1(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "setup-guide.md"), "Some text\n\n# Actual Title\n\nmore")

	s := NewFileStorage(dir, "", "")
	docs, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "Actual Title", docs[0].Title)
}

func TestTitleResolutionFallsBackToNameWhenNoH1(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "setup-guide.md"), "no heading here")

	s := NewFileStorage(dir, "", "")
	docs, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "Setup Guide", docs[0].Title)
}

func TestTitleCacheInvalidatesOnMtimeChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.md")
	writeFile(t, file, "# First")

	s := NewFileStorage(dir, "", "")
	title, err := s.resolveTitle(file, 1.0, "page")
	require.NoError(t, err)
	require.Equal(t, "First", title)

	writeFile(t, file, "# Second")
	info, err := os.Stat(file)
	require.NoError(t, err)
	mtime := float64(info.ModTime().UnixNano()) / 1e9

	title, err = s.resolveTitle(file, mtime, "page")
	require.NoError(t, err)
	require.Equal(t, "Second", title)
}

func TestMetaWiresThroughInheritance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "meta.yaml"), "vars:\n  a: 1\n")
	writeFile(t, filepath.Join(dir, "a", "meta.yaml"), "vars:\n  b: 2\n")
	writeFile(t, filepath.Join(dir, "a", "b", "index.md"), "# Leaf")

	s := NewFileStorage(dir, "", "")
	m, err := s.Meta("a/b")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Nil(t, m.Title)
	require.Equal(t, 1, m.Vars["a"])
	require.Equal(t, 2, m.Vars["b"])
}

func TestWatchEmitsModifiedEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.md")
	writeFile(t, file, "# One")

	s := NewFileStorage(dir, "", "")
	events, handle, err := s.Watch()
	require.NoError(t, err)
	defer handle.Close()

	time.Sleep(20 * time.Millisecond)
	writeFile(t, file, "# Two")

	select {
	case ev := <-events:
		require.Equal(t, "page", ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}
