package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesDirectoryLayout(t *testing.T) {
	root := t.TempDir()
	if _, err := Open(root); err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, sub := range []string{"thumbnails", "albums"} {
		if fi, err := os.Stat(filepath.Join(root, sub)); err != nil || !fi.IsDir() {
			t.Fatalf("expected %s to exist as a directory: %v", sub, err)
		}
	}
}

func TestUpsertSaveAndReopenRoundTrips(t *testing.T) {
	root := t.TempDir()
	lib, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	lib.Upsert(Entry{Path: "/photos/a.jpg", SHA256: "abc123", Width: 4000, Height: 3000})
	lib.Upsert(Entry{Path: "/photos/b.jpg", SHA256: "def456", Width: 1920, Height: 1080})
	if err := lib.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("Open (reopen): %v", err)
	}
	entries := reopened.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after reopen, got %d", len(entries))
	}
}

func TestUpsertReplacesExistingPath(t *testing.T) {
	root := t.TempDir()
	lib, _ := Open(root)
	lib.Upsert(Entry{Path: "/photos/a.jpg", SHA256: "old"})
	lib.Upsert(Entry{Path: "/photos/a.jpg", SHA256: "new"})

	entries := lib.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after replacing, got %d", len(entries))
	}
	if entries[0].SHA256 != "new" {
		t.Fatalf("expected the replaced SHA256, got %q", entries[0].SHA256)
	}
}

func TestRemoveDropsEntry(t *testing.T) {
	root := t.TempDir()
	lib, _ := Open(root)
	lib.Upsert(Entry{Path: "/photos/a.jpg"})
	lib.Upsert(Entry{Path: "/photos/b.jpg"})
	lib.Remove("/photos/a.jpg")

	entries := lib.Entries()
	if len(entries) != 1 || entries[0].Path != "/photos/b.jpg" {
		t.Fatalf("unexpected entries after Remove: %+v", entries)
	}
}

func TestThumbnailAndAlbumPathsMatchLayout(t *testing.T) {
	root := t.TempDir()
	lib, _ := Open(root)
	want := filepath.Join(root, "thumbnails", "deadbeef.jpg")
	if got := lib.ThumbnailPath("deadbeef"); got != want {
		t.Fatalf("ThumbnailPath = %q, want %q", got, want)
	}
	wantAlbum := filepath.Join(root, "albums", "Vacation.json")
	if got := lib.AlbumPath("Vacation"); got != wantAlbum {
		t.Fatalf("AlbumPath = %q, want %q", got, wantAlbum)
	}
}

func TestSaveAndLoadAlbumRoundTrips(t *testing.T) {
	root := t.TempDir()
	lib, _ := Open(root)
	album := Album{Name: "Vacation", ImagePaths: []string{"/photos/a.jpg", "/photos/b.jpg"}}
	if err := lib.SaveAlbum(album); err != nil {
		t.Fatalf("SaveAlbum: %v", err)
	}
	got, err := lib.LoadAlbum("Vacation")
	if err != nil {
		t.Fatalf("LoadAlbum: %v", err)
	}
	if len(got.ImagePaths) != 2 {
		t.Fatalf("expected 2 image paths, got %d", len(got.ImagePaths))
	}
}

func TestHashFileIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	h1, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	h2, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile (again): %v", err)
	}
	if h1 != h2 {
		t.Fatalf("HashFile is not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected a 64-char hex SHA-256 digest, got %d chars", len(h1))
	}
}

func TestHashFileMissingReturnsIoError(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing.jpg"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	var ioErr *IoError
	if e, ok := err.(*IoError); ok {
		ioErr = e
	}
	if ioErr == nil {
		t.Fatalf("expected *IoError, got %T", err)
	}
}
