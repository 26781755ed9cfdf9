package filestore

import (
	"io/ioutil"
	"strings"
	"testing"
)

func TestDiskStorage(t *testing.T) {
	store := NewDiskStorage(t.TempDir())

	path, err := store.Save("resources/r1/notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if path != "resources/r1/notes.txt" {
		t.Errorf("Save() path = %q", path)
	}

	ok, err := store.Exists(path)
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v; want true, nil", ok, err)
	}

	rc, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	content, err := ioutil.ReadAll(rc)
	rc.Close()
	if err != nil || string(content) != "hello" {
		t.Errorf("Open() content = %q, %v", content, err)
	}

	if err = store.Delete(path); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if ok, _ = store.Exists(path); ok {
		t.Errorf("Exists() = true after Delete()")
	}
	// deleting a missing file is not an error
	if err = store.Delete(path); err != nil {
		t.Errorf("Delete() on missing file error = %v", err)
	}

	if _, err = store.Save("../escape.txt", strings.NewReader("x")); err == nil {
		t.Errorf("Save() accepted a path outside the root")
	}
}
