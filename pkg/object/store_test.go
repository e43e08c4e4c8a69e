package object_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/odvcencio/gitinspect/pkg/object"
	"github.com/odvcencio/gitinspect/pkg/object/objecttest"
)

func TestParseHash(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: strings.Repeat("a", 40)},
		{in: strings.Repeat("0", 64)},
		{in: "0123456789abcdef0123456789abcdef01234567"},
		{in: "", wantErr: true},
		{in: "ab", wantErr: true},
		{in: strings.Repeat("A", 40), wantErr: true},
		{in: strings.Repeat("g", 40), wantErr: true},
		{in: strings.Repeat("a", 41), wantErr: true},
	}
	for _, tc := range tests {
		h, err := object.ParseHash(tc.in)
		if tc.wantErr {
			if !errors.Is(err, object.ErrInvalidHash) {
				t.Errorf("ParseHash(%q) err = %v, want ErrInvalidHash", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHash(%q): %v", tc.in, err)
			continue
		}
		if h.Prefix()+h.Suffix() != tc.in || len(h.Prefix()) != 2 {
			t.Errorf("Prefix/Suffix of %q = %q/%q", tc.in, h.Prefix(), h.Suffix())
		}
	}
}

func TestReadObject(t *testing.T) {
	s := objecttest.NewStore(t)
	h := s.WriteBlob("hello world\n")

	// Fan-out layout: objects/<2>/<38>.
	if _, err := os.Stat(filepath.Join(s.Root, "objects", string(h[:2]), string(h[2:]))); err != nil {
		t.Fatalf("expected fan-out file: %v", err)
	}

	db := s.Database()
	if !db.Has(h) {
		t.Errorf("Has(%s) = false", h)
	}
	obj, err := db.ReadObject(h)
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if obj.Hash != h || obj.Type() != object.TypeBlob || obj.Size != 12 {
		t.Fatalf("object = %s %s %d", obj.Hash, obj.Type(), obj.Size)
	}
	blob, _ := obj.Blob()
	if string(blob.Data) != "hello world\n" {
		t.Fatalf("Data = %q", blob.Data)
	}
}

func TestReadObjectKnownGitHash(t *testing.T) {
	// `printf 'hello world\n' | git hash-object --stdin`
	s := objecttest.NewStore(t)
	h := s.WriteBlob("hello world\n")
	if h != "3b18e512dba79e4c8300dd08aeb37f8e728b8dad" {
		t.Fatalf("hash = %s", h)
	}
}

func TestReadObjectNotFound(t *testing.T) {
	db := objecttest.NewStore(t).Database()
	missing := object.Hash(strings.Repeat("0", 40))
	if db.Has(missing) {
		t.Error("Has returned true for missing object")
	}
	_, err := db.ReadObject(missing)
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want underlying fs.ErrNotExist", err)
	}
}

func TestReadObjectInvalidHash(t *testing.T) {
	db := objecttest.NewStore(t).Database()
	_, err := db.ReadObject("a")
	if !errors.Is(err, object.ErrInvalidHash) {
		t.Fatalf("err = %v, want ErrInvalidHash", err)
	}
}

func TestReadObjectNotCompressed(t *testing.T) {
	s := objecttest.NewStore(t)
	h := object.Hash(strings.Repeat("1", 40))
	s.WriteFile(h, []byte("blob 5\x00hello"))
	_, err := s.Database().ReadObject(h)
	if err == nil {
		t.Fatal("expected error for uncompressed object")
	}
	if errors.Is(err, object.ErrNotFound) {
		t.Fatalf("err = %v, must not be ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), string(h)) {
		t.Errorf("err = %v, want hash in context", err)
	}
}

func TestReadObjectBadChecksumReportedOnce(t *testing.T) {
	s := objecttest.NewStore(t)
	h := object.Hash(strings.Repeat("2", 40))
	data := objecttest.Compress(t, object.Envelope(object.TypeBlob, []byte("hello")))
	data[len(data)-1] ^= 0xff
	s.WriteFile(h, data)

	_, err := s.Database().ReadObject(h)
	if !errors.Is(err, zlib.ErrChecksum) {
		t.Fatalf("err = %v, want zlib.ErrChecksum", err)
	}
	if n := strings.Count(err.Error(), zlib.ErrChecksum.Error()); n != 1 {
		t.Fatalf("checksum error appears %d times in %q", n, err)
	}
}

func TestReadObjectDecodeFailure(t *testing.T) {
	s := objecttest.NewStore(t)
	h := object.Hash(strings.Repeat("2", 40))
	s.WriteRaw(h, []byte("blob\x00hello"))
	_, err := s.Database().ReadObject(h)
	if !errors.Is(err, object.ErrMalformedHeader) {
		t.Fatalf("err = %v, want ErrMalformedHeader", err)
	}
	if !strings.Contains(err.Error(), "decode object "+string(h)) {
		t.Errorf("err = %v, want decode context", err)
	}
}

func TestReadObjectCache(t *testing.T) {
	s := objecttest.NewStore(t)
	h := s.WriteBlob("cached")
	db := s.Database(object.WithCacheSize(4))

	first, err := db.ReadObject(h)
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if err := os.Remove(filepath.Join(s.Root, "objects", h.Prefix(), h.Suffix())); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	second, err := db.ReadObject(h)
	if err != nil {
		t.Fatalf("cached ReadObject: %v", err)
	}
	if first != second {
		t.Error("expected the cached object to be returned")
	}

	uncached := s.Database()
	if _, err := uncached.ReadObject(h); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("uncached err = %v, want ErrNotFound", err)
	}
}

func TestReadCommit(t *testing.T) {
	s := objecttest.NewStore(t)
	tree := s.WritePayload(&object.Tree{})
	c := s.WriteCommit(tree, "init\n")
	blob := s.WriteBlob("x")
	db := s.Database()

	commit, err := db.ReadCommit(c)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if commit.TreeHash != tree {
		t.Errorf("TreeHash = %s, want %s", commit.TreeHash, tree)
	}
	if _, err := db.ReadCommit(blob); !errors.Is(err, object.ErrNotACommit) {
		t.Fatalf("err = %v, want ErrNotACommit", err)
	}
}
