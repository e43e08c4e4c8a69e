// Package objecttest builds loose-object stores on disk for tests.
package objecttest

import (
	"bytes"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/odvcencio/gitinspect/pkg/object"
	"golang.org/x/crypto/ssh"
)

// Store writes fixtures into a temporary object store.
type Store struct {
	t    testing.TB
	Root string
}

// NewStore creates an empty store under t.TempDir().
func NewStore(t testing.TB) *Store {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "objects"), 0o755); err != nil {
		t.Fatalf("mkdir objects: %v", err)
	}
	return &Store{t: t, Root: root}
}

// Database opens the store for reading.
func (s *Store) Database(opts ...object.Option) *object.Database {
	s.t.Helper()
	db, err := object.NewDatabase(s.Root, opts...)
	if err != nil {
		s.t.Fatalf("NewDatabase: %v", err)
	}
	return db
}

// Compress zlib-compresses data.
func Compress(t testing.TB, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

// WriteFile stores data verbatim as the file for h.
func (s *Store) WriteFile(h object.Hash, data []byte) {
	s.t.Helper()
	dir := filepath.Join(s.Root, "objects", h.Prefix())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, h.Suffix()), data, 0o644); err != nil {
		s.t.Fatalf("write object %s: %v", h, err)
	}
}

// WriteRaw compresses raw (header included) and stores it under h.
func (s *Store) WriteRaw(h object.Hash, raw []byte) {
	s.t.Helper()
	s.WriteFile(h, Compress(s.t, raw))
}

// Write stores payload under its SHA-1 object name and returns it.
func (s *Store) Write(objType object.ObjectType, payload []byte) object.Hash {
	s.t.Helper()
	raw := object.Envelope(objType, payload)
	sum := sha1.Sum(raw)
	h := object.Hash(hex.EncodeToString(sum[:]))
	s.WriteRaw(h, raw)
	return h
}

// WritePayload marshals and stores p.
func (s *Store) WritePayload(p object.Payload) object.Hash {
	s.t.Helper()
	data, err := object.Marshal(p)
	if err != nil {
		s.t.Fatalf("Marshal: %v", err)
	}
	return s.Write(p.Type(), data)
}

// WriteBlob stores a blob.
func (s *Store) WriteBlob(data string) object.Hash {
	s.t.Helper()
	return s.Write(object.TypeBlob, []byte(data))
}

// WriteCommit stores a commit with the given tree, message and parents.
func (s *Store) WriteCommit(tree object.Hash, message string, parents ...object.Hash) object.Hash {
	s.t.Helper()
	return s.WritePayload(NewCommit(tree, message, parents...))
}

// NewCommit returns a commit authored by a fixed test identity.
func NewCommit(tree object.Hash, message string, parents ...object.Hash) *object.Commit {
	return &object.Commit{
		TreeHash:  tree,
		Parents:   parents,
		Author:    Identity("Ada Lovelace", 1700000000),
		Committer: Identity("Ada Lovelace", 1700000000),
		Message:   message,
	}
}

// Identity formats a signature line for name at the given unix time.
func Identity(name string, unix int64) string {
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	return fmt.Sprintf("%s <%s> %d +0000", name, email, unix)
}

// SignCommit sets c.Signature to an armored SSHSIG over the commit.
func SignCommit(t testing.TB, signer ssh.Signer, c *object.Commit) {
	t.Helper()
	c.Signature = ""
	payload, err := object.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	c.Signature = SSHSign(t, signer, object.GitSignatureScope, payload)
}

// SSHSign produces an armored SSHSIG signature over payload.
func SSHSign(t testing.TB, signer ssh.Signer, namespace string, payload []byte) string {
	t.Helper()
	digest := sha512.Sum512(payload)
	signed := append([]byte("SSHSIG"), ssh.Marshal(struct {
		Namespace     string
		Reserved      string
		HashAlgorithm string
		Hash          []byte
	}{namespace, "", "sha512", digest[:]})...)
	sig, err := signer.Sign(rand.Reader, signed)
	if err != nil {
		t.Fatalf("ssh sign: %v", err)
	}
	blob := append([]byte("SSHSIG"), ssh.Marshal(struct {
		Version       uint32
		PublicKey     []byte
		Namespace     string
		Reserved      string
		HashAlgorithm string
		Signature     []byte
	}{1, signer.PublicKey().Marshal(), namespace, "", "sha512", ssh.Marshal(sig)})...)

	enc := base64.StdEncoding.EncodeToString(blob)
	var b strings.Builder
	b.WriteString("-----BEGIN SSH SIGNATURE-----\n")
	for len(enc) > 70 {
		b.WriteString(enc[:70])
		b.WriteByte('\n')
		enc = enc[70:]
	}
	b.WriteString(enc)
	b.WriteString("\n-----END SSH SIGNATURE-----")
	return b.String()
}
