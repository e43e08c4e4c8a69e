package object

import (
	"fmt"
	"strconv"
)

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// Known reports whether t is one of the four decodable kinds.
func (t ObjectType) Known() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return true
	}
	return false
}

// Object is one decoded object. Size is the size declared in the object's
// header. Payload is one of *Blob, *Tree, *Commit, *Tag or *Undefined.
type Object struct {
	Hash    Hash
	Size    int64
	Payload Payload
}

// Payload is the closed set of decoded object bodies.
type Payload interface {
	Type() ObjectType
	payload()
}

// Type returns the object's type as read from its header.
func (o *Object) Type() ObjectType { return o.Payload.Type() }

// Blob returns the blob payload, or an error if o is not a blob.
func (o *Object) Blob() (*Blob, error) {
	b, ok := o.Payload.(*Blob)
	if !ok {
		return nil, o.mismatch(TypeBlob)
	}
	return b, nil
}

// Tree returns the tree payload, or an error if o is not a tree.
func (o *Object) Tree() (*Tree, error) {
	t, ok := o.Payload.(*Tree)
	if !ok {
		return nil, o.mismatch(TypeTree)
	}
	return t, nil
}

// Commit returns the commit payload, or an error if o is not a commit.
func (o *Object) Commit() (*Commit, error) {
	c, ok := o.Payload.(*Commit)
	if !ok {
		return nil, o.mismatch(TypeCommit)
	}
	return c, nil
}

// Tag returns the tag payload, or an error if o is not a tag.
func (o *Object) Tag() (*Tag, error) {
	t, ok := o.Payload.(*Tag)
	if !ok {
		return nil, o.mismatch(TypeTag)
	}
	return t, nil
}

func (o *Object) mismatch(want ObjectType) error {
	if u, ok := o.Payload.(*Undefined); ok {
		return fmt.Errorf("object %s: %w (type %q)", o.Hash, ErrUndefinedContent, u.Name)
	}
	return fmt.Errorf("object %s: type mismatch: got %q, want %q", o.Hash, o.Type(), want)
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

func (*Blob) Type() ObjectType { return TypeBlob }
func (*Blob) payload()         {}

// FileMode is the mode of a tree entry. On disk it is written in octal and
// it is parsed as octal, so a regular file holds 0o100644 (33188), not the
// decimal reading 100644 of its digits.
type FileMode uint32

const (
	ModeDir        FileMode = 0o040000
	ModeFile       FileMode = 0o100644
	ModeExecutable FileMode = 0o100755
	ModeSymlink    FileMode = 0o120000
	ModeGitlink    FileMode = 0o160000
)

// String formats m the way cat-file prints it, e.g. "040000".
func (m FileMode) String() string {
	return fmt.Sprintf("%06o", uint32(m))
}

// ObjectType returns the kind of object an entry with this mode points at.
func (m FileMode) ObjectType() ObjectType {
	switch m {
	case ModeDir:
		return TypeTree
	case ModeGitlink:
		return TypeCommit
	default:
		return TypeBlob
	}
}

func parseFileMode(s string) (FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	return FileMode(v), nil
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode FileMode
	Name string
	Hash Hash
}

// Tree holds entries in the order they appear on disk.
type Tree struct {
	Entries []TreeEntry
}

func (*Tree) Type() ObjectType { return TypeTree }
func (*Tree) payload()         {}

// Header is one "key value" line of a commit header. Value is unfolded:
// continuation lines are joined with "\n".
type Header struct {
	Key   string
	Value string
}

// Commit links a tree to its parent commits.
type Commit struct {
	TreeHash  Hash
	Parents   []Hash
	Author    string
	Committer string
	// Extra holds the remaining headers, such as encoding and mergetag, in
	// stored order.
	Extra []Header
	// Signature is the unfolded gpgsig or gpgsig-sha256 header value, if any.
	Signature string
	Message   string

	signatureKey  string
	signedPayload []byte
}

func (*Commit) Type() ObjectType { return TypeCommit }
func (*Commit) payload()         {}

// AuthorIdentity parses the author line.
func (c *Commit) AuthorIdentity() Identity { return ParseIdentity(c.Author) }

// CommitterIdentity parses the committer line.
func (c *Commit) CommitterIdentity() Identity { return ParseIdentity(c.Committer) }

// Tag annotates another object.
type Tag struct {
	Object     Hash
	ObjectType ObjectType
	Name       string
	Tagger     string
	Message    string
}

func (*Tag) Type() ObjectType { return TypeTag }
func (*Tag) payload()         {}

// TaggerIdentity parses the tagger line.
func (t *Tag) TaggerIdentity() Identity { return ParseIdentity(t.Tagger) }

// Undefined stands in for an object whose header names an unknown type.
// Its content is never read.
type Undefined struct {
	Name string
}

func (u *Undefined) Type() ObjectType { return ObjectType(u.Name) }
func (*Undefined) payload()           {}
