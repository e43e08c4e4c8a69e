package object

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decode parses one decompressed object stream of the form
// "<type> <size>\x00<payload>". Objects of an unknown type decode to an
// *Undefined payload and the rest of the stream is left unread.
func Decode(h Hash, r io.Reader) (*Object, error) {
	br := bufio.NewReader(r)
	header, err := readNullTerminated(br)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	typ, size, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	obj := &Object{Hash: h, Size: size}
	if !typ.Known() {
		obj.Payload = &Undefined{Name: string(typ)}
		return obj, nil
	}

	counter := &countingReader{r: br}
	pr := bufio.NewReader(counter)
	switch typ {
	case TypeBlob:
		obj.Payload, err = decodeBlob(pr)
	case TypeTree:
		obj.Payload, err = decodeTree(pr, h.rawSize())
	case TypeCommit:
		obj.Payload, err = decodeCommit(pr)
	case TypeTag:
		obj.Payload, err = decodeTag(pr)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", typ, err)
	}

	// Whatever the parser left behind still counts towards the payload.
	if _, err := io.Copy(io.Discard, pr); err != nil {
		return nil, fmt.Errorf("decode %s: drain: %w", typ, err)
	}
	if counter.n != size {
		return nil, fmt.Errorf("decode %s: %w: header=%d, actual=%d", typ, ErrSizeMismatch, size, counter.n)
	}
	return obj, nil
}

func parseHeader(header string) (ObjectType, int64, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedHeader, header)
	}
	size, err := strconv.ParseUint(parts[1], 10, 63)
	if err != nil {
		return "", 0, fmt.Errorf("%w: bad size %q: %v", ErrMalformedHeader, parts[1], err)
	}
	return ObjectType(parts[0]), int64(size), nil
}

func decodeBlob(r io.Reader) (*Blob, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return &Blob{Data: data}, nil
}

func decodeTree(r *bufio.Reader, hashSize int) (*Tree, error) {
	tree := &Tree{}
	for {
		entry, ok, err := decodeTreeEntry(r, hashSize)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(tree.Entries), err)
		}
		if !ok {
			return tree, nil
		}
		tree.Entries = append(tree.Entries, entry)
	}
}

// decodeTreeEntry reads one "<mode> <name>\x00<raw hash>" record. It reports
// false once the entries are exhausted.
func decodeTreeEntry(r *bufio.Reader, hashSize int) (TreeEntry, bool, error) {
	header, err := readNullTerminated(r)
	if err != nil {
		return TreeEntry{}, false, err
	}
	if header == "" {
		return TreeEntry{}, false, nil
	}

	modeText, name, ok := strings.Cut(header, " ")
	if !ok {
		return TreeEntry{}, false, fmt.Errorf("%w: %q: no mode separator", ErrMalformedEntry, header)
	}
	mode, err := parseFileMode(modeText)
	if err != nil {
		return TreeEntry{}, false, fmt.Errorf("%w: %q: bad mode: %v", ErrMalformedEntry, header, err)
	}

	raw := make([]byte, hashSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return TreeEntry{}, false, fmt.Errorf("%w: %q: truncated hash", ErrMalformedEntry, name)
		}
		return TreeEntry{}, false, fmt.Errorf("read hash of %q: %w", name, err)
	}
	return TreeEntry{Mode: mode, Name: name, Hash: hashFromRaw(raw)}, true, nil
}

func decodeCommit(r *bufio.Reader) (*Commit, error) {
	text, err := readTextObject(r)
	if err != nil {
		return nil, err
	}

	c := &Commit{Message: text.message, signedPayload: text.unsigned}
	var haveTree, haveAuthor, haveCommitter bool
	for _, f := range text.fields {
		switch f.key {
		case "tree":
			if !haveTree {
				c.TreeHash = Hash(f.value)
				haveTree = true
			}
		case "parent":
			c.Parents = append(c.Parents, Hash(f.value))
		case "author":
			if !haveAuthor {
				c.Author = f.value
				haveAuthor = true
			}
		case "committer":
			if !haveCommitter {
				c.Committer = f.value
				haveCommitter = true
			}
		case "gpgsig", "gpgsig-sha256":
			if c.signatureKey == "" {
				c.Signature = f.value
				c.signatureKey = f.key
			} else {
				c.Extra = append(c.Extra, Header{Key: f.key, Value: f.value})
			}
		default:
			c.Extra = append(c.Extra, Header{Key: f.key, Value: f.value})
		}
	}

	switch {
	case !haveTree:
		return nil, &MissingFieldError{Object: TypeCommit, Field: "tree"}
	case !haveAuthor:
		return nil, &MissingFieldError{Object: TypeCommit, Field: "author"}
	case !haveCommitter:
		return nil, &MissingFieldError{Object: TypeCommit, Field: "committer"}
	}
	return c, nil
}

func decodeTag(r *bufio.Reader) (*Tag, error) {
	text, err := readTextObject(r)
	if err != nil {
		return nil, err
	}

	t := &Tag{Message: text.message}
	seen := make(map[string]bool, 4)
	for _, f := range text.fields {
		if seen[f.key] {
			continue
		}
		switch f.key {
		case "object":
			t.Object = Hash(f.value)
		case "type":
			t.ObjectType = ObjectType(f.value)
		case "tag":
			t.Name = f.value
		case "tagger":
			t.Tagger = f.value
		default:
			continue
		}
		seen[f.key] = true
	}

	for _, name := range []string{"object", "type", "tag", "tagger"} {
		if !seen[name] {
			return nil, &MissingFieldError{Object: TypeTag, Field: name}
		}
	}
	return t, nil
}
