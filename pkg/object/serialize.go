package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Envelope prefixes payload with the "type len\x00" object header.
func Envelope(objType ObjectType, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objType, len(payload))
	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	return append(out, payload...)
}

// Marshal renders p in its canonical on-disk payload form.
func Marshal(p Payload) ([]byte, error) {
	switch v := p.(type) {
	case *Blob:
		return bytes.Clone(v.Data), nil
	case *Tree:
		return marshalTree(v)
	case *Commit:
		return marshalCommit(v), nil
	case *Tag:
		return marshalTag(v), nil
	case *Undefined:
		return nil, fmt.Errorf("marshal: %w (type %q)", ErrUndefinedContent, v.Name)
	default:
		return nil, fmt.Errorf("marshal: unsupported payload %T", p)
	}
}

// marshalTree writes "<octal mode> <name>\x00<raw hash>" per entry, in the
// order given.
func marshalTree(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range t.Entries {
		raw, err := hex.DecodeString(string(e.Hash))
		if err != nil {
			return nil, fmt.Errorf("marshal tree entry %q: %w: %v", e.Name, ErrInvalidHash, err)
		}
		fmt.Fprintf(&buf, "%o %s\x00", uint32(e.Mode), e.Name)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func marshalCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.TreeHash)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	for _, h := range c.Extra {
		writeHeader(&buf, h.Key, h.Value)
	}
	if c.Signature != "" {
		key := c.signatureKey
		if key == "" {
			key = "gpgsig"
		}
		writeHeader(&buf, key, c.Signature)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// writeHeader folds multi-line values with a leading space per line.
func writeHeader(buf *bytes.Buffer, key, value string) {
	fmt.Fprintf(buf, "%s %s\n", key, strings.ReplaceAll(value, "\n", "\n "))
}

func marshalTag(t *Tag) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.Object)
	fmt.Fprintf(&buf, "type %s\n", t.ObjectType)
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	fmt.Fprintf(&buf, "tagger %s\n", t.Tagger)
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// Pretty writes obj the way "cat-file -p" shows it. Trees are listed one
// entry per line as "<mode> <type> <hash>\t<name>".
func Pretty(w io.Writer, obj *Object) error {
	switch v := obj.Payload.(type) {
	case *Tree:
		for _, e := range v.Entries {
			if _, err := fmt.Fprintf(w, "%s %s %s\t%s\n", e.Mode, e.Mode.ObjectType(), e.Hash, e.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		data, err := Marshal(obj.Payload)
		if err != nil {
			return fmt.Errorf("object %s: %w", obj.Hash, err)
		}
		_, err = w.Write(data)
		return err
	}
}
