package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

type headerField struct {
	key   string
	value string
}

// textObject is the header/message split of a commit or tag payload.
type textObject struct {
	fields  []headerField
	message string
	// unsigned is the payload with any gpgsig headers removed.
	unsigned []byte
}

func isSignatureKey(key string) bool {
	return key == "gpgsig" || key == "gpgsig-sha256"
}

// readTextObject reads "key value" header lines up to the first empty
// line; everything after that is the message. Lines starting with a space
// continue the previous header's value.
func readTextObject(r *bufio.Reader) (*textObject, error) {
	t := &textObject{}
	var (
		message  strings.Builder
		unsigned bytes.Buffer
		inHeader = true
		last     = -1
	)
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read line: %w", err)
		}
		if line == "" {
			break
		}

		switch {
		case !inHeader:
			message.WriteString(line)
			unsigned.WriteString(line)
		case line == "\n":
			inHeader = false
			unsigned.WriteString(line)
		case line[0] == ' ':
			if last >= 0 {
				f := &t.fields[last]
				f.value += "\n" + strings.TrimSuffix(line[1:], "\n")
				if isSignatureKey(f.key) {
					break
				}
			}
			unsigned.WriteString(line)
		default:
			key, value, ok := strings.Cut(strings.TrimSuffix(line, "\n"), " ")
			if !ok {
				last = -1
				unsigned.WriteString(line)
				break
			}
			t.fields = append(t.fields, headerField{key: key, value: value})
			last = len(t.fields) - 1
			if !isSignatureKey(key) {
				unsigned.WriteString(line)
			}
		}

		if err == io.EOF {
			break
		}
	}
	t.message = message.String()
	t.unsigned = unsigned.Bytes()
	return t, nil
}
