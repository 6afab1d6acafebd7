package transfer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pyropy/relstore/core/errs"
)

// nameTerminator ends the file name header at the start of chunk 0.
const nameTerminator = '\n'

// EncodePayload prefixes body with a newline terminated file name header.
func EncodePayload(name string, body []byte) ([]byte, error) {
	if strings.ContainsRune(name, nameTerminator) {
		return nil, errs.New("encodePayload", errs.ErrInvalidFileName, fmt.Errorf("%q contains a newline", name))
	}

	var buf bytes.Buffer
	buf.Grow(len(name) + 1 + len(body))
	buf.WriteString(name)
	buf.WriteByte(nameTerminator)
	buf.Write(body)

	return buf.Bytes(), nil
}

// DecodePayload splits a reassembled payload at the first newline. ok is
// false when the payload carries no header, in which case the whole payload
// is returned as body.
func DecodePayload(payload []byte) (name string, body []byte, ok bool) {
	i := bytes.IndexByte(payload, nameTerminator)
	if i < 0 {
		return "", payload, false
	}

	return string(payload[:i]), payload[i+1:], true
}
