package storage

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

// DecodeDataURI accepts "data:<mime>;base64,<payload>" or a bare base64
// payload and returns the declared MIME type (may be empty) and the bytes.
func DecodeDataURI(value string) (string, []byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil, ErrInvalidDataURI
	}

	mime := ""
	payload := value
	if strings.HasPrefix(value, "data:") {
		comma := strings.IndexByte(value, ',')
		if comma < 0 {
			return "", nil, ErrInvalidDataURI
		}
		meta := value[len("data:"):comma]
		if !strings.HasSuffix(meta, ";base64") {
			return "", nil, ErrInvalidDataURI
		}
		mime = strings.TrimSuffix(meta, ";base64")
		payload = value[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, ErrInvalidDataURI
		}
	}
	if len(data) == 0 {
		return "", nil, ErrInvalidDataURI
	}
	return mime, data, nil
}
