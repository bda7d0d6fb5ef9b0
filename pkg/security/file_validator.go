package security

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrSpoofedContent  = errors.New("file content does not match extension")
)

// FileValidationResult describes an accepted attachment
type FileValidationResult struct {
	Extension    string // canonical extension, e.g. ".jpg"
	DetectedMIME string
	IsImage      bool
}

type fileKind struct {
	mime      string
	extension string
	image     bool
	// magic byte prefixes, any of which must match
	signatures [][]byte
	// extensions a client may send for this kind
	aliases []string
}

// Strict whitelist. application/octet-stream is never accepted on its own.
var allowedKinds = []fileKind{
	{mime: "image/jpeg", extension: ".jpg", image: true,
		signatures: [][]byte{{0xFF, 0xD8, 0xFF}}, aliases: []string{".jpg", ".jpeg"}},
	{mime: "image/png", extension: ".png", image: true,
		signatures: [][]byte{{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}}, aliases: []string{".png"}},
	{mime: "image/gif", extension: ".gif", image: true,
		signatures: [][]byte{[]byte("GIF87a"), []byte("GIF89a")}, aliases: []string{".gif"}},
	{mime: "image/webp", extension: ".webp", image: true,
		signatures: [][]byte{[]byte("RIFF")}, aliases: []string{".webp"}},
	{mime: "application/pdf", extension: ".pdf",
		signatures: [][]byte{[]byte("%PDF")}, aliases: []string{".pdf"}},
	{mime: "application/msword", extension: ".doc",
		signatures: [][]byte{{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, aliases: []string{".doc"}},
	{mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", extension: ".docx",
		signatures: [][]byte{{0x50, 0x4B, 0x03, 0x04}}, aliases: []string{".docx"}},
}

// ValidateAttachment checks an uploaded CV attachment:
// 1. Content sniffing plus magic bytes decide the type
// 2. The type must be on the whitelist
// 3. When a filename is given its extension must agree with the content
func ValidateAttachment(filename string, data []byte) (*FileValidationResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	kind := detectKind(data)
	if kind == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, http.DetectContentType(data))
	}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if !hasAlias(kind, ext) {
			return nil, fmt.Errorf("%w: %s is %s", ErrSpoofedContent, ext, kind.mime)
		}
	}

	return &FileValidationResult{
		Extension:    kind.extension,
		DetectedMIME: kind.mime,
		IsImage:      kind.image,
	}, nil
}

func detectKind(data []byte) *fileKind {
	sniffed := http.DetectContentType(data)
	for i := range allowedKinds {
		k := &allowedKinds[i]
		if !matchesSignature(k, data) {
			continue
		}
		switch k.mime {
		case "image/webp":
			// RIFF is shared with wav/avi
			if len(data) < 12 || !bytes.Equal(data[8:12], []byte("WEBP")) {
				continue
			}
		case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
			// DetectContentType reports zip; require the word/ part
			if sniffed != "application/zip" || !bytes.Contains(data, []byte("word/")) {
				continue
			}
		}
		return k
	}
	return nil
}

func matchesSignature(k *fileKind, data []byte) bool {
	for _, sig := range k.signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func hasAlias(k *fileKind, ext string) bool {
	for _, a := range k.aliases {
		if a == ext {
			return true
		}
	}
	return false
}

// AllowedExtensions lists accepted extensions for error messages
func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedKinds)+1)
	for _, k := range allowedKinds {
		out = append(out, k.aliases...)
	}
	return out
}
