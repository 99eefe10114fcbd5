package source

import (
	"slices"
)

// DocFlags records the normalizations applied to a document.
type DocFlags uint8

const (
	DocHadBOM DocFlags = 1 << iota
	DocNormalizedCRLF
)

// Document is one input file after normalization.
type Document struct {
	Path    string
	Content []byte
	Flags   DocFlags
}

// NewDocument strips a UTF-8 byte order mark and rewrites CRLF line endings
// so that line numbers match what editors show.
func NewDocument(path string, content []byte) Document {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	var flags DocFlags
	if hadBOM {
		flags |= DocHadBOM
	}
	if hadCRLF {
		flags |= DocNormalizedCRLF
	}
	return Document{Path: path, Content: content, Flags: flags}
}

// normalizeCRLF rewrites \r\n as \n and leaves lone \r alone.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}
	out := make([]byte, 0, len(content))
	changed := false
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i++
			changed = true
			continue
		}
		out = append(out, content[i])
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}
