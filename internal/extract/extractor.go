// Package extract turns uploaded file bytes into plain UTF-8 text. Formats
// are dispatched by declared media type first, file extension second, so a
// browser that sends application/octet-stream still gets the right parser.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when no extractor matches the declared
// media type or file extension. Callers reject the upload before any
// storage write happens.
var ErrUnsupportedFormat = errors.New("unsupported file format")

type extractFunc func(content []byte) (string, error)

// Extractor maps media types and extensions to format-specific extractors.
type Extractor struct {
	byMediaType map[string]extractFunc
	byExtension map[string]extractFunc
}

// NewExtractor returns an Extractor with the built-in formats registered:
// PDF, plain text/markdown, DOCX, PPTX and XLSX.
func NewExtractor() *Extractor {
	e := &Extractor{
		byMediaType: map[string]extractFunc{},
		byExtension: map[string]extractFunc{},
	}
	e.register(extractPDF, []string{"application/pdf"}, []string{".pdf"})
	e.register(extractPlain, nil, []string{".txt", ".md", ".rst"})
	e.register(extractDOCX,
		[]string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		[]string{".docx"})
	e.register(extractPPTX,
		[]string{"application/vnd.openxmlformats-officedocument.presentationml.presentation"},
		[]string{".pptx"})
	e.register(extractXLSX,
		[]string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		[]string{".xlsx"})
	return e
}

func (e *Extractor) register(fn extractFunc, mediaTypes, extensions []string) {
	for _, mt := range mediaTypes {
		e.byMediaType[mt] = fn
	}
	for _, ext := range extensions {
		e.byExtension[ext] = fn
	}
}

// Extract returns the plain text of content. mediaType is the declared
// content type (may be empty or a generic binary type); fileName supplies
// the extension fallback. Returns ErrUnsupportedFormat when neither
// resolves to a registered format.
func (e *Extractor) Extract(content []byte, mediaType, fileName string) (string, error) {
	fn, ok := e.resolve(mediaType, fileName)
	if !ok {
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, mediaType, filepath.Ext(fileName))
	}
	return fn(content)
}

// Supported reports whether an upload with this media type and file name
// would be accepted.
func (e *Extractor) Supported(mediaType, fileName string) bool {
	_, ok := e.resolve(mediaType, fileName)
	return ok
}

func (e *Extractor) resolve(mediaType, fileName string) (extractFunc, bool) {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if fn, ok := e.byMediaType[mt]; ok {
		return fn, true
	}
	if strings.HasPrefix(mt, "text/") {
		return extractPlain, true
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if fn, ok := e.byExtension[ext]; ok {
		return fn, true
	}
	return nil, false
}
