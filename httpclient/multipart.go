package httpclient

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"
)

// MultipartBody is a multipart/form-data request body. Set it as a
// request Body and HTTPTransport encodes it and sets the Content-Type.
type MultipartBody struct {
	// Fields are plain form fields, written in key order.
	Fields map[string]string
	// Files are file parts, written in slice order after the fields.
	Files []FileField
}

// FileField is one file part of a multipart body.
type FileField struct {
	FieldName string
	FileName  string
	// ContentType defaults to application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader streams the content instead of Data.
	Reader io.Reader
}

// NewMultipartBody returns an empty multipart body.
func NewMultipartBody() *MultipartBody {
	return &MultipartBody{Fields: map[string]string{}}
}

// Field adds a form field and returns m for chaining.
func (m *MultipartBody) Field(name, value string) *MultipartBody {
	if m.Fields == nil {
		m.Fields = map[string]string{}
	}
	m.Fields[name] = value
	return m
}

// File adds a file part and returns m for chaining.
func (m *MultipartBody) File(f FileField) *MultipartBody {
	m.Files = append(m.Files, f)
	return m
}

// encode builds the body and returns it with its Content-Type.
func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		if err := writeFilePart(w, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, f FileField) error {
	var (
		part io.Writer
		err  error
	)
	if f.ContentType != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
		header.Set("Content-Type", f.ContentType)
		part, err = w.CreatePart(header)
	} else {
		part, err = w.CreateFormFile(f.FieldName, f.FileName)
	}
	if err != nil {
		return err
	}

	switch {
	case f.Data != nil:
		_, err = part.Write(f.Data)
	case f.Reader != nil:
		_, err = io.Copy(part, f.Reader)
	}
	return err
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
