package httpclient

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// replayable returns body in a form that can be encoded more than once.
// Readers, including multipart file readers, are read into memory and
// closed when they implement io.Closer.
func replayable(body any) (any, error) {
	switch v := body.(type) {
	case *MultipartBody:
		return v.buffered()
	case io.Reader:
		return readAll(v)
	default:
		return body, nil
	}
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// buffered returns a copy of m whose file parts hold their content in Data.
func (m *MultipartBody) buffered() (*MultipartBody, error) {
	if m == nil {
		return nil, nil
	}
	out := &MultipartBody{Fields: maps.Clone(m.Fields), Files: slices.Clone(m.Files)}
	for i, f := range out.Files {
		if f.Data != nil || f.Reader == nil {
			continue
		}
		data, err := readAll(f.Reader)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", f.FileName, err)
		}
		out.Files[i].Data = data
		out.Files[i].Reader = nil
	}
	return out, nil
}
