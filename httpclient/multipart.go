package httpclient

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
)

// MultipartBody is a multipart/form-data request body.
type MultipartBody struct {
	// Fields are written in order; repeated names are allowed
	// (e.g. "timestamp_granularities[]").
	Fields []Field
	Files  []FileField
}

// Field is a simple form field.
type Field struct {
	Name  string
	Value string
}

// FileField is a file upload. Path is read at send time so retried
// requests upload the file again; Data is used when Path is empty.
type FileField struct {
	FieldName   string
	FileName    string
	ContentType string
	Path        string
	Data        []byte
}

func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		if err := writeFile(w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, f FileField) error {
	name := f.FileName
	if name == "" && f.Path != "" {
		name = filepath.Base(f.Path)
	}

	var part io.Writer
	var err error
	if f.ContentType != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(name)+`"`)
		header.Set("Content-Type", f.ContentType)
		part, err = w.CreatePart(header)
	} else {
		part, err = w.CreateFormFile(f.FieldName, name)
	}
	if err != nil {
		return err
	}

	if f.Path == "" {
		_, err = part.Write(f.Data)
		return err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(part, file)
	return err
}

func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
