package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// MaxUploadBytes is the ceiling for a single uploaded file.
const MaxUploadBytes int64 = 20 << 20

// FileTooLargeError is returned before sending a file above the ceiling.
type FileTooLargeError struct {
	Name  string
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("arquivo %q excede o limite de %d MB", e.Name, e.Limit>>20)
}

func (e *FileTooLargeError) StatusCode() int {
	return http.StatusRequestEntityTooLarge
}

// File is one part of a multipart upload.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Multipart is a form-data body.
type Multipart struct {
	Fields map[string]string
	Files  []File
	// MaxFileSize overrides MaxUploadBytes when positive.
	MaxFileSize int64
}

// CheckSize validates size against the upload ceiling.
func CheckSize(name string, size, limit int64) error {
	if limit <= 0 {
		limit = MaxUploadBytes
	}
	if size > limit {
		return &FileTooLargeError{Name: name, Size: size, Limit: limit}
	}
	return nil
}

func (m *Multipart) encode() (io.Reader, string, error) {
	for _, f := range m.Files {
		if err := CheckSize(f.Name, int64(len(f.Data)), m.MaxFileSize); err != nil {
			return nil, "", err
		}
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     f.Field,
			"filename": f.Name,
		}))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// Decoder interprets a 2xx response.
type Decoder interface {
	Decode(resp *http.Response) error
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(resp *http.Response) error

func (f DecoderFunc) Decode(resp *http.Response) error {
	return f(resp)
}

// JSON decodes the body into out. An empty body leaves out untouched.
func JSON(out interface{}) Decoder {
	return DecoderFunc(func(resp *http.Response) error {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, err := io.Copy(io.Discard, resp.Body)
			return err
		}
		err := json.NewDecoder(resp.Body).Decode(out)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	})
}

// BlobData is a downloaded binary resource.
type BlobData struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Blob reads the whole body into dst.
func Blob(dst *BlobData) Decoder {
	return DecoderFunc(func(resp *http.Response) error {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		dst.Data = data
		dst.ContentType = resp.Header.Get("Content-Type")
		dst.Filename = filenameFrom(resp.Header.Get("Content-Disposition"))
		return nil
	})
}

// Discard drains and ignores the body.
func Discard() Decoder {
	return DecoderFunc(func(resp *http.Response) error {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	})
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}
