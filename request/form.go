// Package request adapts incoming HTTP requests to the input contract
// fields fill from: key existence checks, typed value access, and
// validated file uploads.
package request

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Form is the input surface a field fills from. Both live HTTP requests
// and in-memory value maps (used by tests and bulk updates) satisfy it.
type Form interface {
	// Exists reports whether the key was present in the input
	Exists(key string) bool

	// Input returns the raw value for a key, or nil when absent
	Input(key string) any

	// String returns the value for a key coerced to a string
	String(key string) string

	// Boolean returns the value for a key coerced to a bool
	Boolean(key string) bool

	// HasFile reports whether a file was uploaded under the key
	HasFile(key string) bool

	// File returns the validated upload for a key
	File(key string) (*Upload, error)

	// Files returns all validated uploads for a key
	Files(key string) ([]*Upload, error)
}

// HTTPForm wraps an *http.Request, parsing its body once on first access
type HTTPForm struct {
	r           *http.Request
	uploader    *Uploader
	maxBodySize int64
	values      map[string]any
	parsed      bool
	parseErr    error
}

// NewHTTP creates a form over an HTTP request. The uploader governs file
// size and type limits; pass nil to use defaults.
func NewHTTP(r *http.Request, uploader *Uploader) *HTTPForm {
	if uploader == nil {
		uploader = NewUploader(DefaultUploadOptions())
	}
	return &HTTPForm{
		r:           r,
		uploader:    uploader,
		maxBodySize: 10 << 20,
	}
}

// parse decodes the request body into a value map based on Content-Type.
// The body is read at most once; later accessors reuse the parsed map.
func (f *HTTPForm) parse() {
	if f.parsed {
		return
	}
	f.parsed = true
	f.values = make(map[string]any)

	contentType := f.r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}

	switch {
	case mediaType == "application/json":
		f.parseErr = f.parseJSON()
	case mediaType == "application/x-www-form-urlencoded":
		f.parseErr = f.parseForm()
	case strings.HasPrefix(mediaType, "multipart/form-data"):
		f.parseErr = f.parseMultipart()
	case f.r.Method == http.MethodGet || f.r.Body == nil:
		f.parseQuery()
	default:
		f.parseErr = fmt.Errorf("unsupported content type: %s", mediaType)
	}
}

func (f *HTTPForm) parseJSON() error {
	body := http.MaxBytesReader(nil, f.r.Body, f.maxBodySize)
	defer body.Close()

	decoder := json.NewDecoder(body)
	if err := decoder.Decode(&f.values); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("request body contains multiple JSON objects")
	}
	return nil
}

func (f *HTTPForm) parseForm() error {
	f.r.Body = http.MaxBytesReader(nil, f.r.Body, f.maxBodySize)
	if err := f.r.ParseForm(); err != nil {
		return fmt.Errorf("invalid form data: %w", err)
	}
	for key, vals := range f.r.Form {
		if len(vals) == 1 {
			f.values[key] = vals[0]
		} else {
			f.values[key] = vals
		}
	}
	return nil
}

func (f *HTTPForm) parseMultipart() error {
	if err := f.r.ParseMultipartForm(f.maxBodySize); err != nil {
		return fmt.Errorf("invalid multipart form: %w", err)
	}
	for key, vals := range f.r.MultipartForm.Value {
		if len(vals) == 1 {
			f.values[key] = vals[0]
		} else {
			f.values[key] = vals
		}
	}
	return nil
}

func (f *HTTPForm) parseQuery() {
	for key, vals := range f.r.URL.Query() {
		if len(vals) == 1 {
			f.values[key] = vals[0]
		} else {
			f.values[key] = vals
		}
	}
}

// Err returns the body parse error, if any
func (f *HTTPForm) Err() error {
	f.parse()
	return f.parseErr
}

// Exists reports whether the key was present in the input
func (f *HTTPForm) Exists(key string) bool {
	f.parse()
	_, ok := f.values[key]
	return ok
}

// Input returns the raw value for a key, or nil when absent
func (f *HTTPForm) Input(key string) any {
	f.parse()
	return f.values[key]
}

// String returns the value for a key coerced to a string
func (f *HTTPForm) String(key string) string {
	return Stringify(f.Input(key))
}

// Boolean returns the value for a key coerced to a bool
func (f *HTTPForm) Boolean(key string) bool {
	return Truthy(f.Input(key))
}

// HasFile reports whether a file was uploaded under the key
func (f *HTTPForm) HasFile(key string) bool {
	if f.r.MultipartForm == nil {
		if err := f.r.ParseMultipartForm(f.maxBodySize); err != nil {
			return false
		}
	}
	headers, ok := f.r.MultipartForm.File[key]
	return ok && len(headers) > 0
}

// File returns the validated upload for a key
func (f *HTTPForm) File(key string) (*Upload, error) {
	return f.uploader.File(f.r, key)
}

// Files returns all validated uploads for a key
func (f *HTTPForm) Files(key string) ([]*Upload, error) {
	return f.uploader.Files(f.r, key)
}

// Values is a map-backed form used by tests and programmatic fills
type Values map[string]any

// Exists reports whether the key was present in the input
func (v Values) Exists(key string) bool {
	_, ok := v[key]
	return ok
}

// Input returns the raw value for a key, or nil when absent
func (v Values) Input(key string) any {
	return v[key]
}

// String returns the value for a key coerced to a string
func (v Values) String(key string) string {
	return Stringify(v[key])
}

// Boolean returns the value for a key coerced to a bool
func (v Values) Boolean(key string) bool {
	return Truthy(v[key])
}

// HasFile reports whether an *Upload was stored under the key
func (v Values) HasFile(key string) bool {
	switch v[key].(type) {
	case *Upload:
		return true
	case []*Upload:
		return true
	default:
		return false
	}
}

// File returns the upload stored under the key
func (v Values) File(key string) (*Upload, error) {
	switch upload := v[key].(type) {
	case *Upload:
		return upload, nil
	case []*Upload:
		if len(upload) > 0 {
			return upload[0], nil
		}
	}
	return nil, fmt.Errorf("no file uploaded for field %s", key)
}

// Files returns the uploads stored under the key
func (v Values) Files(key string) ([]*Upload, error) {
	switch upload := v[key].(type) {
	case *Upload:
		return []*Upload{upload}, nil
	case []*Upload:
		return upload, nil
	}
	return nil, fmt.Errorf("no files uploaded for field %s", key)
}

// Stringify coerces an input value to its string form
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Truthy coerces an input value to a bool the way HTML forms and JSON
// payloads express booleans ("1", "true", "on", 1, true).
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "1", "true", "on", "yes":
			return true
		}
		return false
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}
