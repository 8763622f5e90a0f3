// Package ingress parses an inbound leave submission into a flat field map
// plus at most one attachment. It is a pure parse: nothing is validated
// beyond size limits and the shape of the body.
package ingress

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aanand-mishra/leave-mailer/internal/types"
)

const (
	// FileField is the only form field allowed to carry a file.
	FileField = "proofFile"

	// DefaultMaxFileSize is the attachment size limit (5 MiB).
	DefaultMaxFileSize int64 = 5 << 20

	// DefaultMaxFieldSize bounds a single text field value (1 MiB).
	DefaultMaxFieldSize int64 = 1 << 20

	// bodyOverhead is allowed on top of the file for text fields and
	// multipart framing before the whole body is rejected.
	bodyOverhead int64 = 2 << 20
)

var (
	// ErrFileTooLarge means the attachment exceeded the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrBodyTooLarge means the request body as a whole exceeded its limit.
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrUnexpectedFile means a file arrived under a field other than
	// proofFile, or more than one file was sent.
	ErrUnexpectedFile = errors.New("unexpected file field")

	// ErrUnsupportedContentType means the body is neither multipart nor JSON.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrMalformedBody wraps every other parse failure.
	ErrMalformedBody = errors.New("malformed request body")
)

// Form is the parsed submission.
type Form struct {
	Fields     types.Fields
	Attachment *types.Attachment // nil when no file was sent
}

// Parser turns request bodies into Forms. The zero value is not usable;
// call NewParser.
type Parser struct {
	MaxFileSize  int64
	MaxFieldSize int64
}

// NewParser returns a Parser with the default limits.
func NewParser() *Parser {
	return &Parser{
		MaxFileSize:  DefaultMaxFileSize,
		MaxFieldSize: DefaultMaxFieldSize,
	}
}

// Parse reads r's body according to its Content-Type. w is used only to
// signal the server to close the connection when the body is cut short.
func (p *Parser) Parse(w http.ResponseWriter, r *http.Request) (*Form, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return nil, fmt.Errorf("%w: missing Content-Type", ErrUnsupportedContentType)
	}

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	body := http.MaxBytesReader(w, r.Body, p.MaxFileSize+bodyOverhead)

	switch mediaType {
	case "multipart/form-data":
		return p.parseMultipart(body, params["boundary"])
	case "application/json":
		return p.parseJSON(body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, mediaType)
	}
}

func (p *Parser) parseMultipart(body io.Reader, boundary string) (*Form, error) {
	if boundary == "" {
		return nil, fmt.Errorf("%w: multipart boundary not found", ErrMalformedBody)
	}

	form := &Form{Fields: types.Fields{}}
	mr := multipart.NewReader(body, boundary)

	for {
		part, err := mr.NextPart()
		// NextPart wraps io.EOF when the body is truncated; only the bare
		// sentinel marks the closing boundary.
		if err == io.EOF { //nolint:errorlint
			break
		}
		if err != nil {
			return nil, classify(err)
		}

		if err := p.readPart(form, part); err != nil {
			part.Close()
			return nil, err
		}
		part.Close()
	}

	return form, nil
}

func (p *Parser) readPart(form *Form, part *multipart.Part) error {
	name := part.FormName()
	if name == "" {
		return nil
	}

	filename, isFile := fileName(part)
	if !isFile {
		value, err := readLimited(part, p.MaxFieldSize)
		if errors.Is(err, errLimit) {
			return fmt.Errorf("%w: field %q value too long", ErrMalformedBody, name)
		}
		if err != nil {
			return classify(err)
		}
		// First occurrence wins for repeated fields.
		if _, seen := form.Fields[name]; !seen {
			form.Fields[name] = string(value)
		}
		return nil
	}

	if name != FileField || form.Attachment != nil {
		return fmt.Errorf("%w: %s", ErrUnexpectedFile, name)
	}

	content, err := readLimited(part, p.MaxFileSize)
	if errors.Is(err, errLimit) {
		return ErrFileTooLarge
	}
	if err != nil {
		return classify(err)
	}

	// An empty file input submits filename="" and no bytes.
	if filename == "" && len(content) == 0 {
		return nil
	}

	form.Attachment = &types.Attachment{
		Filename:    filename,
		ContentType: contentType(part.Header.Get("Content-Type"), content),
		Content:     content,
	}
	return nil
}

func (p *Parser) parseJSON(body io.Reader) (*Form, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	err := dec.Decode(&raw)
	if errors.Is(err, io.EOF) {
		return &Form{Fields: types.Fields{}}, nil
	}
	if err != nil {
		return nil, classify(err)
	}

	fields := make(types.Fields, len(raw))
	for k, v := range raw {
		if s, ok := jsonField(k, v); ok {
			fields[k] = s
		}
	}

	return &Form{Fields: fields}, nil
}

// jsonField renders a decoded JSON value as a form field. Falsy scalars
// (false, 0) and nested objects, arrays or nulls count as absent, so they
// fail a required check. bedRestSuggested keeps its JSON type: only a
// string survives, which keeps a boolean true from enabling bed rest.
func jsonField(name string, v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		if name == types.FieldBedRestSuggested {
			return "", false
		}
		if f, err := val.Float64(); err == nil && f == 0 {
			return "", false
		}
		return val.String(), true
	case bool:
		if !val || name == types.FieldBedRestSuggested {
			return "", false
		}
		return "true", true
	default:
		return "", false
	}
}

// fileName reports whether the part is a file upload. A part is a file when
// its Content-Disposition carries a filename parameter, even an empty one.
func fileName(part *multipart.Part) (string, bool) {
	if fn := part.FileName(); fn != "" {
		return fn, true
	}
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	_, ok := params["filename"]
	return "", ok
}

// contentType keeps a specific declared type and sniffs the bytes otherwise.
func contentType(declared string, content []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(content).String()
}

var errLimit = errors.New("limit exceeded")

// readLimited reads at most limit bytes and fails with errLimit if more
// remain.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errLimit
	}
	return data, nil
}

func classify(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: %w", ErrMalformedBody, err)
}
