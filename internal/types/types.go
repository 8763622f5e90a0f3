// Package types holds the transient value objects built from one inbound
// leave submission. Nothing here outlives the request that created it:
// handlers decode a Fields map into one of the request variants, the
// composer turns it into an email, and the value is dropped.
//
// Keeping the variants in one place prevents import cycles: ingress,
// handlers, and the notification composer all import types without
// depending on each other.
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultAttachmentName is used when the uploaded file carries no filename.
const DefaultAttachmentName = "supporting_document"

// FieldBedRestSuggested is compared as a string, never coerced: only the
// text "true" enables the bed-rest block.
const FieldBedRestSuggested = "bedRestSuggested"

// ErrMissingFields is returned by Decode when any required field of the
// request variant is absent or empty.
var ErrMissingFields = errors.New("missing required fields")

// Kind tags which of the three leave notifications a request describes.
type Kind string

const (
	KindRegular        Kind = "regular"
	KindMedical        Kind = "medical"
	KindStatusDecision Kind = "status"
)

// Fields is the flat name → value mapping produced by the ingress layer.
// Absent and empty fields are indistinguishable on purpose: both fail a
// "required" check.
type Fields map[string]string

// Get returns the value for name, or "" when the field was not submitted.
func (f Fields) Get(name string) string {
	return f[name]
}

// Request is implemented by every decoded leave variant.
type Request interface {
	Kind() Kind
}

// ─────────────────────────────────────────────────────────────────────────────
// Struct tags serve two purposes:
//
//  1. json:"..."     — the form/JSON field name the value is read from.
//  2. validate:"..." — rules checked by go-playground/validator.
//     "required" means the string must be non-empty.
// ─────────────────────────────────────────────────────────────────────────────

// LeaveRequest is a regular leave application addressed to a faculty member.
type LeaveRequest struct {
	Name         string `json:"name"         validate:"required"`
	Email        string `json:"email"        validate:"required"`
	FacultyEmail string `json:"facultyEmail" validate:"required"`
	Reason       string `json:"reason"       validate:"required"`
	StartDate    string `json:"startDate"    validate:"required"`
	EndDate      string `json:"endDate"      validate:"required"`
	Duration     string `json:"duration"     validate:"required"`
}

func (LeaveRequest) Kind() Kind { return KindRegular }

// MedicalLeaveRequest is a leave application backed by a medical
// recommendation. Reason and the bed-rest fields are optional.
type MedicalLeaveRequest struct {
	Name         string `json:"name"         validate:"required"`
	Email        string `json:"email"        validate:"required"`
	FacultyEmail string `json:"facultyEmail" validate:"required"`
	ParentEmail  string `json:"parentEmail"  validate:"required"`
	Reason       string `json:"reason"`
	StartDate    string `json:"startDate"    validate:"required"`
	EndDate      string `json:"endDate"      validate:"required"`
	Duration     string `json:"duration"     validate:"required"`

	BedRestSuggested string `json:"bedRestSuggested"`
	BedRestDays      string `json:"bedRestDays"`
	BedRestStartDate string `json:"bedRestStartDate"`
	BedRestEndDate   string `json:"bedRestEndDate"`
}

func (MedicalLeaveRequest) Kind() Kind { return KindMedical }

// BedRest reports whether the bed-rest block applies. Only the literal
// string "true" counts; "yes", "1" or "True" do not.
func (m MedicalLeaveRequest) BedRest() bool {
	return m.BedRestSuggested == "true"
}

// Status values that trigger templated wording. Anything else is accepted
// and rendered without a status sentence.
const (
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// StatusDecisionRequest carries the faculty's decision back to the student
// and their parent.
type StatusDecisionRequest struct {
	Name         string `json:"name"         validate:"required"`
	Email        string `json:"email"        validate:"required"`
	FacultyEmail string `json:"facultyEmail" validate:"required"`
	ParentEmail  string `json:"parentEmail"  validate:"required"`
	Reason       string `json:"reason"       validate:"required"`
	StartDate    string `json:"startDate"    validate:"required"`
	EndDate      string `json:"endDate"      validate:"required"`
	Duration     string `json:"duration"     validate:"required"`
	Status       string `json:"status"       validate:"required"`
}

func (StatusDecisionRequest) Kind() Kind { return KindStatusDecision }

// Attachment is the single optional proof document of a submission.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Name returns the filename to use on the outbound message.
func (a *Attachment) Name() string {
	if a.Filename == "" {
		return DefaultAttachmentName
	}
	return a.Filename
}

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report the wire name ("facultyEmail") instead of the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Decode builds the request variant for kind from f and validates it.
// Missing fields yield an error wrapping ErrMissingFields that names them.
func Decode(kind Kind, f Fields) (Request, error) {
	var req Request

	switch kind {
	case KindRegular:
		req = LeaveRequest{
			Name:         f.Get("name"),
			Email:        f.Get("email"),
			FacultyEmail: f.Get("facultyEmail"),
			Reason:       f.Get("reason"),
			StartDate:    f.Get("startDate"),
			EndDate:      f.Get("endDate"),
			Duration:     f.Get("duration"),
		}
	case KindMedical:
		req = MedicalLeaveRequest{
			Name:             f.Get("name"),
			Email:            f.Get("email"),
			FacultyEmail:     f.Get("facultyEmail"),
			ParentEmail:      f.Get("parentEmail"),
			Reason:           f.Get("reason"),
			StartDate:        f.Get("startDate"),
			EndDate:          f.Get("endDate"),
			Duration:         f.Get("duration"),
			BedRestSuggested: f.Get(FieldBedRestSuggested),
			BedRestDays:      f.Get("bedRestDays"),
			BedRestStartDate: f.Get("bedRestStartDate"),
			BedRestEndDate:   f.Get("bedRestEndDate"),
		}
	case KindStatusDecision:
		req = StatusDecisionRequest{
			Name:         f.Get("name"),
			Email:        f.Get("email"),
			FacultyEmail: f.Get("facultyEmail"),
			ParentEmail:  f.Get("parentEmail"),
			Reason:       f.Get("reason"),
			StartDate:    f.Get("startDate"),
			EndDate:      f.Get("endDate"),
			Duration:     f.Get("duration"),
			Status:       f.Get("status"),
		}
	default:
		return nil, fmt.Errorf("types.Decode: unknown kind %q", kind)
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("types.Decode: %w", err)
		}
		missing := make([]string, 0, len(verrs))
		for _, e := range verrs {
			missing = append(missing, e.Field())
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	return req, nil
}
