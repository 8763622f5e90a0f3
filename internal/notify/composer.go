// Package notify turns a decoded leave request into an outbound email:
// recipients, subject, HTML body and the optional proof document.
//
// All three request kinds share one Composer. Each kind contributes only
// what differs: its recipient formula, subject line, body steps and the
// confirmation text returned to the caller.
package notify

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/aanand-mishra/leave-mailer/internal/mail"
	"github.com/aanand-mishra/leave-mailer/internal/types"
)

// NotApplicable stands in for an absent bed-rest date.
const NotApplicable = "N/A"

const (
	closingReview    = "Kindly review and process the leave request."
	submittedSuccess = "Leave application submitted successfully and email sent!"
)

// Composer builds mail.Message values. It is safe for concurrent use.
type Composer struct {
	from   string
	policy *bluemonday.Policy
}

// NewComposer returns a Composer that sends as from.
func NewComposer(from string) *Composer {
	return &Composer{
		from:   from,
		policy: bluemonday.StrictPolicy(),
	}
}

// Compose renders req into a message. att may be nil.
func (c *Composer) Compose(req types.Request, att *types.Attachment) (mail.Message, error) {
	b := &body{policy: c.policy}
	hasFile := att != nil

	var msg mail.Message
	switch r := req.(type) {
	case types.LeaveRequest:
		msg = c.regular(b, r, hasFile)
	case types.MedicalLeaveRequest:
		msg = c.medical(b, r, hasFile)
	case types.StatusDecisionRequest:
		msg = c.statusDecision(b, r)
	default:
		return mail.Message{}, fmt.Errorf("notify.Compose: unsupported request %T", req)
	}

	msg.From = c.from
	msg.HTML = b.String()

	if hasFile {
		msg.Attachments = []mail.Attachment{{
			Filename:    att.Name(),
			ContentType: att.ContentType,
			Content:     att.Content,
		}}
	}

	return msg, nil
}

func (c *Composer) regular(b *body, r types.LeaveRequest, hasFile bool) mail.Message {
	b.field("Student Name", r.Name)
	b.field("Student Email", r.Email)
	b.period(r.StartDate, r.EndDate)
	b.days("Duration", r.Duration)
	b.field("Reason", r.Reason)
	b.attachmentNotice(hasFile)
	b.line(closingReview)

	return mail.Message{
		To:      r.FacultyEmail,
		Subject: "Leave Application from " + r.Name,
	}
}

func (c *Composer) medical(b *body, r types.MedicalLeaveRequest, hasFile bool) mail.Message {
	b.field("Student Name", r.Name)
	b.field("Student Email", r.Email)
	b.period(r.StartDate, r.EndDate)
	b.days("Duration", r.Duration)

	if r.BedRest() {
		b.raw("Bed Rest Suggested", "Yes")
		b.days("Total Bed Rest Days", r.BedRestDays)
		b.raw("Bed Rest Start Date", formatOptionalDate(r.BedRestStartDate))
		b.raw("Bed Rest End Date", formatOptionalDate(r.BedRestEndDate))
	} else {
		b.raw("Bed Rest Suggested", "No")
	}

	b.attachmentNotice(hasFile)
	b.line(closingReview)

	return mail.Message{
		To:      joinRecipients(r.FacultyEmail, r.Email, r.ParentEmail),
		Subject: "Medical Leave Application from " + r.Name,
	}
}

func (c *Composer) statusDecision(b *body, r types.StatusDecisionRequest) mail.Message {
	b.field("Student Name", r.Name)
	b.field("Student Email", r.Email)
	b.period(r.StartDate, r.EndDate)
	b.field("Reason", r.Reason)
	b.days("Duration", r.Duration)

	// Unrecognised status values get no templated sentence.
	switch r.Status {
	case types.StatusApproved:
		b.raw("Status", "✅ Approved")
		b.line("Your leave request has been approved by the administration.")
	case types.StatusRejected:
		b.raw("Status", "❌ Rejected")
		b.line("Your leave request has been denied. Please contact your faculty for more details.")
	}

	b.line("If you have any questions, please reach out to the faculty coordinator at " + b.clean(r.FacultyEmail) + ".")

	return mail.Message{
		To:      joinRecipients(r.Email, r.ParentEmail),
		Subject: fmt.Sprintf("Leave Application %s - %s", r.Status, r.Name),
	}
}

// SuccessMessage is the confirmation returned to the submitter once the
// message was handed to the transport.
func SuccessMessage(req types.Request) string {
	if r, ok := req.(types.StatusDecisionRequest); ok {
		return fmt.Sprintf("Leave %s successfully and email sent to Student & Parent!", strings.ToLower(r.Status))
	}
	return submittedSuccess
}

// joinRecipients builds the single combined To value.
func joinRecipients(addrs ...string) string {
	return strings.Join(addrs, ", ")
}

// body accumulates HTML paragraphs. Every user-supplied value passes
// through the strict policy, so submitted markup is stripped and the rest
// is escaped.
type body struct {
	sb     strings.Builder
	policy *bluemonday.Policy
}

func (b *body) clean(s string) string {
	return b.policy.Sanitize(s)
}

// raw writes a labelled value that is already safe HTML.
func (b *body) raw(label, value string) {
	fmt.Fprintf(&b.sb, "<p><strong>%s:</strong> %s</p>\n", label, value)
}

func (b *body) field(label, value string) {
	b.raw(label, b.clean(value))
}

func (b *body) days(label, value string) {
	b.raw(label, b.clean(value)+" days")
}

func (b *body) period(start, end string) {
	b.raw("Leave Period", FormatDate(start)+" to "+FormatDate(end))
}

func (b *body) attachmentNotice(hasFile bool) {
	if hasFile {
		b.raw("Supporting Document", "Attached")
	}
}

func (b *body) line(text string) {
	fmt.Fprintf(&b.sb, "<p>%s</p>\n", text)
}

func (b *body) String() string {
	return b.sb.String()
}
