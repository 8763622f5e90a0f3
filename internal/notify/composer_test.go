package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/leave-mailer/internal/types"
)

func leave() types.LeaveRequest {
	return types.LeaveRequest{
		Name:         "Asha",
		Email:        "a@x.edu",
		FacultyEmail: "f@x.edu",
		Reason:       "fever",
		StartDate:    "2024-03-01",
		EndDate:      "2024-03-03",
		Duration:     "3",
	}
}

func medical() types.MedicalLeaveRequest {
	return types.MedicalLeaveRequest{
		Name:         "Asha",
		Email:        "a@x.edu",
		FacultyEmail: "f@x.edu",
		ParentEmail:  "p@x.edu",
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-05",
		Duration:     "5",
	}
}

func decision(status string) types.StatusDecisionRequest {
	return types.StatusDecisionRequest{
		Name:         "Asha",
		Email:        "a@x.edu",
		FacultyEmail: "f@x.edu",
		ParentEmail:  "p@x.edu",
		Reason:       "fever",
		StartDate:    "2024-03-01",
		EndDate:      "2024-03-03",
		Duration:     "3",
		Status:       status,
	}
}

func TestCompose_Regular(t *testing.T) {
	t.Parallel()

	c := NewComposer("leave.bot@gmail.com")
	msg, err := c.Compose(leave(), nil)
	require.NoError(t, err)

	assert.Equal(t, "leave.bot@gmail.com", msg.From)
	assert.Equal(t, "f@x.edu", msg.To)
	assert.Equal(t, "Leave Application from Asha", msg.Subject)
	assert.Contains(t, msg.HTML, "<p><strong>Student Name:</strong> Asha</p>")
	assert.Contains(t, msg.HTML, "<p><strong>Student Email:</strong> a@x.edu</p>")
	assert.Contains(t, msg.HTML, "<p><strong>Leave Period:</strong> 3/1/2024 to 3/3/2024</p>")
	assert.Contains(t, msg.HTML, "<p><strong>Duration:</strong> 3 days</p>")
	assert.Contains(t, msg.HTML, "<p><strong>Reason:</strong> fever</p>")
	assert.Contains(t, msg.HTML, "Kindly review and process the leave request.")
	assert.NotContains(t, msg.HTML, "Supporting Document")
	assert.Empty(t, msg.Attachments)
}

func TestCompose_Attachment(t *testing.T) {
	t.Parallel()

	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}
	c := NewComposer("leave.bot@gmail.com")

	msg, err := c.Compose(leave(), &types.Attachment{
		Filename:    "certificate.pdf",
		ContentType: "application/pdf",
		Content:     content,
	})
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "<p><strong>Supporting Document:</strong> Attached</p>")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "certificate.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, content, msg.Attachments[0].Content)

	msg, err = c.Compose(medical(), &types.Attachment{Content: content})
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, types.DefaultAttachmentName, msg.Attachments[0].Filename)
}

func TestCompose_MedicalBedRest(t *testing.T) {
	t.Parallel()

	r := medical()
	r.BedRestSuggested = "true"
	r.BedRestDays = "3"
	r.BedRestStartDate = "2024-01-01"
	r.BedRestEndDate = "2024-01-04"

	msg, err := NewComposer("bot@x.edu").Compose(r, nil)
	require.NoError(t, err)

	assert.Equal(t, "f@x.edu, a@x.edu, p@x.edu", msg.To)
	assert.Equal(t, "Medical Leave Application from Asha", msg.Subject)
	assert.Contains(t, msg.HTML, "<p><strong>Bed Rest Suggested:</strong> Yes</p>")
	assert.Contains(t, msg.HTML, "3 days")
	assert.Contains(t, msg.HTML, "<p><strong>Bed Rest Start Date:</strong> 1/1/2024</p>")
	assert.Contains(t, msg.HTML, "<p><strong>Bed Rest End Date:</strong> 1/4/2024</p>")
	assert.NotContains(t, msg.HTML, "Bed Rest Suggested:</strong> No")
}

func TestCompose_MedicalBedRestMissingDates(t *testing.T) {
	t.Parallel()

	r := medical()
	r.BedRestSuggested = "true"
	r.BedRestDays = "2"

	msg, err := NewComposer("bot@x.edu").Compose(r, nil)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "<p><strong>Bed Rest Start Date:</strong> N/A</p>")
	assert.Contains(t, msg.HTML, "<p><strong>Bed Rest End Date:</strong> N/A</p>")
}

func TestCompose_MedicalNoBedRest(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "false", "True", "yes"} {
		r := medical()
		r.BedRestSuggested = value
		r.BedRestDays = "3"
		r.BedRestStartDate = "2024-01-01"

		msg, err := NewComposer("bot@x.edu").Compose(r, nil)
		require.NoError(t, err)
		assert.Contains(t, msg.HTML, "Bed Rest Suggested:</strong> No", "bedRestSuggested=%q", value)
		assert.NotContains(t, msg.HTML, "Total Bed Rest Days")
		assert.NotContains(t, msg.HTML, "Bed Rest Start Date")
	}
}

func TestCompose_StatusDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  string
		want    string
		notWant []string
	}{
		{
			status:  types.StatusApproved,
			want:    "Your leave request has been approved by the administration.",
			notWant: []string{"denied"},
		},
		{
			status:  types.StatusRejected,
			want:    "Your leave request has been denied. Please contact your faculty for more details.",
			notWant: []string{"approved by the administration"},
		},
		{
			status:  "Pending",
			want:    "<p><strong>Reason:</strong> fever</p>",
			notWant: []string{"approved by the administration", "denied", "<strong>Status:</strong>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			t.Parallel()

			msg, err := NewComposer("bot@x.edu").Compose(decision(tt.status), nil)
			require.NoError(t, err)

			assert.Equal(t, "a@x.edu, p@x.edu", msg.To)
			assert.Equal(t, "Leave Application "+tt.status+" - Asha", msg.Subject)
			assert.Contains(t, msg.HTML, tt.want)
			assert.Contains(t, msg.HTML, "reach out to the faculty coordinator at f@x.edu.")
			for _, s := range tt.notWant {
				assert.NotContains(t, msg.HTML, s)
			}
		})
	}
}

func TestCompose_SanitizesUserInput(t *testing.T) {
	t.Parallel()

	r := leave()
	r.Name = `Asha<script>alert(1)</script>`
	r.Reason = "fever & cough"

	msg, err := NewComposer("bot@x.edu").Compose(r, nil)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "fever &amp; cough")
}

func TestCompose_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := NewComposer("bot@x.edu").Compose(nil, nil)
	require.Error(t, err)
}

func TestSuccessMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Leave application submitted successfully and email sent!", SuccessMessage(leave()))
	assert.Equal(t, "Leave application submitted successfully and email sent!", SuccessMessage(medical()))
	assert.Equal(t, "Leave approved successfully and email sent to Student & Parent!", SuccessMessage(decision("Approved")))
	assert.Contains(t, SuccessMessage(decision("Rejected")), "rejected")
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"2024-03-01":                "3/1/2024",
		"2024-12-25":                "12/25/2024",
		"2024-03-01T10:30:00Z":      "3/1/2024",
		"2024-03-01T23:30:00+05:30": "3/1/2024",
		"2024-03-01T10:30":          "3/1/2024",
		" 2024-03-01 ":              "3/1/2024",
		"2024/03/01":                "3/1/2024",
		"2024-3-1":                  "3/1/2024",
		"03/01/2024":                "3/1/2024",
		"3/1/2024":                  "3/1/2024",
		"March 4, 2024":             "3/4/2024",
		"Mar 4, 2024":               "3/4/2024",
		"4 March 2024":              "3/4/2024",
		"2024-02-30":                "3/1/2024",
		"2023-12-31":                "12/31/2023",
		"02/30/2024":                "3/1/2024",
		"2024-02-32":                InvalidDate,
		"2024-13-01":                InvalidDate,
		"13/01/2024":                InvalidDate,
		"tomorrow":                  InvalidDate,
		"":                          InvalidDate,
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDate(in), "input %q", in)
	}
}
