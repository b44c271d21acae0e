package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmail(t *testing.T) {
	tests := []struct {
		status      string
		wantSubject string
		wantBody    string
	}{
		{
			status:      EmailStatusRejected,
			wantSubject: "Update on your application for Backend Engineer at Acme",
			wantBody:    "we have decided to move forward with other candidates",
		},
		{
			status:      EmailStatusSelected,
			wantSubject: "Congratulations! You've been selected for Backend Engineer at Acme",
			wantBody:    "you have been selected for the position of <strong>Backend Engineer</strong> at <strong>Acme</strong>",
		},
		{
			status:      "",
			wantSubject: "Interview Invitation: Backend Engineer at Acme",
			wantBody:    "has been approved for the next stage",
		},
		{
			status:      " Approved ",
			wantSubject: "Interview Invitation: Backend Engineer at Acme",
			wantBody:    "Interview Invitation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			subject, html, err := RenderEmail(EmailTemplateData{
				CandidateName: "Ada",
				JobTitle:      "Backend Engineer",
				CompanyName:   "Acme",
				Status:        tt.status,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
			assert.Contains(t, html, tt.wantBody)
			assert.Contains(t, html, "Ada")
		})
	}
}

func TestRenderEmailEscapesInput(t *testing.T) {
	_, html, err := RenderEmail(EmailTemplateData{
		CandidateName: "<script>alert(1)</script>",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme",
		Status:        EmailStatusRejected,
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderEmailEntityEncodesPunctuation(t *testing.T) {
	subject, html, err := RenderEmail(EmailTemplateData{
		CandidateName: "Conan O'Brien",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Smith & Sons",
		Status:        EmailStatusSelected,
	})
	require.NoError(t, err)

	// The subject is a plain header value; the body is HTML.
	assert.Equal(t, "Congratulations! You've been selected for Backend Engineer at Smith & Sons", subject)
	assert.Contains(t, html, "Conan O&#39;Brien")
	assert.Contains(t, html, "Smith &amp; Sons")
	assert.NotContains(t, html, "O'Brien")
}

func TestRenderEmailUnknownStatus(t *testing.T) {
	_, _, err := RenderEmail(EmailTemplateData{JobTitle: "Backend Engineer", CompanyName: "Acme", Status: "ghosted"})
	assert.ErrorContains(t, err, `unknown email status "ghosted"`)
}
