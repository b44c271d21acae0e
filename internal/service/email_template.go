package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const (
	EmailStatusApproved = "approved"
	EmailStatusSelected = "selected"
	EmailStatusRejected = "rejected"
)

type EmailTemplateData struct {
	CandidateName string
	JobTitle      string
	CompanyName   string
	Status        string // approved, selected or rejected; empty means approved
}

const emailLayout = `<!DOCTYPE html>
<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background-color: #f8f9fa; padding: 20px; text-align: center; }
      .content { padding: 20px; }
      .footer { text-align: center; padding: 20px; font-size: 12px; color: #666; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <h2>{{template "heading" .}}</h2>
      </div>
      <div class="content">
        <p>Dear {{.CandidateName}},</p>
        {{template "body" .}}
        <p>Best regards,<br/>{{.CompanyName}} Hiring Team</p>
      </div>
      <div class="footer">
        <p>This is an automated message from Hiremind. Please do not reply to this email.</p>
      </div>
    </div>
  </body>
</html>
`

var emailBodies = map[string]string{
	EmailStatusApproved: `{{define "heading"}}Interview Invitation{{end}}
{{define "body"}}<p>We are pleased to inform you that your application for the <strong>{{.JobTitle}}</strong> position at <strong>{{.CompanyName}}</strong> has been approved for the next stage.</p>
        <p>Our hiring team will contact you shortly with the interview details including:</p>
        <ul>
          <li>Interview date and time</li>
          <li>Interview format (in-person/virtual)</li>
          <li>Any preparation materials or requirements</li>
        </ul>
        <p>Please ensure your contact information is up to date in your profile.</p>{{end}}`,

	EmailStatusSelected: `{{define "heading"}}🎉 Congratulations!{{end}}
{{define "body"}}<p>We are delighted to inform you that you have been selected for the position of <strong>{{.JobTitle}}</strong> at <strong>{{.CompanyName}}</strong>!</p>
        <p>This is a testament to your skills, experience, and the great impression you made during the interview process.</p>
        <p>Our HR team will be reaching out to you shortly with:</p>
        <ul>
          <li>Official offer letter</li>
          <li>Compensation details</li>
          <li>Next steps for onboarding</li>
        </ul>
        <p>Once again, congratulations on your selection!</p>{{end}}`,

	EmailStatusRejected: `{{define "heading"}}Application Status Update{{end}}
{{define "body"}}<p>Thank you for your interest in the <strong>{{.JobTitle}}</strong> position at <strong>{{.CompanyName}}</strong> and for taking the time to participate in our selection process.</p>
        <p>After careful consideration of your application and the requirements of the role, we regret to inform you that we have decided to move forward with other candidates whose qualifications more closely match our current needs.</p>
        <p>We encourage you to:</p>
        <ul>
          <li>Continue exploring other opportunities on our platform</li>
          <li>Update your profile with new skills and experiences</li>
          <li>Set up job alerts for similar positions</li>
        </ul>
        <p>We wish you the best in your job search and future endeavors.</p>{{end}}`,
}

var emailTemplates = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(emailBodies))
	for status, body := range emailBodies {
		t := template.Must(template.New("layout").Parse(emailLayout))
		out[status] = template.Must(t.Parse(body))
	}
	return out
}()

func emailSubject(status, jobTitle, companyName string) string {
	switch status {
	case EmailStatusSelected:
		return fmt.Sprintf("Congratulations! You've been selected for %s at %s", jobTitle, companyName)
	case EmailStatusRejected:
		return fmt.Sprintf("Update on your application for %s at %s", jobTitle, companyName)
	default:
		return fmt.Sprintf("Interview Invitation: %s at %s", jobTitle, companyName)
	}
}

// RenderEmail returns the subject and HTML body for an application status email.
func RenderEmail(data EmailTemplateData) (subject string, html string, err error) {
	status := strings.ToLower(strings.TrimSpace(data.Status))
	if status == "" {
		status = EmailStatusApproved
	}

	tmpl, ok := emailTemplates[status]
	if !ok {
		return "", "", fmt.Errorf("unknown email status %q", data.Status)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s email: %w", status, err)
	}

	return emailSubject(status, data.JobTitle, data.CompanyName), buf.String(), nil
}
