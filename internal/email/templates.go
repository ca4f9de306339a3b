package email

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// LifecycleTemplate is an account-lifecycle email body. These are sent
// through the system path before a session exists, so they carry no
// user lineage.
type LifecycleTemplate interface {
	Subject() string
	HTML() (string, error)
}

// VerificationEmail asks a new account holder to confirm their address.
type VerificationEmail struct {
	Name      string
	VerifyURL string
	ExpiresAt time.Time
}

func (e VerificationEmail) Subject() string {
	return "Verify Your Email Address"
}

func (e VerificationEmail) HTML() (string, error) {
	return renderLifecycle(verificationTmpl, e)
}

// WelcomeEmail greets a newly verified account.
type WelcomeEmail struct {
	Name     string
	LoginURL string
}

func (e WelcomeEmail) Subject() string {
	return "Welcome Aboard"
}

func (e WelcomeEmail) HTML() (string, error) {
	return renderLifecycle(welcomeTmpl, e)
}

// PasswordResetEmail carries a reset link.
type PasswordResetEmail struct {
	Name      string
	ResetURL  string
	ExpiresAt time.Time
}

func (e PasswordResetEmail) Subject() string {
	return "Reset Your Password"
}

func (e PasswordResetEmail) HTML() (string, error) {
	return renderLifecycle(resetTmpl, e)
}

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`
<div>
	<h2>Verify your email</h2>
	<p>Hi {{.Name}},</p>
	<p>Please confirm your email address by clicking the link below.</p>
	<p><a href="{{.VerifyURL}}">Verify email address</a></p>
	<p>This link expires at {{.ExpiresAt.Format "Jan 2, 2006 15:04 MST"}}.</p>
	<p>If you did not create an account, you can ignore this message.</p>
</div>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`
<div>
	<h2>Welcome, {{.Name}}!</h2>
	<p>Your account is ready.</p>
	<p><a href="{{.LoginURL}}">Sign in</a> to get started.</p>
</div>`))

	resetTmpl = template.Must(template.New("reset").Parse(`
<div>
	<h2>Reset your password</h2>
	<p>Hi {{.Name}},</p>
	<p><a href="{{.ResetURL}}">Click here to choose a new password.</a></p>
	<p>This link expires at {{.ExpiresAt.Format "Jan 2, 2006 15:04 MST"}}.</p>
	<p>If you did not request a reset, you can ignore this message.</p>
</div>`))
)

func renderLifecycle(tmpl *template.Template, data interface{}) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// PlainTextFromHTML creates a simple plain text version from HTML, for
// the text/plain alternative of multipart sends.
func PlainTextFromHTML(html string) string {
	text := html

	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = strings.ReplaceAll(text, "<br />", "\n")
	text = strings.ReplaceAll(text, "</p>", "\n\n")
	text = strings.ReplaceAll(text, "</div>", "\n")
	text = strings.ReplaceAll(text, "</h1>", "\n\n")
	text = strings.ReplaceAll(text, "</h2>", "\n\n")
	text = strings.ReplaceAll(text, "</h3>", "\n\n")

	for strings.Contains(text, "<") && strings.Contains(text, ">") {
		start := strings.Index(text, "<")
		end := strings.Index(text, ">")
		if start >= 0 && end > start {
			text = text[:start] + text[end+1:]
		} else {
			break
		}
	}

	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	text = strings.ReplaceAll(text, "&#34;", "\"")
	text = strings.ReplaceAll(text, "&#39;", "'")

	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
