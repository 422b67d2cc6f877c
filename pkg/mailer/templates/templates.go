package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	VerifyOTP     = "verify_otp"
	TempPassword  = "temp_password"
	ResetPassword = "reset_password"
	Support       = "support"
)

// EmailData defines the fields the DiaryFi email templates render.
type EmailData struct {
	Name    string `json:"Name"`
	Email   string `json:"Email"`
	AppName string `json:"AppName"`

	// Code carries the OTP or the temporary password.
	Code string `json:"Code"`

	// ResetURL is the password reset/setup link.
	ResetURL string `json:"ResetURL"`

	ExpiresInText string `json:"ExpiresInText"`

	// Subject and Message carry a user's support request.
	Subject string `json:"Subject"`
	Message string `json:"Message"`
}

// Option pattern for building template data.
type Option func(*EmailData)

func WithCode(code string) Option    { return func(d *EmailData) { d.Code = code } }
func WithResetURL(u string) Option   { return func(d *EmailData) { d.ResetURL = u } }
func WithSubject(s string) Option    { return func(d *EmailData) { d.Subject = s } }
func WithMessage(m string) Option    { return func(d *EmailData) { d.Message = m } }
func WithExpiresIn(in time.Duration) Option {
	return func(d *EmailData) {
		if in >= time.Hour {
			d.ExpiresInText = fmt.Sprintf("%d hour(s)", int(in.Hours()))
			return
		}
		d.ExpiresInText = fmt.Sprintf("%d minutes", int(in.Minutes()))
	}
}

func NewEmailData(appName, name, email string, opts ...Option) EmailData {
	d := EmailData{AppName: appName, Name: name, Email: email}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// renderFile loads and renders a single template file from the embedded FS.
// isHTML indicates whether to use html/template (true) or text/template (false).
func renderFile(filename string, isHTML bool, data any) (string, error) {
	var (
		buf bytes.Buffer
		err error
	)

	if isHTML {
		tpl, e := htmpl.New(filename).ParseFS(FS, filename)
		if e != nil {
			return "", fmt.Errorf("parse html %q: %w", filename, e)
		}
		err = tpl.Execute(&buf, data)
	} else {
		tpl, e := texttpl.New(filename).ParseFS(FS, filename)
		if e != nil {
			return "", fmt.Errorf("parse text %q: %w", filename, e)
		}
		err = tpl.Execute(&buf, data)
	}
	if err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render loads and renders subject, text, and html templates for the given base name.
// Expects: <name>.subject.tmpl, <name>.text.tmpl, <name>.html.tmpl
func Render(name string, data any) (subject string, text string, html string, err error) {
	subject, err = renderFile(name+".subject.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	text, err = renderFile(name+".text.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderFile(name+".html.tmpl", true, data)
	if err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}
