package notification

import (
	"bytes"
	"html/template"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #f4f4f4; padding: 24px;">
<div style="max-width: 560px; margin: 0 auto; background: #ffffff; padding: 24px; border-radius: 8px;">
<h2 style="color: #d35400;">{{.App}}</h2>
{{template "content" .}}
<p style="color: #888888; font-size: 12px;">You are receiving this e-mail because of activity on your {{.App}} account.</p>
</div>
</body>
</html>{{end}}`

var emailTemplates = map[Kind]string{
	KindVerification: `{{define "content"}}<p>Thanks for signing up. Use the code below to verify your e-mail address.</p>
<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
<p>The code expires in 24 hours.</p>{{end}}`,

	KindWelcome: `{{define "content"}}<p>Hi {{.Name}},</p>
<p>Your e-mail is verified. Welcome to {{.App}}, we are happy to have you.</p>{{end}}`,

	KindPasswordReset: `{{define "content"}}<p>We received a request to reset your password.</p>
<p><a href="{{.URL}}" style="background: #d35400; color: #ffffff; padding: 10px 16px; border-radius: 4px; text-decoration: none;">Reset password</a></p>
<p>The link expires in one hour. If you did not ask for this you can ignore this e-mail.</p>{{end}}`,

	KindResetSuccess: `{{define "content"}}<p>Your password was changed successfully.</p>
<p>If you did not do this, contact support right away.</p>{{end}}`,
}

type templateData struct {
	App  string
	Name string
	Code string
	URL  string
}

type renderer struct {
	app  string
	tmpl map[Kind]*template.Template
}

func newRenderer(app string) *renderer {
	r := &renderer{app: app, tmpl: make(map[Kind]*template.Template, len(emailTemplates))}
	for kind, body := range emailTemplates {
		t := template.Must(template.New("email").Parse(layout))
		r.tmpl[kind] = template.Must(t.Parse(body))
	}
	return r
}

func (r *renderer) subject(k Kind) string {
	switch k {
	case KindVerification:
		return "Verify your Email"
	case KindWelcome:
		return "Welcome to " + r.app
	case KindPasswordReset:
		return "Reset your password"
	default:
		return "Password Reset Successfully"
	}
}

func (r *renderer) render(m Message) (string, error) {
	t, ok := r.tmpl[m.Kind]
	if !ok {
		return "", ErrUnknownKind
	}
	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "layout", templateData{App: r.app, Name: m.Name, Code: m.Code, URL: m.URL})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
