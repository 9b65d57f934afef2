package handler

import (
	"bytes"
	"html/template"

	"github.com/labstack/echo/v4"
)

// Minimal server-rendered forms for the interactive account flows. The
// platform UI proper lives elsewhere; these pages exist so the register,
// login and logout entry points work without it.

type formData struct {
	Errors    []string
	Notices   []string
	Username  string
	Email     string
	ReturnURL string
	CSRF      string
}

var registerPage = template.Must(template.New("register").Parse(`<!doctype html>
<html><head><title>Register</title></head><body>
<h1>Register</h1>
{{if .Errors}}<ul class="errors">{{range .Errors}}<li>{{.}}</li>{{end}}</ul>{{end}}
<form method="post" action="/account/register">
  <input type="hidden" name="_csrf" value="{{.CSRF}}">
  <label>Username <input name="UserName" value="{{.Username}}"></label>
  <label>Email <input name="Email" type="email" value="{{.Email}}"></label>
  <label>Password <input name="Password" type="password"></label>
  <button type="submit">Register</button>
</form>
<p><a href="/account/login">Already have an account? Log in</a></p>
</body></html>
`))

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html><head><title>Log in</title></head><body>
<h1>Log in</h1>
{{if .Notices}}<ul class="notices">{{range .Notices}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Errors}}<ul class="errors">{{range .Errors}}<li>{{.}}</li>{{end}}</ul>{{end}}
<form method="post" action="/account/login{{if .ReturnURL}}?ReturnUrl={{.ReturnURL}}{{end}}">
  <input type="hidden" name="_csrf" value="{{.CSRF}}">
  <label>Username <input name="UserName" value="{{.Username}}"></label>
  <label>Password <input name="Password" type="password"></label>
  <label><input name="RememberMe" type="checkbox" value="true"> Remember me</label>
  <button type="submit">Log in</button>
</form>
<p><a href="/account/register">Need an account? Register</a></p>
</body></html>
`))

func renderForm(c echo.Context, code int, page *template.Template, data formData) error {
	data.CSRF = csrfToken(c)
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return err
	}
	return c.HTMLBlob(code, buf.Bytes())
}
