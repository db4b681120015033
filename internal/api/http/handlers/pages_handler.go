package handlers

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-manager/internal/auth"
)

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "layout_top"}}<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} — Task Manager</title></head>
<body>
<h1>{{.Title}}</h1>{{end}}
{{define "layout_bottom"}}</body>
</html>{{end}}

{{define "login"}}{{template "layout_top" .}}
<form method="post" action="/api/auth/login">
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Sign in</button>
</form>
<p><a href="/register">Create an account</a></p>
{{template "layout_bottom" .}}{{end}}

{{define "register"}}{{template "layout_top" .}}
<form method="post" action="/api/auth/register">
  <label>Name <input type="text" name="name" required></label>
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Create account</button>
</form>
<p><a href="/login">Already registered? Sign in</a></p>
{{template "layout_bottom" .}}{{end}}

{{define "dashboard"}}{{template "layout_top" .}}
<p>Signed in as {{.Name}} ({{.Email}}).</p>
<div id="tasks" data-endpoint="/api/tasks"></div>
<form method="post" action="/api/auth/logout"><button type="submit">Log out</button></form>
{{template "layout_bottom" .}}{{end}}
`))

type pageData struct {
	Title string
	Name  string
	Email string
}

// PagesHandler renders the server-side pages the gate classifies as
// protected-page (plus the public login/register surfaces).
type PagesHandler struct{}

// NewPagesHandler constructs the handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Root redirects the landing path to the dashboard; the gate has already
// required an identity for it.
func (h *PagesHandler) Root(c *fiber.Ctx) error {
	return c.Redirect(auth.DashboardPath, fiber.StatusFound)
}

// Login renders the login page.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	return renderPage(c, "login", pageData{Title: "Sign in"})
}

// Register renders the registration page.
func (h *PagesHandler) Register(c *fiber.Ctx) error {
	return renderPage(c, "register", pageData{Title: "Register"})
}

// Dashboard renders the authenticated landing page.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return c.Redirect(auth.LoginPath, fiber.StatusFound)
	}
	return renderPage(c, "dashboard", pageData{
		Title: "Dashboard",
		Name:  identity.Name,
		Email: identity.Email,
	})
}

func renderPage(c *fiber.Ctx, name string, data pageData) error {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
