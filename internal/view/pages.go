package view

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// FormValues are the audit parameters echoed back into the form.
type FormValues struct {
	MinClicks           string
	MinCost             string
	SimilarityThreshold string
	BatchSize           string
	UseLLM              bool
	BrandTerms          string
}

// AppPage is the operational screen.
type AppPage struct {
	Form  FormValues
	Audit AuditView
	Usage template.HTML
}

// AccountPage shows the usage panel and the signed-in identity.
type AccountPage struct {
	Usage    template.HTML
	UserJSON string
}

// NewAccountPage builds the account page for a user.
func NewAccountPage(usage template.HTML, userID, email string) AccountPage {
	user := struct {
		ID    string `json:"id"`
		Email string `json:"email,omitempty"`
	}{ID: userID, Email: email}
	return AccountPage{Usage: usage, UserJSON: SafeStringify(jsonText(user))}
}

func RenderApp(w io.Writer, page AppPage) error {
	return templates.ExecuteTemplate(w, "app", page)
}

func RenderAccount(w io.Writer, page AccountPage) error {
	return templates.ExecuteTemplate(w, "account", page)
}
