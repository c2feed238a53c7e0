package templates

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed html/*.gohtml
var embeddedTemplates embed.FS

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// SSE fragments; the full pages live in pages.templ.
var fragments = template.Must(template.New("fragments").Funcs(funcs).
	ParseFS(embeddedTemplates, "html/fragments.gohtml"))

func component(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}
