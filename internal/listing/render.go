package listing

import (
	"embed"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

var barTemplate = template.Must(template.New("quicklinks").ParseFS(templatesFS, "templates/*.html"))

// Render writes the admin-bar fragment for menus. Empty menus are omitted.
func Render(w io.Writer, menus []Menu) error {
	return barTemplate.ExecuteTemplate(w, "bar", struct{ Menus []Menu }{Menus: menus})
}

func RenderString(menus []Menu) (string, error) {
	var b strings.Builder
	if err := Render(&b, menus); err != nil {
		return "", err
	}
	return b.String(), nil
}
