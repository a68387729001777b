package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"quicklinks/internal/docs"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	// Raw HTML passthrough stays off; no html.WithUnsafe().
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

func renderMarkdownHTML(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return template.HTML("")
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	// Trusted only because raw HTML is disabled above.
	return template.HTML(b.String())
}

type helpTopic struct {
	Slug   string
	Title  string
	Active bool
}

type helpVM struct {
	Topics []helpTopic
	Title  string
	Body   template.HTML
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.PathValue("topic"))
	if topic == "" {
		topic = "overview"
	}
	body, ok := docs.Get(topic)
	if !ok {
		http.NotFound(w, r)
		return
	}
	vm := helpVM{Title: docs.Title(topic), Body: renderMarkdownHTML(body)}
	for _, t := range docs.Topics() {
		vm.Topics = append(vm.Topics, helpTopic{Slug: t, Title: docs.Title(t), Active: t == topic})
	}
	s.writeHTMLTemplate(w, http.StatusOK, "help.html", vm)
}
