package listing

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"quicklinks/internal/links"
	"quicklinks/internal/model"
)

const (
	TitleMaxRunes = 40
	Ellipsis      = "..."
	NoTitle       = "(no title)"

	PinnedGlyph   = "★"
	UnpinnedGlyph = "☆"
)

type Row struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	FullTitle string `json:"fullTitle"`

	// TargetURL is where the title navigates: the public view for viewable items, the editor otherwise.
	TargetURL  string `json:"targetUrl"`
	EditURL    string `json:"editUrl"`
	ViewURL    string `json:"viewUrl,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`

	Status        model.Status `json:"status"`
	StatusOptions []Option     `json:"statusOptions"`
	Type          string       `json:"type"`
	TypeLabel     string       `json:"typeLabel"`
	TypeOptions   []Option     `json:"typeOptions"`

	Pinned     bool   `json:"pinned"`
	SearchText string `json:"searchText"`
}

type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
	Class    string `json:"class,omitempty"`
}

func (r Row) PinGlyph() string {
	if r.Pinned {
		return PinnedGlyph
	}
	return UnpinnedGlyph
}

func (r Row) Published() bool {
	return r.Status == model.StatusPublish
}

// TruncateTitle shortens titles longer than TitleMaxRunes to exactly that many runes plus Ellipsis.
// Empty titles become NoTitle.
func TruncateTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return NoTitle
	}
	if utf8.RuneCountInString(title) <= TitleMaxRunes {
		return title
	}
	return string([]rune(title)[:TitleMaxRunes]) + Ellipsis
}

func buildRow(v Viewer, reg typeIndex, linker links.Linker, it model.Item, pinned bool) (Row, bool) {
	edit, ok := linker.EditLink(it)
	if !ok || edit == "" {
		return Row{}, false
	}
	view, viewOK := linker.ViewLink(it)
	preview, _ := linker.PreviewLink(it)

	target := edit
	t, known := reg.lookup(it.Type)
	if viewOK && known && t.Public && it.Status != model.StatusDraft && it.Status != model.StatusPending {
		target = view
	}

	row := Row{
		ID:            it.ID,
		Title:         TruncateTitle(it.Title),
		FullTitle:     it.Title,
		TargetURL:     target,
		EditURL:       edit,
		ViewURL:       view,
		PreviewURL:    preview,
		Status:        it.Status,
		StatusOptions: statusOptions(v, it),
		Type:          it.Type,
		TypeLabel:     reg.label(it.Type),
		TypeOptions:   typeOptions(v, reg, it),
		Pinned:        pinned,
	}
	full := it.Title
	if strings.TrimSpace(full) == "" {
		full = NoTitle
	}
	row.SearchText = strings.ToLower(strings.Join([]string{full, row.TypeLabel, strconv.FormatInt(it.ID, 10)}, " "))
	return row, true
}

// statusOptions lists draft/pending/private/published, plus delete when the viewer may delete.
// A current status outside that set is kept as the selected first option.
func statusOptions(v Viewer, it model.Item) []Option {
	var out []Option
	known := false
	for _, s := range model.SelectableStatuses {
		if s == model.StatusDelete {
			continue
		}
		if s == it.Status {
			known = true
		}
		out = append(out, Option{Value: string(s), Label: s.Label(), Selected: s == it.Status})
	}
	if !known && it.Status != "" {
		out = append([]Option{{Value: string(it.Status), Label: it.Status.Label(), Selected: true}}, out...)
	}
	if v.Perm.CanDelete(it) {
		out = append(out, Option{Value: string(model.StatusDelete), Label: model.StatusDelete.Label(), Class: "delete-option"})
	}
	return out
}

// typeOptions lists every manageable type the viewer can create. The item's own type is always present.
func typeOptions(v Viewer, reg typeIndex, it model.Item) []Option {
	var out []Option
	has := false
	for _, t := range reg.manageable() {
		if !v.Perm.CanCreate(t) {
			continue
		}
		sel := t.Slug == it.Type
		has = has || sel
		out = append(out, Option{Value: t.Slug, Label: reg.label(t.Slug), Selected: sel})
	}
	if !has {
		out = append([]Option{{Value: it.Type, Label: reg.label(it.Type), Selected: true}}, out...)
	}
	return out
}
