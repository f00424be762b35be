package transfer

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale selects the message templates.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleZH Locale = "zh"
)

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Chinese,
})

// ParseLocale maps a BCP 47 tag or Accept-Language value onto a supported
// locale. Anything unrecognized falls back to English.
func ParseLocale(s string) Locale {
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return LocaleEN
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return LocaleEN
	}
	if idx == 1 {
		return LocaleZH
	}
	return LocaleEN
}

type messageTemplates struct {
	header    string
	headerOf  string
	conflicts string
	appItems  string
	more      string
}

var templates = map[Locale]messageTemplates{
	LocaleEN: {
		header:    "Importing spaces: %d",
		headerOf:  "Importing spaces: %d (of %d)",
		conflicts: "Name conflicts: %d (will be renamed)",
		appItems:  "Shortcuts: %d",
		more:      "... %d more",
	},
	LocaleZH: {
		header:    "将导入空间：%d 项",
		headerOf:  "将导入空间：%d 项（共 %d 项）",
		conflicts: "名称冲突：%d 个（将自动重命名）",
		appItems:  "快捷方式：%d 个",
		more:      "... 还有 %d 项",
	},
}

// MessageOptions tunes FormatMessage.
type MessageOptions struct {
	// MaxItems limits the numbered entries; 0 means no limit.
	MaxItems int
}

// FormatMessage renders p as plain text for a confirmation prompt.
// Nothing is escaped; the caller owns the rendering context.
func FormatMessage(p Preview, locale Locale, opts MessageOptions) string {
	t, ok := templates[locale]
	if !ok {
		t = templates[LocaleEN]
	}

	var b strings.Builder
	if p.IncomingSpaces > p.SelectedSpaces {
		fmt.Fprintf(&b, t.headerOf, p.SelectedSpaces, p.IncomingSpaces)
	} else {
		fmt.Fprintf(&b, t.header, p.SelectedSpaces)
	}
	b.WriteByte('\n')

	if p.NameConflicts > 0 {
		fmt.Fprintf(&b, t.conflicts, p.NameConflicts)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, t.appItems, p.TotalAppItems)

	shown := len(p.Items)
	if opts.MaxItems > 0 && shown > opts.MaxItems {
		shown = opts.MaxItems
	}
	for i, item := range p.Items[:shown] {
		b.WriteByte('\n')
		if item.Renamed() {
			fmt.Fprintf(&b, "[%d] %s -> %s", i+1, item.OriginalName, item.FinalName)
		} else {
			fmt.Fprintf(&b, "[%d] %s", i+1, item.OriginalName)
		}
	}
	if omitted := len(p.Items) - shown; omitted > 0 {
		b.WriteByte('\n')
		fmt.Fprintf(&b, t.more, omitted)
	}

	return b.String()
}
