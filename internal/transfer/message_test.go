package transfer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func threeItemPreview() Preview {
	return BuildPreview(
		MultiPayload(multiExport(nil, space("Main", app("a", "https://a")), space("Work"), space("Home"))),
		liveSpaces("Main"),
	)
}

func TestFormatMessageEnglish(t *testing.T) {
	got := FormatMessage(threeItemPreview(), LocaleEN, MessageOptions{})

	want := strings.Join([]string{
		"Importing spaces: 3",
		"Name conflicts: 1 (will be renamed)",
		"Shortcuts: 1",
		"[1] Main -> Main (1)",
		"[2] Work",
		"[3] Home",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatMessageChinese(t *testing.T) {
	got := FormatMessage(threeItemPreview(), LocaleZH, MessageOptions{MaxItems: 2})

	want := strings.Join([]string{
		"将导入空间：3 项",
		"名称冲突：1 个（将自动重命名）",
		"快捷方式：1 个",
		"[1] Main -> Main (1)",
		"[2] Work",
		"... 还有 1 项",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatMessageTruncates(t *testing.T) {
	got := FormatMessage(threeItemPreview(), LocaleEN, MessageOptions{MaxItems: 1})

	assert.Contains(t, got, "[1] Main -> Main (1)")
	assert.NotContains(t, got, "[2]")
	assert.True(t, strings.HasSuffix(got, "... 2 more"))
}

func TestFormatMessageNoConflictLine(t *testing.T) {
	p := BuildPreview(SinglePayload(singleExport(nil, space("Fresh"))), nil)

	got := FormatMessage(p, LocaleEN, MessageOptions{})
	assert.NotContains(t, got, "Name conflicts")
	assert.Equal(t, "Importing spaces: 1\nShortcuts: 0\n[1] Fresh", got)
}

func TestFormatMessageSelectionHeader(t *testing.T) {
	p := threeItemPreview()
	p.IncomingSpaces = 5

	assert.True(t, strings.HasPrefix(FormatMessage(p, LocaleEN, MessageOptions{}), "Importing spaces: 3 (of 5)\n"))
	assert.True(t, strings.HasPrefix(FormatMessage(p, LocaleZH, MessageOptions{}), "将导入空间：3 项（共 5 项）\n"))
}

func TestFormatMessageDoesNotEscape(t *testing.T) {
	p := BuildPreview(SinglePayload(singleExport(nil, space("<b>Tom & Jerry</b>"))), nil)

	assert.Contains(t, FormatMessage(p, LocaleEN, MessageOptions{}), "[1] <b>Tom & Jerry</b>")
}

func TestFormatMessageUnknownLocaleFallsBack(t *testing.T) {
	p := threeItemPreview()
	assert.Equal(t, FormatMessage(p, LocaleEN, MessageOptions{}), FormatMessage(p, Locale("fr"), MessageOptions{}))
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
	}{
		{"zh", LocaleZH},
		{"zh-CN", LocaleZH},
		{"zh-Hans", LocaleZH},
		{"en", LocaleEN},
		{"en-GB", LocaleEN},
		{"", LocaleEN},
		{"fr-FR", LocaleEN},
		{"zh-CN,zh;q=0.9,en;q=0.8", LocaleZH},
		{"en-US,en;q=0.9", LocaleEN},
		{"not a tag!!", LocaleEN},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLocale(tt.in), tt.in)
	}
}
