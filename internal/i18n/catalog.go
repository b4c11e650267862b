// Package i18n holds the user-facing strings of the chat widget.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when the configured locale has no catalog.
const DefaultLocale = "zh-CN"

// Catalog 组件界面文案
type Catalog struct {
	Locale      string
	Title       string
	Launcher    string
	NewMessage  string
	Placeholder string
	Thinking    string
	Fallback    string
	You         string
	Assistant   string
	HelpOpen    string
	HelpClose   string
	HelpSpeak   string
	Empty       string
}

var catalogs = map[string]Catalog{
	"zh-CN": {
		Locale:      "zh-CN",
		Title:       "智能助手",
		Launcher:    "💬 打开聊天",
		NewMessage:  "有新消息",
		Placeholder: "输入消息…",
		Thinking:    "正在思考…",
		Fallback:    "抱歉，我现在无法回复，请稍后再试。",
		You:         "我",
		Assistant:   "助手",
		HelpOpen:    "ctrl+o 打开",
		HelpClose:   "esc 收起",
		HelpSpeak:   "ctrl+s 朗读",
		Empty:       "你好！有什么可以帮你的吗？",
	},
	"en-US": {
		Locale:      "en-US",
		Title:       "Assistant",
		Launcher:    "💬 Open chat",
		NewMessage:  "New message",
		Placeholder: "Type a message…",
		Thinking:    "Thinking…",
		Fallback:    "Sorry, I can't answer right now. Please try again later.",
		You:         "You",
		Assistant:   "Assistant",
		HelpOpen:    "ctrl+o open",
		HelpClose:   "esc close",
		HelpSpeak:   "ctrl+s speak",
		Empty:       "Hi! How can I help you?",
	},
}

// supported 决定匹配优先级，第一个是默认语言
var supported = []string{DefaultLocale, "en-US"}

var matcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, 0, len(supported))
	for _, locale := range supported {
		tags = append(tags, language.MustParse(locale))
	}
	return tags
}

// Lookup returns the catalog for locale. Matching follows BCP 47 rules, so
// case is ignored and a bare or regional variant ("en", "en-GB") selects the
// closest catalog. Unknown locales get DefaultLocale.
func Lookup(locale string) Catalog {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return catalogs[DefaultLocale]
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return catalogs[DefaultLocale]
	}
	return catalogs[supported[index]]
}
