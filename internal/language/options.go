package language

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

var categoryKeys = []string{"general", "datetime", "touch"}

// PickerOptions builds the language picker entries from the raw top-level
// keys of a message table. "default" comes first when the table has a
// default language or top-level categories; category names and "version"
// are dropped, and "xx-YY" hides an adjacent "xx_yy" duplicate. A table of
// bare languages lists them as they are.
func PickerOptions(keys []string) []string {
	sorted := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != Version {
			sorted = append(sorted, k)
		}
	}
	slices.Sort(sorted)

	var out []string
	switch {
	case slices.Contains(sorted, Default):
		out = append(out, Default)
		for _, k := range sorted {
			if k != Default && !slices.Contains(categoryKeys, k) {
				out = append(out, k)
			}
		}
	case slices.ContainsFunc(sorted, func(k string) bool { return slices.Contains(categoryKeys, k) }):
		out = append(out, Default)
		for _, k := range sorted {
			if !slices.Contains(categoryKeys, k) {
				out = append(out, k)
			}
		}
	default:
		out = sorted
	}

	for i := 0; i+1 < len(out); i++ {
		if strings.Contains(out[i], "-") &&
			strings.ToLower(strings.Replace(out[i], "-", "_", 1)) == strings.ToLower(out[i+1]) {
			out = slices.Delete(out, i+1, i+2)
		}
	}
	return out
}

// UI holds the menu labels shown next to the character.
type UI struct {
	SwitchModel string
	HideWidget  string
	HideMessage string
	ShowMessage string
	Language    string
	Credit      string
	ShowWidget  string
}

var (
	uiEnglish = UI{
		SwitchModel: "Switch Model",
		HideWidget:  "Hide Widget",
		HideMessage: "Hide Message",
		ShowMessage: "Show Message",
		Language:    "Select Language",
		Credit:      "Credit",
		ShowWidget:  "Show Widget",
	}
	uiJapanese = UI{
		SwitchModel: "モデル切り替え",
		HideWidget:  "ウィジェットを隠す",
		HideMessage: "メッセージ欄を隠す",
		ShowMessage: "メッセージ欄を表示する",
		Language:    "言語設定",
		Credit:      "Credit",
		ShowWidget:  "看板娘",
	}

	uiMatcher = language.NewMatcher([]language.Tag{language.English, language.Japanese})
)

// UIStrings returns the labels for tag, defaulting to English.
func UIStrings(tag string) UI {
	t, err := language.Parse(tag)
	if err != nil {
		return uiEnglish
	}
	_, idx, conf := uiMatcher.Match(t)
	if idx == 1 && conf != language.No {
		return uiJapanese
	}
	return uiEnglish
}
