package language

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		preferred []string
		available []string
		want      string
	}{
		{"region falls back to primary", []string{"ja-JP"}, []string{"ja", "en"}, "ja"},
		{"bare tag extends to region", []string{"ja"}, []string{"ja-JP", "en"}, "ja-JP"},
		{"bare tag extends to underscore region", []string{"zh"}, []string{"en", "zh_CN"}, "zh_CN"},
		{"first extension wins", []string{"zh"}, []string{"zh-TW", "zh-CN"}, "zh-TW"},
		{"exact match", []string{"en-US"}, []string{"en", "en-US"}, "en-US"},
		{"default fallback", []string{"fr"}, []string{"default", "en"}, "default"},
		{"no match no default", []string{"fr"}, []string{"en"}, ""},
		{"later preference", []string{"fr", "en-GB"}, []string{"en", "ja"}, "en"},
		{"earlier preference wins", []string{"ja-JP", "en"}, []string{"en", "ja"}, "ja"},
		{"region does not extend", []string{"en-US"}, []string{"en-GB"}, ""},
		{"prefix needs separator", []string{"j"}, []string{"ja-JP"}, ""},
		{"empty preferred", nil, []string{"default"}, "default"},
		{"empty table", []string{"en"}, nil, ""},
		{"underscore tag", []string{"pt_BR"}, []string{"pt"}, "pt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.preferred, tc.available))
		})
	}
}

type fakeStore struct {
	val string
	ok  bool
	err error
}

func (f fakeStore) Get(key string) (string, bool, error) {
	if key != StorageKey {
		return "", false, nil
	}
	return f.val, f.ok, f.err
}

func TestPreferred(t *testing.T) {
	platform := []string{"en-US", "en"}

	assert.Equal(t, []string{"ja"}, Preferred(fakeStore{val: "ja", ok: true}, platform))
	assert.Equal(t, platform, Preferred(fakeStore{}, platform))
	assert.Equal(t, platform, Preferred(fakeStore{err: errors.New("disk on fire")}, platform))
	assert.Equal(t, platform, Preferred(nil, platform))
}

func TestPlatformFromEnv(t *testing.T) {
	env := map[string]string{
		"LANGUAGE": "ja_JP:en",
		"LANG":     "ja_JP.UTF-8",
		"LC_ALL":   "C",
	}
	got := platformFrom(func(k string) string { return env[k] })
	assert.Equal(t, []string{"ja-JP", "en"}, got)

	assert.Empty(t, platformFrom(func(string) string { return "" }))
	assert.Equal(t, []string{"de-DE"}, platformFrom(func(k string) string {
		if k == "LANG" {
			return "de_DE@euro"
		}
		return ""
	}))
}

func TestPickerOptions(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{
			name: "default first, version dropped",
			keys: []string{"version", "ja", "default", "en"},
			want: []string{"default", "en", "ja"},
		},
		{
			name: "top-level categories imply default",
			keys: []string{"general", "touch", "fr", "version"},
			want: []string{"default", "fr"},
		},
		{
			name: "languages only",
			keys: []string{"ja", "en"},
			want: []string{"en", "ja"},
		},
		{
			name: "empty table",
			keys: []string{"version"},
			want: []string{},
		},
		{
			name: "hyphen hides underscore twin",
			keys: []string{"default", "zh-CN", "zh_cn"},
			want: []string{"default", "zh-CN"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PickerOptions(tc.keys))
		})
	}
}

func TestUIStrings(t *testing.T) {
	assert.Equal(t, "言語設定", UIStrings("ja").Language)
	assert.Equal(t, "言語設定", UIStrings("ja-JP").Language)
	assert.Equal(t, "言語設定", UIStrings("ja_JP").Language)
	assert.Equal(t, "Select Language", UIStrings("en-US").Language)
	assert.Equal(t, "Select Language", UIStrings("fr").Language)
	assert.Equal(t, "Select Language", UIStrings("not a tag!").Language)
}
