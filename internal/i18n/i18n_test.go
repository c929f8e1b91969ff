package i18n

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func clearLocaleEnv(t *testing.T) {
	for _, key := range []string{"ANDROIDGEN_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		t.Setenv(key, "")
	}
}

func TestSelectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		override string
		env      map[string]string
		want     language.Tag
	}{
		{"default", "", nil, language.English},
		{"override zh", "zh", nil, language.Chinese},
		{"posix locale", "", map[string]string{"LANG": "zh_CN.UTF-8"}, language.Chinese},
		{"override wins over env", "en", map[string]string{"LANG": "zh_CN.UTF-8"}, language.English},
		{"tool env before LANG", "", map[string]string{"ANDROIDGEN_LANG": "en_US", "LANG": "zh_TW"}, language.English},
		{"unparseable skipped", "", map[string]string{"LC_ALL": "C", "LANG": "zh_CN"}, language.Chinese},
		{"unsupported falls back", "de-DE", nil, language.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearLocaleEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := selectLanguage(tt.override); got != tt.want {
				t.Errorf("selectLanguage(%q) = %v, want %v", tt.override, got, tt.want)
			}
		})
	}
}

func TestSelectLanguageFallsBackToSystemLocale(t *testing.T) {
	clearLocaleEnv(t)
	saved := systemLocales
	t.Cleanup(func() { systemLocales = saved })

	systemLocales = func() []string { return []string{"zh-Hans-CN", "en-US"} }
	if got := selectLanguage(""); got != language.Chinese {
		t.Errorf("selectLanguage with a Chinese system locale = %v", got)
	}
	t.Setenv("LANG", "en_US.UTF-8")
	if got := selectLanguage(""); got != language.English {
		t.Errorf("LANG should win over the system locale, got %v", got)
	}

	systemLocales = func() []string { return nil }
	t.Setenv("LANG", "")
	if got := selectLanguage(""); got != language.English {
		t.Errorf("no locale at all = %v", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"zh_CN.UTF-8":  "zh-CN",
		"en_US@euro":   "en-US",
		" de_DE.utf8 ": "de-DE",
		"pt-BR":        "pt-BR",
	}
	for in, want := range tests {
		if got := normalizeLocale(in); got != want {
			t.Errorf("normalizeLocale(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTranslate(t *testing.T) {
	clearLocaleEnv(t)
	if err := Init("en"); err != nil {
		t.Fatal(err)
	}
	got := T("generate.next", map[string]interface{}{"BuildDir": "/tmp/out"})
	if got != "Build with: cd /tmp/out && ./gradlew assembleDebug" {
		t.Errorf("T(generate.next) = %q", got)
	}
	if got := T("deploy.done", map[string]interface{}{"Config": "debug", "Count": 1}); !strings.HasSuffix(got, "1 device.") {
		t.Errorf("singular = %q", got)
	}
	if got := T("deploy.done", map[string]interface{}{"Config": "debug", "Count": 3}); !strings.HasSuffix(got, "3 devices.") {
		t.Errorf("plural = %q", got)
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Errorf("unknown id = %q", got)
	}

	if err := Init("zh"); err != nil {
		t.Fatal(err)
	}
	if CurrentLanguage() != language.Chinese {
		t.Errorf("CurrentLanguage() = %v", CurrentLanguage())
	}
	if got := T("cmd.version.short"); got != "显示版本信息" {
		t.Errorf("zh T(cmd.version.short) = %q", got)
	}
	if got := T("cmd.sdk.list.long"); got != "cmd.sdk.list.long" {
		t.Errorf("missing zh message should return its id, got %q", got)
	}
}
