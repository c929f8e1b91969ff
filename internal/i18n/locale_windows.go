//go:build windows

package i18n

import "golang.org/x/sys/windows"

// osLocales returns the display languages of the Windows account, most preferred first,
// falling back to the user's regional format
func osLocales() []string {
	langs, err := windows.GetUserPreferredUILanguages(windows.MUI_LANGUAGE_NAME)
	if err == nil && len(langs) > 0 && langs[0] != "" {
		return langs
	}
	if name, err := windows.GetUserDefaultLocaleName(); err == nil && name != "" {
		return []string{name}
	}
	return nil
}
