package models

import "strings"

type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
)

// ParseDevice never fails: anything unrecognised is counted as desktop.
// Values are matched exactly after trimming.
func ParseDevice(s string) Device {
	switch Device(strings.TrimSpace(s)) {
	case DeviceMobile:
		return DeviceMobile
	case DeviceTablet:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.TrimSpace(s)) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	default:
		return "", false
	}
}

type Language string

const (
	LanguageRu Language = "ru"
	LanguageEn Language = "en"
)

func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.TrimSpace(s)) {
	case LanguageRu:
		return LanguageRu, true
	case LanguageEn:
		return LanguageEn, true
	default:
		return "", false
	}
}
