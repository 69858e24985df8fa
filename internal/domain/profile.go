package domain

// ProfileSettings are the per-user fields edited on the settings page.
type ProfileSettings struct {
	FullName               string `json:"fullName"`
	ProfileEmail           string `json:"profileEmail"`
	Phone                  string `json:"phone"`
	City                   string `json:"city"`
	Company                string `json:"company"`
	Bio                    string `json:"bio"`
	ReceiveOrderAlerts     bool   `json:"receiveOrderAlerts"`
	ReceiveMarketingEmails bool   `json:"receiveMarketingEmails"`
}

// Theme is the UI color mode preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Language is the UI language preference.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageTurkish Language = "tr"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageTurkish
}

// Preferences are the display settings mirrored into cookies.
type Preferences struct {
	Theme    Theme    `json:"theme"`
	Language Language `json:"language"`
}
