package constants

const (
	// Settings defaults
	DefaultFontFamily         = "inter"
	DefaultFontSize           = "medium"
	DefaultThemeColor         = "red"
	DefaultCustomThemeColor   = "#ef4444"
	DefaultBackgroundColor    = "#0a0a0a"
	DefaultFontColor          = "#ededed"
	DefaultShowWritingPrompts = true
	DefaultShowCalendar       = true

	// Notification defaults
	DefaultNotificationTime    = "20:00"
	DefaultNotificationMessage = "boss! its diary time ✨"

	// Lock PIN bounds
	MinPINLength = 4
	MaxPINLength = 6
)
