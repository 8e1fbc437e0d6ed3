package constants

import "time"

const (
	AppName            = "diarykeep"
	DefaultKeyringUser = "database-password"
	DefaultConfigPath  = "~/.config/diarykeep/diarykeep.db"
	Version            = "v0.3.0"

	// DateFormat is the logical day key format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// FolderFormat is the native mirror folder format (DD-MM-YYYY)
	FolderFormat = "02-01-2006"

	// TimeFormat is the HH:MM format used by notification settings
	TimeFormat = "15:04"

	// Partition keys in the small-value store
	PartitionDiary         = "diary-app-data"
	PartitionSettings      = "diary-settings"
	PartitionLock          = "diary-lock-settings"
	PartitionBookmarks     = "diary-bookmarks"
	PartitionHabits        = "diary-habits-list"
	PartitionNotifications = "diary-notification-settings"

	// Content markers
	TaskUnchecked = "□"
	TaskChecked   = "✓"
	PhotoExt      = ".jpg"
	VoiceExt      = ".m4a"
	PhotoPrefix   = "photo_"
	VoicePrefix   = "voice_"

	// Archive layout
	ArchiveRoot          = "mydairy"
	ArchiveContentFile   = "content.txt"
	ArchiveMetadataFile  = "metadata.json"
	ArchivePhotosFile    = "photos.json"
	ArchiveVoiceFile     = "voicenotes.json"
	ArchiveSettingsFile  = "settings.json"
	ArchiveBookmarksFile = "bookmarks.json"
	ArchiveHabitsFile    = "habits.json"

	// Native mirror layout
	MirrorAppFolder   = "mydiaryapp"
	MirrorContentFile = "content.txt"
	MirrorMetaFile    = "meta.json"
	MirrorPhotosFile  = "photos.json"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "diarykeep-"
	BackupFileSuffix = ".zip"

	// Native host constants
	HostLockfileName   = "host.lock"
	HostExecutable     = "diarykeep-host"
	HostAppIdentifier  = "com.julianstephens.diarykeep"
	WidgetDataFile     = "widget-data.json"
	AutosaveSpoolFile  = "autosave-pending.json"
	DefaultWidgetColor = "#7C3AED"
	WidgetSnippetLen   = 100

	// Timing
	WatchDebounce          = 100 * time.Millisecond
	DefaultWidgetDebounce  = 250 * time.Millisecond
	DefaultAutosaveEvery   = 30 * time.Second
	CollaboratorTimeout    = 8 * time.Second
	HostRefreshTimeout     = 2 * time.Second
	HabitStreakLookbackMax = 365
)
