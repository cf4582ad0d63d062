package types

// AppConfig represents the complete application configuration.
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Watch   WatchConfig   `mapstructure:"watch" validate:"required"`
	Git     GitConfig     `mapstructure:"git" validate:"required"`
	Journal JournalConfig `mapstructure:"journal"`
}

// ProjectConfig holds working-tree layout settings.
type ProjectConfig struct {
	// RootDir is the explicit working-tree root; every component
	// receives it at construction instead of relying on the process
	// working directory.
	RootDir    string `mapstructure:"rootDir" validate:"required"`
	PromptsDir string `mapstructure:"promptsDir" validate:"required"`
	TaskExt    string `mapstructure:"taskExt" validate:"required,startswith=."`
}

// WatchConfig holds polling loop settings.
type WatchConfig struct {
	IntervalSeconds int    `mapstructure:"intervalSeconds" validate:"required,min=1,max=300"`
	Policy          string `mapstructure:"policy" validate:"required,oneof=all first"`
	Notify          bool   `mapstructure:"notify"`
}

// GitConfig holds version control settings.
type GitConfig struct {
	Remote string `mapstructure:"remote" validate:"required"`
	Push   bool   `mapstructure:"push"`
	Pull   bool   `mapstructure:"pull"`
}

// JournalConfig holds transition journal settings.
type JournalConfig struct {
	// Path of the SQLite journal, relative to the working-tree root
	// unless absolute. Empty disables the journal.
	Path string `mapstructure:"path"`
}
