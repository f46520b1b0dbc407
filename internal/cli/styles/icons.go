package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconVersion   = "" // tag
	IconGitBranch = "" // git branch
	IconCalendar  = "" // calendar
	IconGithub    = "" // github
	IconGo        = "" // go gopher

	IconCheck    = ""
	IconX        = ""
	IconWarning  = ""
	IconImage    = "" // image file
	IconCache    = ""
	IconDatabase = ""
	IconTrash    = ""
	IconBookmark = ""
)
