package database

// ActionKind names the command that produced a ModerationAction.
type ActionKind string

const (
	KindArchive  ActionKind = "archive"
	KindSanction ActionKind = "sanction"
	KindCreate   ActionKind = "create"
)

// ModerationAction is one terminal outcome of a moderation command.
type ModerationAction struct {
	ID        int64
	GuildID   string
	Kind      ActionKind
	ActorID   string
	TargetID  string
	Outcome   string
	Detail    string
	CreatedAt int64
}
