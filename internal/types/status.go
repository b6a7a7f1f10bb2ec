package types

// Status is a type for the lifecycle status of a persisted resource.
// Archived and deleted rows are excluded from billing queries.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}
