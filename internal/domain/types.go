package domain

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// GroupSummary is a group plus the aggregate counts shown in a user's group list.
type GroupSummary struct {
	Group
	MemberCount int64
	PhotoCount  int64
}

// Photo is the metadata record for one uploaded image. StorageKey and URL stay
// empty until the byte upload completes; until then the record is transient.
type Photo struct {
	ID          int64
	GroupID     int64
	UploadedBy  int64
	Description string
	StorageKey  string
	URL         string
	UploadedAt  time.Time
}

// Resolved reports whether the photo's bytes have been stored durably.
func (p *Photo) Resolved() bool {
	return p.StorageKey != ""
}
