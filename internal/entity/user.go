package entity

import "time"

// User represents a learner. Card and deck ownership is managed by an
// external system; the review service only needs identity and timezone.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Timezone  string    `json:"timezone"` // IANA name, e.g. "Asia/Shanghai"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate validates the user entity.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrInvalidUsername
	}
	return nil
}

// Location resolves the user's timezone, falling back to UTC when the
// name is empty or unknown.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Normalize ensures defaults & constraints before persistence.
func (u *User) Normalize(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
