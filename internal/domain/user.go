package domain

import "time"

// UserStatus marks whether a user may interact with the bot.
type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

// User is anyone who has contacted the bot at least once.
type User struct {
	ID        int64      `db:"user_id"`
	Username  *string    `db:"username"`
	FirstName string     `db:"first_name"`
	LastName  *string    `db:"last_name"`
	JoinedAt  time.Time  `db:"join_date"`
	Status    UserStatus `db:"status"`
}

// DisplayName returns the best human-readable name available.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return "user"
}
