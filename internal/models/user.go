package models

// UserSummary is the sender projection carried in outbound events and REST
// responses. Field names are part of the wire contract.
type UserSummary struct {
	ID         int     `db:"id" json:"id"`
	Email      string  `db:"email" json:"email"`
	FirstName  *string `db:"first_name" json:"first_name"`
	SecondName *string `db:"second_name" json:"second_name"`
	Photo      *string `db:"photo" json:"photo"`
}

// User is the durable user row. The online flag is mutated only through the
// presence tracker.
type User struct {
	UserSummary
	IsOnline bool `db:"is_online" json:"is_online"`
}
