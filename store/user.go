package store

// User is an account identified by a normalized email address.
type User struct {
	ID           int32
	Email        string
	PasswordHash string
	CreatedTs    int64
}

type FindUser struct {
	ID    *int32
	Email *string
}

type DeleteUser struct {
	ID int32
}
