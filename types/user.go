package types

type User struct {
	ID           string `json:"id" bson:"_id,omitempty"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"-" bson:"password_hash"`
	FullName     string `json:"full_name" bson:"full_name"`
	CreatedAt    int64  `json:"created_at" bson:"created_at"`
}
