package entities

// User is a registered account. Email and username are unique.
type User struct {
	ID           uint   `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

func (User) TableName() string { return "users" }
