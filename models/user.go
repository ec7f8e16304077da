package models

// User is an operator account of the backend. The password column holds a bcrypt hash.
type User struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"size:255;uniqueIndex;not null"`
	Password    string `json:"-" gorm:"size:255;not null"`
	IsSuperuser bool   `json:"is_superuser" gorm:"not null;default:false"` // stored only, no operation checks it
}

func (User) TableName() string { return "users" }
