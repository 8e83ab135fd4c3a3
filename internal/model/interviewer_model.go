package model

import (
	"time"

	"github.com/google/uuid"
)

type Interviewer struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100)" json:"last_name"`
	Email     string    `gorm:"type:varchar(255);index" json:"email"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Company   string    `gorm:"type:varchar(255)" json:"company"`
	Consents  Consents  `gorm:"embedded" json:"consents"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Interviewer) TableName() string {
	return "interviewers"
}
