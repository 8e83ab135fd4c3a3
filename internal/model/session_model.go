package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeCandidate   UserType = "candidate"
	UserTypeInterviewer UserType = "interviewer"
)

const (
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
)

// StepData maps a step name ("step1", "step2", ...) to the fields submitted for it.
type StepData map[string]map[string]any

func (d StepData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *StepData) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*d = StepData{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported step data type %T", value)
	}
	out := StepData{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*d = out
	return nil
}

// Clone deep-copies the two map levels so callers can merge without touching the original.
func (d StepData) Clone() StepData {
	out := make(StepData, len(d))
	for step, fields := range d {
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		out[step] = copied
	}
	return out
}

// Merge folds fields into the named step. Existing keys are overwritten, nothing is removed.
func (d StepData) Merge(step string, fields map[string]any) {
	existing, ok := d[step]
	if !ok {
		existing = make(map[string]any, len(fields))
		d[step] = existing
	}
	for k, v := range fields {
		existing[k] = v
	}
}

// Field looks a value up in a given step, returning "" for anything that is not a string.
func (d StepData) Field(step, key string) string {
	fields, ok := d[step]
	if !ok {
		return ""
	}
	s, _ := fields[key].(string)
	return s
}

type Session struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserType    UserType   `gorm:"type:varchar(20);index" json:"user_type"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;index" json:"owner_id"`
	CurrentStep int        `gorm:"not null;default:0" json:"current_step"`
	Status      string     `gorm:"type:varchar(20)" json:"status"` // "in_progress" or "completed"
	Data        StepData   `gorm:"type:jsonb" json:"data"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (s *Session) TableName() string {
	return "sessions"
}

func StepName(step int) string {
	return fmt.Sprintf("step%d", step)
}
