package staff

import (
	"database/sql"
	"strings"
	"time"
)

// Facilitator is the instructor role responsible for submitting weekly
// activity logs.
type Facilitator struct {
	ID        int64
	Email     string
	FirstName string
	LastName  sql.NullString
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and optional last name.
func (f *Facilitator) FullName() string {
	if f.LastName.Valid {
		return strings.TrimSpace(f.FirstName + " " + f.LastName.String)
	}
	return f.FirstName
}

// Manager is the oversight role receiving compliance alerts. A manager may
// optionally carry a Telegram chat id for the secondary alert channel.
type Manager struct {
	ID             int64
	Email          string
	FirstName      string
	LastName       sql.NullString
	TelegramChatID sql.NullInt64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (m *Manager) FullName() string {
	if m.LastName.Valid {
		return strings.TrimSpace(m.FirstName + " " + m.LastName.String)
	}
	return m.FirstName
}
