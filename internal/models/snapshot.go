package models

import (
	"strings"
	"time"
)

// Snapshot is the whole persisted document.
type Snapshot struct {
	Users     []User        `json:"users"`
	Tokens    []TokenRecord `json:"tokens"`
	LoginLogs []LoginLog    `json:"loginLogs"`
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:     []User{},
		Tokens:    []TokenRecord{},
		LoginLogs: []LoginLog{},
	}
}

// Normalize replaces nil collections with empty ones.
func (s *Snapshot) Normalize() {
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Tokens == nil {
		s.Tokens = []TokenRecord{}
	}
	if s.LoginLogs == nil {
		s.LoginLogs = []LoginLog{}
	}
}

// FindUserByEmail returns the first user whose email matches, ignoring case.
func (s *Snapshot) FindUserByEmail(email string) *User {
	e := strings.ToLower(strings.TrimSpace(email))
	for i := range s.Users {
		if strings.ToLower(s.Users[i].Email) == e {
			return &s.Users[i]
		}
	}
	return nil
}

func (s *Snapshot) FindUserByID(id string) *User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

func (s *Snapshot) UsersByRole(role Role) []User {
	out := []User{}
	for _, u := range s.Users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func (s *Snapshot) TokensByStudent(studentID string) []TokenRecord {
	out := []TokenRecord{}
	for _, t := range s.Tokens {
		if t.StudentID == studentID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Snapshot) TokensByMonth(month string) []TokenRecord {
	out := []TokenRecord{}
	for _, t := range s.Tokens {
		if t.Month == month {
			out = append(out, t)
		}
	}
	return out
}

// TokensBetween returns the student's tokens dated within [from, to].
func (s *Snapshot) TokensBetween(studentID string, from, to time.Time) []TokenRecord {
	out := []TokenRecord{}
	for _, t := range s.Tokens {
		if t.StudentID != studentID {
			continue
		}
		if !t.Date.Before(from) && !t.Date.After(to) {
			out = append(out, t)
		}
	}
	return out
}

// RemoveTokensByStudent drops the student's tokens and reports how many went.
func (s *Snapshot) RemoveTokensByStudent(studentID string) int {
	kept := s.Tokens[:0]
	for _, t := range s.Tokens {
		if t.StudentID != studentID {
			kept = append(kept, t)
		}
	}
	removed := len(s.Tokens) - len(kept)
	s.Tokens = kept
	return removed
}

// RetainAdmins keeps only administrator accounts.
func (s *Snapshot) RetainAdmins() {
	s.Users = s.UsersByRole(RoleAdmin)
}
