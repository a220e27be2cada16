package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Student represents an account holder. All planner data is scoped to one student.
type Student struct {
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	DisplayName      string    `db:"display_name" json:"display_name"`
	Timezone         string    `db:"timezone" json:"timezone"`
	GradeLevel       string    `db:"grade_level" json:"grade_level"`
	EducationSystem  string    `db:"education_system" json:"education_system"`
	EducationProgram string    `db:"education_program" json:"education_program"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Location resolves the student's IANA timezone, falling back to UTC.
// Day-offset arithmetic always runs in this location so that "today"
// matches the student's calendar, not the server's.
func (s *Student) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Pagination describes list slicing metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
