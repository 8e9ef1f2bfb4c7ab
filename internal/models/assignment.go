package models

import "time"

// Assignment is a game a teacher has set for some of their students
type Assignment struct {
	ID          int64      `json:"id"`
	TeacherID   int64      `json:"teacherId"`
	GameID      int64      `json:"gameId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	GameTitle       string `json:"gameTitle,omitempty"`
	TargetCount     int    `json:"targetCount"`
	SubmissionCount int    `json:"submissionCount"`
}

// IsOverdue reports whether the due date has passed
func (a *Assignment) IsOverdue() bool {
	return a.DueDate != nil && time.Now().After(*a.DueDate)
}

// AssignmentSubmission links a completed session to an assignment
type AssignmentSubmission struct {
	ID            int64     `json:"id"`
	AssignmentID  int64     `json:"assignmentId"`
	StudentID     int64     `json:"studentId"`
	GameSessionID int64     `json:"gameSessionId"`
	Score         int       `json:"score"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// StudentAssignment is an assignment as seen by one student
type StudentAssignment struct {
	Assignment
	Completed bool `json:"completed"`
	Score     *int `json:"score,omitempty"`
}
