package models

// StudentDashboard is the landing page of a student
type StudentDashboard struct {
	User             *User               `json:"user"`
	Profile          *StudentProfile     `json:"profile"`
	RecentSessions   []GameSession       `json:"recentSessions"`
	RecommendedGames []Game              `json:"recommendedGames"`
	CompletedToday   int                 `json:"completedToday"`
	CategoryStats    []CategoryStats     `json:"categoryStats"`
	Assignments      []StudentAssignment `json:"assignments"`
}

// StudentSummary is a student row on a teacher's list
type StudentSummary struct {
	ID                   int64    `json:"id"`
	FullName             string   `json:"fullName"`
	Email                string   `json:"email"`
	GradeLevel           int      `json:"gradeLevel"`
	LearningDisabilities []string `json:"learningDisabilities"`
	Points               int      `json:"points"`
	Level                int      `json:"level"`
	GamesPlayed          int      `json:"gamesPlayed"`
	AverageScore         int      `json:"averageScore"`
}

// StudentDetail is a teacher's view of one student
type StudentDetail struct {
	Student         StudentSummary  `json:"student"`
	RecentSessions  []GameSession   `json:"recentSessions"`
	CategoryStats   []CategoryStats `json:"categoryStats"`
	AverageScore    int             `json:"averageScore"`
	PlayTimeMinutes int             `json:"playTimeMinutes"`
}

// TeacherDashboard is the landing page of a teacher
type TeacherDashboard struct {
	User           *User            `json:"user"`
	Students       []StudentSummary `json:"students"`
	RecentActivity []GameSession    `json:"recentActivity"`
	Assignments    []Assignment     `json:"assignments"`
}

// AdminStats are the platform-wide counters on the admin dashboard
type AdminStats struct {
	TotalStudents  int           `json:"totalStudents"`
	TotalTeachers  int           `json:"totalTeachers"`
	TotalGames     int           `json:"totalGames"`
	TotalSessions  int           `json:"totalSessions"`
	SessionsToday  int           `json:"sessionsToday"`
	RecentSessions []GameSession `json:"recentSessions"`
}

// AIAnalysis is a generated performance summary of a student
type AIAnalysis struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	Encouragement   string   `json:"encouragement"`
}
