package repository

import (
	"path/filepath"
	"testing"
	"time"

	"learnplay/internal/database"
	"learnplay/internal/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createStudent(t *testing.T, users *UserRepository, email string) *models.User {
	t.Helper()
	u, err := users.CreateStudent(email, "hash", "Student "+email, 3, []string{"dyslexia"})
	if err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}
	return u
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)

	student := createStudent(t, users, "ada@example.com")

	got, err := users.GetUserByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got == nil || got.ID != student.ID || got.Role != models.RoleStudent {
		t.Fatalf("GetUserByEmail() = %+v, want student %d", got, student.ID)
	}

	missing, err := users.GetUserByEmail("nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("GetUserByEmail(missing) = %v, %v, want nil, nil", missing, err)
	}

	profile, err := profiles.GetStudentProfile(student.ID)
	if err != nil {
		t.Fatalf("GetStudentProfile() error = %v", err)
	}
	if profile.Level != 1 || profile.Points != 0 || profile.GradeLevel != 3 {
		t.Errorf("GetStudentProfile() = %+v, want fresh grade 3 profile", profile)
	}
	if len(profile.LearningDisabilities) != 1 || profile.LearningDisabilities[0] != "dyslexia" {
		t.Errorf("LearningDisabilities = %v, want [dyslexia]", profile.LearningDisabilities)
	}

	if err := users.LinkOAuth(student.ID, "google", "sub-1"); err != nil {
		t.Fatalf("LinkOAuth() error = %v", err)
	}
	linked, err := users.GetUserByOAuth("google", "sub-1")
	if err != nil || linked == nil || linked.ID != student.ID {
		t.Errorf("GetUserByOAuth() = %v, %v, want user %d", linked, err, student.ID)
	}

	teacher, err := users.CreateTeacher("grace@example.com", "hash", "Grace", "math")
	if err != nil {
		t.Fatalf("CreateTeacher() error = %v", err)
	}
	tp, err := profiles.GetTeacherProfile(teacher.ID)
	if err != nil || tp == nil || tp.Specialization != "math" {
		t.Errorf("GetTeacherProfile() = %v, %v, want math", tp, err)
	}

	n, err := users.CountByRole(models.RoleStudent)
	if err != nil || n != 1 {
		t.Errorf("CountByRole(student) = %d, %v, want 1", n, err)
	}

	list, err := users.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("ListUsers() returned %d users, want 2", len(list))
	}
}

func TestUserSessions(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	u := createStudent(t, users, "s@example.com")

	if _, err := users.CreateSession("live", u.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := users.CreateSession("old", u.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	removed, err := users.DeleteExpiredSessions()
	if err != nil {
		t.Fatalf("DeleteExpiredSessions() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("DeleteExpiredSessions() = %d, want 1", removed)
	}

	s, err := users.GetSession("live")
	if err != nil || s == nil || s.UserID != u.ID {
		t.Errorf("GetSession(live) = %v, %v", s, err)
	}
	if s, _ := users.GetSession("old"); s != nil {
		t.Error("expired session should have been removed")
	}
}

func TestAddPoints(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)
	u := createStudent(t, users, "p@example.com")

	before, after, err := profiles.AddPoints(u.ID, 90)
	if err != nil {
		t.Fatalf("AddPoints() error = %v", err)
	}
	if before.Points != 0 || after.Points != 90 || after.Level != 1 {
		t.Errorf("AddPoints(90) = %+v -> %+v", before, after)
	}

	_, after, err = profiles.AddPoints(u.ID, 20)
	if err != nil {
		t.Fatalf("AddPoints() error = %v", err)
	}
	if after.Points != 110 || after.Level != 2 {
		t.Errorf("AddPoints(20) after = %+v, want 110 points level 2", after)
	}

	before, after, err = profiles.AddPoints(9999, 10)
	if err != nil || before != nil || after != nil {
		t.Errorf("AddPoints(no profile) = %v, %v, %v, want nils", before, after, err)
	}
}

func TestGameRepository(t *testing.T) {
	db := openTestDB(t)
	games := NewGameRepository(db)

	active, err := games.ListActiveGames()
	if err != nil {
		t.Fatalf("ListActiveGames() error = %v", err)
	}
	if len(active) == 0 {
		t.Fatal("expected seeded games")
	}

	category, err := games.GameCategory(5)
	if err != nil || category != models.CategoryMemory {
		t.Errorf("GameCategory(5) = %q, %v, want memory", category, err)
	}
	if _, err := games.GameCategory(999); err != ErrGameNotFound {
		t.Errorf("GameCategory(999) error = %v, want ErrGameNotFound", err)
	}

	if err := games.SetActive(5, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	after, _ := games.ListActiveGames()
	if len(after) != len(active)-1 {
		t.Errorf("active games after hiding one = %d, want %d", len(after), len(active)-1)
	}

	g, err := games.GetGame(5)
	if err != nil || g == nil || g.IsActive {
		t.Errorf("GetGame(5) = %+v, %v, want inactive game", g, err)
	}
}

func TestGameSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	sessions := NewGameSessionRepository(db)
	u := createStudent(t, users, "g@example.com")

	id, err := sessions.StartSession(u.ID, 1)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	ok, err := sessions.CompleteSession(id, u.ID+1, 80, 60)
	if err != nil || ok {
		t.Errorf("CompleteSession(other student) = %v, %v, want false", ok, err)
	}

	ok, err = sessions.CompleteSession(id, u.ID, 100, 60)
	if err != nil || !ok {
		t.Fatalf("CompleteSession() = %v, %v, want true", ok, err)
	}

	ok, err = sessions.CompleteSession(id, u.ID, 50, 60)
	if err != nil || ok {
		t.Errorf("second CompleteSession() = %v, %v, want false", ok, err)
	}

	s, err := sessions.GetSession(id)
	if err != nil || s == nil {
		t.Fatalf("GetSession() = %v, %v", s, err)
	}
	if !s.IsCompleted() || s.Score != 100 || s.GameTitle == "" {
		t.Errorf("GetSession() = %+v, want completed with score 100", s)
	}

	// An abandoned session counts towards totals only
	if _, err := sessions.StartSession(u.ID, 2); err != nil {
		t.Fatal(err)
	}

	stats, err := sessions.Stats(u.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := models.StudentStats{TotalSessions: 2, CompletedSessions: 1, AverageScore: 100, PerfectGames: 1, QuickGames: 1, TotalSeconds: 60}
	if *stats != want {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	n, err := sessions.CountCompletedSince(u.ID, today)
	if err != nil || n != 1 {
		t.Errorf("CountCompletedSince(today) = %d, %v, want 1", n, err)
	}

	dates, err := sessions.PlayDates(u.ID, 30)
	if err != nil {
		t.Fatalf("PlayDates() error = %v", err)
	}
	if len(dates) != 1 || dates[0] != today.Format("2006-01-02") {
		t.Errorf("PlayDates() = %v, want [%s]", dates, today.Format("2006-01-02"))
	}

	cats, err := sessions.CategoryStats(u.ID)
	if err != nil {
		t.Fatalf("CategoryStats() error = %v", err)
	}
	if len(cats) != 1 || cats[0].Category != models.CategoryReading || cats[0].MaxScore != 100 {
		t.Errorf("CategoryStats() = %+v", cats)
	}

	played, err := sessions.PlayedGameIDs(u.ID)
	if err != nil || len(played) != 1 || played[0] != 1 {
		t.Errorf("PlayedGameIDs() = %v, %v, want [1]", played, err)
	}

	recent, err := sessions.RecentSessions(u.ID, 5)
	if err != nil || len(recent) != 2 {
		t.Errorf("RecentSessions() = %d sessions, %v, want 2", len(recent), err)
	}

	total, err := sessions.CountSessions(time.Time{})
	if err != nil || total != 2 {
		t.Errorf("CountSessions(all) = %d, %v, want 2", total, err)
	}
}

func TestTeacherRoster(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	teachers := NewTeacherRepository(db)
	sessions := NewGameSessionRepository(db)

	teacher, err := users.CreateTeacher("t@example.com", "hash", "Teacher", "")
	if err != nil {
		t.Fatal(err)
	}
	zed := createStudent(t, users, "zed@example.com")
	amy := createStudent(t, users, "amy@example.com")

	for _, s := range []*models.User{zed, amy, amy} {
		if err := teachers.AssignStudent(teacher.ID, s.ID); err != nil {
			t.Fatalf("AssignStudent() error = %v", err)
		}
	}

	id, _ := sessions.StartSession(amy.ID, 2)
	if _, err := sessions.CompleteSession(id, amy.ID, 70, 200); err != nil {
		t.Fatal(err)
	}

	students, err := teachers.ListStudents(teacher.ID)
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("ListStudents() returned %d, want 2", len(students))
	}
	if students[0].ID != amy.ID {
		t.Errorf("ListStudents()[0] = %q, want roster ordered by name", students[0].FullName)
	}
	if students[0].GamesPlayed != 1 || students[0].AverageScore != 70 {
		t.Errorf("ListStudents()[0] = %+v, want 1 game averaging 70", students[0])
	}

	ok, err := teachers.IsTeacherOf(teacher.ID, zed.ID)
	if err != nil || !ok {
		t.Errorf("IsTeacherOf() = %v, %v, want true", ok, err)
	}
	if err := teachers.RemoveStudent(teacher.ID, zed.ID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := teachers.IsTeacherOf(teacher.ID, zed.ID); ok {
		t.Error("IsTeacherOf() after RemoveStudent = true")
	}

	recent, err := sessions.RecentForTeacher(teacher.ID, 10)
	if err != nil || len(recent) != 1 {
		t.Errorf("RecentForTeacher() = %d, %v, want 1", len(recent), err)
	}
}

func TestAssignments(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	assignments := NewAssignmentRepository(db)
	sessions := NewGameSessionRepository(db)

	teacher, _ := users.CreateTeacher("t@example.com", "hash", "Teacher", "")
	s1 := createStudent(t, users, "s1@example.com")
	s2 := createStudent(t, users, "s2@example.com")

	due := time.Now().Add(48 * time.Hour)
	a := &models.Assignment{TeacherID: teacher.ID, GameID: 21, Title: "Sequences", DueDate: &due}
	id, err := assignments.CreateAssignment(a, []int64{s1.ID, s2.ID})
	if err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}

	open, err := assignments.OpenAssignmentIDs(s1.ID, 21)
	if err != nil || len(open) != 1 || open[0] != id {
		t.Fatalf("OpenAssignmentIDs() = %v, %v, want [%d]", open, err, id)
	}

	sid, _ := sessions.StartSession(s1.ID, 21)
	recorded, err := assignments.RecordSubmission(id, s1.ID, sid, 90)
	if err != nil || !recorded {
		t.Fatalf("RecordSubmission() = %v, %v, want true", recorded, err)
	}
	recorded, err = assignments.RecordSubmission(id, s1.ID, sid, 10)
	if err != nil || recorded {
		t.Errorf("second RecordSubmission() = %v, %v, want false", recorded, err)
	}

	if open, _ := assignments.OpenAssignmentIDs(s1.ID, 21); len(open) != 0 {
		t.Errorf("OpenAssignmentIDs() after submission = %v, want none", open)
	}

	list, err := assignments.ListForTeacher(teacher.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListForTeacher() = %v, %v", list, err)
	}
	if list[0].TargetCount != 2 || list[0].SubmissionCount != 1 || list[0].DueDate == nil {
		t.Errorf("ListForTeacher()[0] = %+v, want 2 targets 1 submission", list[0])
	}

	mine, err := assignments.ListForStudent(s1.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListForStudent() = %v, %v", mine, err)
	}
	if !mine[0].Completed || mine[0].Score == nil || *mine[0].Score != 90 {
		t.Errorf("ListForStudent()[0] = %+v, want completed with 90", mine[0])
	}

	theirs, _ := assignments.ListForStudent(s2.ID)
	if len(theirs) != 1 || theirs[0].Completed {
		t.Errorf("ListForStudent(s2) = %+v, want one open assignment", theirs)
	}
}
