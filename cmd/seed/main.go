package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutorlink-be/internal/model"
	"tutorlink-be/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	SeedSubjects(db)
	SeedDemoTutors(db)

	log.Println("Seeding complete.")
}

// SeedSubjects populates the subject catalog. Idempotent on slug.
func SeedSubjects(db *gorm.DB) {
	subjects := []model.Subject{
		{Name: "Mathematics", Slug: "mathematics"},
		{Name: "Physics", Slug: "physics"},
		{Name: "Chemistry", Slug: "chemistry"},
		{Name: "Biology", Slug: "biology"},
		{Name: "English", Slug: "english"},
		{Name: "Computer Science", Slug: "computer-science"},
		{Name: "Economics", Slug: "economics"},
		{Name: "History", Slug: "history"},
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&subjects).Error
	if err != nil {
		log.Printf("Warn: subject seeding failed: %v", err)
		return
	}
	log.Printf("Seeded %d subjects", len(subjects))
}

// SeedDemoTutors creates a couple of demo tutors with offerings so a fresh
// environment has something to book against.
func SeedDemoTutors(db *gorm.DB) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	pw := string(hash)

	headlineMath := "Math tutor, 10 years of classroom experience"
	headlineCS := "Software engineer teaching programming fundamentals"

	tutors := []model.User{
		{Email: "alice.tutor@tutorlink.dev", PasswordHash: &pw, FullName: "Alice Nguyen", Role: "user", Status: "active", Headline: &headlineMath},
		{Email: "bob.tutor@tutorlink.dev", PasswordHash: &pw, FullName: "Bob Santoso", Role: "user", Status: "active", Headline: &headlineCS},
	}

	for i := range tutors {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&tutors[i]).Error
		if err != nil {
			log.Printf("Warn: tutor seeding failed for %s: %v", tutors[i].Email, err)
		}
	}

	// Re-read so we have ids even when the rows already existed.
	var alice, bob model.User
	db.Where("email = ?", "alice.tutor@tutorlink.dev").First(&alice)
	db.Where("email = ?", "bob.tutor@tutorlink.dev").First(&bob)

	var math, cs model.Subject
	db.Where("slug = ?", "mathematics").First(&math)
	db.Where("slug = ?", "computer-science").First(&cs)

	offerings := []model.TutorSubject{
		{TutorId: alice.Id, SubjectId: math.Id, HourlyRate: 25.00},
		{TutorId: bob.Id, SubjectId: cs.Id, HourlyRate: 40.00},
	}
	for i := range offerings {
		if offerings[i].TutorId == uuid.Nil || offerings[i].SubjectId == uuid.Nil {
			continue
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tutor_id"}, {Name: "subject_id"}},
			DoNothing: true,
		}).Create(&offerings[i]).Error
		if err != nil {
			log.Printf("Warn: offering seeding failed: %v", err)
		}
	}

	log.Println("Seeded demo tutors and offerings")
}
