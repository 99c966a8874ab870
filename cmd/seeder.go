package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adiwijaya/course-management/internal/course"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGorm(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"access_tokens", "modules", "courses", "subdepartments", "departments", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedDepartments(db)
		seedUsers(db, cfg.Security.BCryptCost)
		seedCourses(db)
	},
}

func seedDepartments(db *gorm.DB) {
	departments := []struct {
		Name string
		Code string
		Subs []string
	}{
		{"Engineering", "ENG", []string{"Backend", "Frontend", "QA"}},
		{"Human Resources", "HR", []string{"Recruitment", "People Operations"}},
		{"Finance", "FIN", []string{"Accounting", "Payroll"}},
	}

	for _, d := range departments {
		var id int64
		if err := db.Raw("SELECT id FROM departments WHERE code = ?", d.Code).Row().Scan(&id); err == nil {
			continue
		}

		if err := db.Exec("INSERT INTO departments (name, code, status, created_at, updated_at) VALUES (?, ?, 'active', now(), now())", d.Name, d.Code).Error; err != nil {
			log.Fatalf("failed to insert department %s: %v", d.Name, err)
		}
		if err := db.Raw("SELECT id FROM departments WHERE code = ?", d.Code).Row().Scan(&id); err != nil {
			log.Fatalf("department not found after insert %s: %v", d.Name, err)
		}
		for _, sub := range d.Subs {
			if err := db.Exec("INSERT INTO subdepartments (department_id, name, created_at, updated_at) VALUES (?, ?, now(), now())", id, sub).Error; err != nil {
				log.Fatalf("failed to insert subdepartment %s: %v", sub, err)
			}
		}
		fmt.Println("Seeded department:", d.Name)
	}
}

func seedUsers(db *gorm.DB, bcryptCost int) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)

	users := []struct {
		Name       string
		Email      string
		Role       string
		Department string
	}{
		{"Adi Admin", "admin@mail.com", "admin", ""},
		{"Indra Instructor", "instructor@mail.com", "instructor", ""},
		{"Eka Employee", "employee@mail.com", "employee", "Engineering"},
	}

	for _, u := range users {
		var exists int
		if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
			fmt.Println("user already exists:", u.Email)
			continue
		}

		dept := any(u.Department)
		if u.Department == "" {
			dept = nil
		}
		if err := db.Exec(
			"INSERT INTO users (name, email, password_hash, role, department, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 'active', now(), now())",
			u.Name, u.Email, string(hash), u.Role, dept,
		).Error; err != nil {
			log.Fatalf("failed to insert user %s: %v", u.Email, err)
		}
		fmt.Println("Seeded user:", u.Email)
	}
}

func seedCourses(db *gorm.DB) {
	var instructorID int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", "instructor@mail.com").Row().Scan(&instructorID); err != nil {
		log.Fatalf("failed to lookup instructor id: %v", err)
	}
	var adminID int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", "admin@mail.com").Row().Scan(&adminID); err != nil {
		log.Fatalf("failed to lookup admin id: %v", err)
	}

	courses := []struct {
		Title      string
		Department string
		Status     string
	}{
		{"Go Fundamentals", "Engineering", "Active"},
		{"Effective Code Review", "Engineering", "Draft"},
		{"Onboarding Essentials", "Human Resources", "Active"},
	}

	for _, c := range courses {
		normalized := course.NormalizeTitle(c.Title)
		var exists int
		if err := db.Raw("SELECT 1 FROM courses WHERE title_normalized = ?", normalized).Row().Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec(
			"INSERT INTO courses (id, title, title_normalized, department, status, instructor_id, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, now(), now())",
			uuid.NewString(), c.Title, normalized, c.Department, c.Status, instructorID, adminID,
		).Error; err != nil {
			log.Fatalf("failed to insert course %s: %v", c.Title, err)
		}
		fmt.Println("Seeded course:", c.Title)
	}
}
