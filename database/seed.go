package database

import (
	"fmt"
	"log"
	"os"

	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedDepartements(); err != nil {
		return fmt.Errorf("failed to seed departements: %w", err)
	}

	if err := s.SeedSalles(); err != nil {
		return fmt.Errorf("failed to seed salles: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	// Check if admin already exists
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	// Get admin credentials from environment variables
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	// Hash password
	passwordHash, salt, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		PasswordSalt: salt,
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// SeedDepartements creates the default academic departments
func (s *Seeder) SeedDepartements() error {
	// Check if departements already exist
	var count int64
	if err := s.db.Model(&model.Departement{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Departements already exist, skipping...")
		return nil
	}

	departements := []model.Departement{
		{Code: "GI", Nom: "Génie Informatique"},
		{Code: "GC", Nom: "Génie Civil"},
		{Code: "GEL", Nom: "Génie Électrique"},
		{Code: "GM", Nom: "Génie Mécanique"},
		{Code: "GTEL", Nom: "Génie des Télécommunications"},
		{Code: "GIND", Nom: "Génie Industriel"},
	}

	if err := s.db.Create(&departements).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d departements\n", len(departements))
	return nil
}

// SeedSalles creates the default defense rooms
func (s *Seeder) SeedSalles() error {
	// Check if salles already exist
	var count int64
	if err := s.db.Model(&model.Salle{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Salles already exist, skipping...")
		return nil
	}

	salles := []model.Salle{
		{Nom: "Amphi 250", Batiment: "Bâtiment A", Capacite: 250, EstDisponible: true},
		{Nom: "Amphi 100", Batiment: "Bâtiment A", Capacite: 100, EstDisponible: true},
		{Nom: "Salle S01", Batiment: "Bâtiment B", Capacite: 40, EstDisponible: true},
		{Nom: "Salle S02", Batiment: "Bâtiment B", Capacite: 40, EstDisponible: true},
		{Nom: "Salle de Conférence", Batiment: "Bâtiment C", Capacite: 60, EstDisponible: true},
	}

	if err := s.db.Create(&salles).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d salles\n", len(salles))
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
