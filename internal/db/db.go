package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yklab/tutor-platform/internal/tutoring"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}

// Migrate creates/updates tables for every persisted entity.
func Migrate(gdb *gorm.DB) {
	if err := gdb.AutoMigrate(
		&tutoring.Session{},
		&tutoring.ChatLog{},
		&tutoring.PracticeProblem{},
		&tutoring.Quiz{},
		&tutoring.Note{},
		&tutoring.SessionPerformance{},
		&tutoring.GenerationJob{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
}
