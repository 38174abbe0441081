package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/config"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/logging"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// AutoMigrate creates tables, columns, and foreign keys. Partial
	// indexes it cannot express are created separately below.
	err := DB.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Group{},
		&models.Enrollment{},
		&models.Lesson{},
		&models.Payment{},
		&models.Notification{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestQuestionOption{},
		&models.TestResult{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	// At most one open attempt per (test, user): the check-then-insert
	// in the attempt lifecycle races under concurrency, and this index
	// makes the store the arbiter.
	openAttemptIndex := `CREATE UNIQUE INDEX IF NOT EXISTS idx_test_results_one_open
		ON test_results (test_id, user_id) WHERE completed_at IS NULL;`
	if err := DB.Exec(openAttemptIndex).Error; err != nil {
		log.Fatal("Failed to create open-attempt unique index", zap.Error(err))
	}

	resultsIndex := `CREATE INDEX IF NOT EXISTS idx_test_results_lookup
		ON test_results (test_id, user_id, created_at DESC);`
	if err := DB.Exec(resultsIndex).Error; err != nil {
		log.Fatal("Failed to create test results lookup index", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
