package storage

import (
	"courtside-server/models"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.Category{},
		&models.User{},
		&models.Court{},
		&models.Schedule{},
		&models.Preference{},
		&models.Reservation{},
		&models.ReservationPlayer{},
		&models.Review{},
		&models.PairWeight{},
		&models.UserWeight{},
		&models.NotificationLog{},
		&models.AuditLog{},
	)

	// Slot uniqueness must ignore cancelled/expired rows so a freed slot can
	// be rebooked. AutoMigrate cannot express a partial index.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_court_date_slot_active ON reservations (court_id, date, schedule_id) WHERE status IN ('reserved', 'confirmed') AND deleted_at IS NULL;")
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	return db
}
