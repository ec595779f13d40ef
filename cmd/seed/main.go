package main

import (
	"log"
	"os"
	"time"

	"trace-journal-be/internal/model"
	"trace-journal-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeds a demo account with two devices and a handful of entries, enough to
// exercise the editing flow end to end. The device tokens are printed so the
// simulator (and curl) can log in.
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

	color.Cyan("Seeding demo data...")

	user := seedUser(db, "demo@tracejournal.app")
	phone := seedDevice(db, user.Id, "Demo Phone", "ios", "demo-phone-token")
	tablet := seedDevice(db, user.Id, "Demo Tablet", "android", "demo-tablet-token")
	seedEntries(db, user.Id, phone.Id)

	color.Green("✅ Seed complete.")
	color.Yellow("User:    %s (%s)", user.Email, user.Id)
	color.Yellow("Phone:   %s  token=demo-phone-token", phone.Id)
	color.Yellow("Tablet:  %s  token=demo-tablet-token", tablet.Id)
}

func seedUser(db *gorm.DB, email string) *model.User {
	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		color.Yellow("User %s already exists, reusing", email)
		return &existing
	}

	user := &model.User{Id: uuid.New(), Email: email}
	if err := db.Create(user).Error; err != nil {
		log.Fatalf("Error: Failed to seed user: %v", err)
	}
	return user
}

func seedDevice(db *gorm.DB, userId uuid.UUID, name, platform, token string) *model.Device {
	var existing model.Device
	if err := db.Where("user_id = ? AND name = ?", userId, name).First(&existing).Error; err == nil {
		color.Yellow("Device %q already exists, reusing", name)
		return &existing
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash device token: %v", err)
	}

	device := &model.Device{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      name,
		Platform:  platform,
		TokenHash: string(hash),
	}
	if err := db.Create(device).Error; err != nil {
		log.Fatalf("Error: Failed to seed device: %v", err)
	}
	return device
}

func seedEntries(db *gorm.DB, userId, originId uuid.UUID) {
	var count int64
	db.Model(&model.Entry{}).Where("user_id = ?", userId).Count(&count)
	if count > 0 {
		color.Yellow("Entries already exist, skipping")
		return
	}

	due := time.Now().Add(48 * time.Hour)
	entries := []model.Entry{
		{
			Id:                uuid.New(),
			UserId:            userId,
			Version:           1,
			LastEditingOrigin: originId.String(),
			Title:             "Morning pages",
			Content:           `{"root":{"children":[{"type":"paragraph","children":[{"type":"text","text":"Slept well, long walk before breakfast."}]}]}}`,
			Status:            "none",
			Mood:              4,
		},
		{
			Id:                uuid.New(),
			UserId:            userId,
			Version:           1,
			LastEditingOrigin: originId.String(),
			Title:             "Call the dentist",
			Content:           `{"root":{"children":[{"type":"paragraph","children":[{"type":"text","text":"Reschedule the cleaning appointment."}]}]}}`,
			Status:            "open",
			DueAt:             &due,
		},
		{
			Id:                uuid.New(),
			UserId:            userId,
			Version:           3,
			LastEditingOrigin: originId.String(),
			Title:             "Trip notes",
			Content:           `{"root":{"children":[{"type":"paragraph","children":[{"type":"text","text":"Edited on two devices already."}]}]}}`,
			Status:            "none",
			Mood:              5,
			Location:          datatypes.JSON([]byte(`{"name":"Lisbon","latitude":38.7223,"longitude":-9.1393}`)),
		},
	}

	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			log.Fatalf("Error: Failed to seed entry: %v", err)
		}
	}
	color.Green("Seeded %d entries", len(entries))
}
