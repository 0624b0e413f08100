package models

import (
	"log"
	"time"

	"LinguaReel-server/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	if config.AppConfig == nil {
		log.Fatal("config.AppConfig is nil, call config.InitConfig first")
	}
	dsn := config.AppConfig.MySQL.DSN

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		&BookSection{},
		&SectionTranslation{},
		&File{},
		&SectionAudio{},
		&SectionFrame{},
		&SectionVideo{},
		&Task{},
	); err != nil {
		log.Fatalf("auto migration failed: %v", err)
	}

	log.Println("database connected and migrated")
}
