package models

import (
	"log"

	"github.com/mmdatafocus/checkin_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&CheckinRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
