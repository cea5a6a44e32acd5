package models

import (
	"server/db"
)

func Init() {
	db.Instance.AutoMigrate(&Image{})
	db.Instance.AutoMigrate(&IngestTask{})
}
