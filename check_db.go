package main

import (
	"fmt"
	"log"

	"poctracker/internal/app/ds"
	"poctracker/internal/app/dsn"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Утилита для быстрой проверки содержимого БД
func main() {
	_ = godotenv.Load()

	db, err := gorm.Open(postgres.Open(dsn.FromEnv()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var requests []ds.POCRequest
	err = db.Order("created_at DESC").Limit(20).Find(&requests).Error
	if err != nil {
		log.Fatal("Failed to get POC requests:", err)
	}

	fmt.Println("POC requests in database:")
	for _, req := range requests {
		deleted := ""
		if req.DeletedAt != nil {
			deleted = " (deleted)"
		}
		fmt.Printf("%s  %-14s  %-20s  sockets=%d%s\n",
			req.ReferenceCode, req.Status, req.CustomerName, req.TotalSockets, deleted)
	}
}
