package db

import (
	"os"
	"strconv"

	"gorm.io/gorm"
)

func GetDB() (*gorm.DB, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	port, err := strconv.ParseUint(dbPort, 10, 32)
	if err != nil {
		port = 5432 // Puerto por defecto de PostgreSQL
	}

	dbName := os.Getenv("DB_NAME")
	dbSecretID := os.Getenv("DB_SECRET_ID")
	return Conectar(uint(port), dbHost, dbName, dbSecretID)
}
