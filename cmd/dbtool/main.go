package main

import (
	"database/sql"
	"flag"
	"log"
	"warehouse-route-service/internal/adapters/cache"
	"warehouse-route-service/internal/config"
	"warehouse-route-service/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool prepares the matrix cache schema. Postgres is used when
// DATABASE_URL is set, otherwise the local SQLite file at DB_PATH.
func main() {
	drop := flag.Bool("drop", false, "delete every cached matrix after creating the schema")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	conn, postgres, err := open()
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing matrix cache schema...")
	if postgres {
		err = cache.InitPostgresSchema(conn)
	} else {
		err = cache.InitSqliteSchema(conn)
	}
	if err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *drop {
		log.Println("Clearing cached matrices...")
		if err := clearMatrices(conn); err != nil {
			log.Fatalf("clear failed: %v", err)
		}
		log.Println("Cache cleared.")
	}
}

func open() (*sql.DB, bool, error) {
	if url := config.Get("DATABASE_URL", ""); url != "" {
		conn, err := db.Open(url)
		return conn, true, err
	}
	conn, err := db.OpenSqlite(config.Get("DB_PATH", "data/matrix.db"))
	return conn, false, err
}

func clearMatrices(conn *sql.DB) error {
	for _, stmt := range []string{"DELETE FROM matrix_rows", "DELETE FROM matrix_groups"} {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
