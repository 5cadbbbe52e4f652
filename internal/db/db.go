package db

import (
	"database/sql"
	"embed"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/go-sql-driver/mysql"

	"harcama/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// EnsureDatabase creates the target database if it does not exist yet,
// over a connection that selects no database.
func EnsureDatabase(cfg config.Config) error {
	server, err := sql.Open("mysql", cfg.ServerDSN())
	if err != nil {
		return fmt.Errorf("open server connection: %w", err)
	}
	defer server.Close()

	_, err = server.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.DBName))
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}

func InitDB(cfg config.Config) *sql.DB {
	if err := EnsureDatabase(cfg); err != nil {
		log.Fatal("❌ Veritabanı oluşturulamadı:", err)
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Fatal("❌ Veritabanına bağlanılamadı:", err)
	}

	// Bounded pool: transactional operations pin a connection for the
	// duration of the lock + commit sequence.
	db.SetMaxOpenConns(10)

	err = db.Ping()
	if err != nil {
		log.Fatal("❌ Veritabanı yanıt vermiyor:", err)
	}

	log.Println("✅ Veritabanına bağlanıldı")
	return db
}

// RunMigrations applies the embedded schema migrations. Opens its own
// connection so the migration lock does not sit on the application pool.
func RunMigrations(cfg config.Config) {
	migrateDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Fatal("Migration bağlantısı açılamadı:", err)
	}
	defer migrateDB.Close()

	driver, err := migratemysql.WithInstance(migrateDB, &migratemysql.Config{})
	if err != nil {
		log.Fatal("Migration hatası:", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		log.Fatal("Migration hatası:", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "mysql", driver)
	if err != nil {
		log.Fatal("Migration hatası:", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("Migration hatası:", err)
	}
	log.Println("Migration tamamlandı")
}
