package main

import (
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/trivia-engine/internal/config"
)

func main() {
	up := flag.Bool("up", false, "применить все миграции")
	down := flag.Bool("down", false, "откатить все миграции")
	force := flag.Int("force", -1, "принудительно выставить версию (сброс dirty-состояния)")
	flag.Parse()

	if countSet(*up, *down, *force >= 0) != 1 {
		log.Println("Укажите ровно один из флагов: -up, -down, -force N")
		flag.Usage()
		os.Exit(2)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case *up:
		err = m.Up()
	case *down:
		err = m.Down()
	default:
		log.Printf("Forcing migration version to %d...", *force)
		err = m.Force(*force)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("Изменений нет, база данных уже актуальна.")
		return
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("Failed to read migration version: %v", err)
	}
	log.Printf("Готово. Версия: %d, dirty: %t", version, dirty)
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
