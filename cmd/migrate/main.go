package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"infograph/internal/config"
)

const usage = "Usage: migrate [-path dir] up|down|steps N|force V|version"

func main() {
	path := flag.String("path", "db/migrations", "directory containing migration files")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("migrate: loading config: %v", err)
	}

	m, err := migrate.New("file://"+*path, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("migrate: opening source: %v", err)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		report(m.Up(), "all pending migrations applied")

	case "down":
		report(m.Down(), "all migrations reverted")

	case "steps":
		n := intArg(args, 1, "steps requires a number argument")
		report(m.Steps(n), fmt.Sprintf("applied %d migration steps", n))

	case "force":
		// Clears a dirty state after a failed migration.
		v := intArg(args, 1, "force requires a version argument")
		report(m.Force(v), fmt.Sprintf("forced version to %d", v))

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("migrate: reading version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n%s\n", args[0], usage)
		os.Exit(1)
	}
}

func intArg(args []string, i int, msg string) int {
	if len(args) <= i {
		log.Fatal("migrate: " + msg)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		log.Fatalf("migrate: invalid argument %q: %v", args[i], err)
	}
	return n
}

func report(err error, ok string) {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate: %v", err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("no change")
		return
	}
	log.Println(ok)
}
