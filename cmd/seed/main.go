// Command seed populates a fresh database with a demo family, a handful of
// pool tasks, and a starter shop catalog.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"famili/internal/database"
	"famili/internal/model"
	"famili/internal/store"
)

func main() {
	dbPath := flag.String("db", envOr("FAMILI_DB_PATH", "famili.db"), "database path")
	adminID := flag.String("admin", "", "external id for the admin parent (random if empty)")
	flag.Parse()

	if *adminID == "" {
		*adminID = uuid.NewString()
	}

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users := store.NewUserStore(db)
	tasks := store.NewTaskStore(db)
	shop := store.NewShopStore(db)

	parent, err := users.Create("Alex", *adminID, model.RoleParent, true)
	if err != nil {
		log.Fatalf("create parent: %v", err)
	}

	children := []string{"Robin", "Sam"}
	for _, name := range children {
		child, err := users.Create(name, uuid.NewString(), model.RoleChild, false)
		if err != nil {
			log.Fatalf("create child %s: %v", name, err)
		}
		fmt.Printf("child   %-8s external_id=%s\n", child.Name, child.ExternalID)
	}

	pool := []struct {
		title       string
		description string
		reward      int
	}{
		{"Take out the trash", "All bins, including recycling", 10},
		{"Empty the dishwasher", "Put everything back in its place", 15},
		{"Vacuum the living room", "Under the couch too", 20},
		{"Water the plants", "Balcony and kitchen window", 10},
	}
	for _, p := range pool {
		if _, err := tasks.Create(p.title, p.description, p.reward, nil, true); err != nil {
			log.Fatalf("create task %q: %v", p.title, err)
		}
	}

	catalog := []struct {
		title       string
		description string
		price       int
	}{
		{"30 min screen time", "Redeemable any school day", 30},
		{"Movie night pick", "You choose, everyone watches", 50},
		{"Ice cream trip", "One scoop, any flavor", 40},
		{"Stay up late pass", "One extra hour on a weekend", 60},
	}
	for _, c := range catalog {
		if _, err := shop.CreateItem(c.title, c.description, c.price); err != nil {
			log.Fatalf("create item %q: %v", c.title, err)
		}
	}

	fmt.Printf("admin   %-8s external_id=%s\n", parent.Name, parent.ExternalID)
	fmt.Printf("seeded %d tasks and %d shop items into %s\n", len(pool), len(catalog), *dbPath)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
