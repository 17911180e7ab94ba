// Command report prints operational summaries straight from the store:
// every unique match pair, or everyone who liked a named user.
//
// Usage:
//
//	report -matches
//	report -liked <name>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/companycrush/crush-backend/internal/config"
	"github.com/companycrush/crush-backend/internal/db"
	"github.com/companycrush/crush-backend/internal/repository"
)

func main() {
	matches := flag.Bool("matches", false, "list all match pairs")
	liked := flag.String("liked", "", "list users who liked the named user")
	flag.Parse()

	if !*matches && *liked == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.New()
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	ctx := context.Background()

	if *matches {
		if err := printMatches(ctx, database); err != nil {
			log.Fatalf("report failed: %v", err)
		}
		return
	}

	if err := printAdmirers(ctx, database, *liked); err != nil {
		log.Fatalf("report failed: %v", err)
	}
}

func printMatches(ctx context.Context, gdb *gorm.DB) error {
	var rows []struct {
		AName string `gorm:"column:a_name"`
		BName string `gorm:"column:b_name"`
	}
	err := gdb.WithContext(ctx).
		Table("matches m").
		Select("ua.name AS a_name, ub.name AS b_name").
		Joins("JOIN users ua ON ua.id = m.user_a_id").
		Joins("JOIN users ub ON ub.id = m.user_b_id").
		Order("m.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	fmt.Printf("Found %d match(es):\n\n", len(rows))
	for i, row := range rows {
		fmt.Printf("Match #%d: %s matched with %s\n", i+1, row.AName, row.BName)
	}
	return nil
}

func printAdmirers(ctx context.Context, gdb *gorm.DB, name string) error {
	users := repository.NewUserRepository(gdb)
	swipes := repository.NewSwipeRepository(gdb)

	target, err := users.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("no user found with name %q: %w", name, err)
	}

	fmt.Printf("Found user: %s (id %d)\n\n", target.Name, target.ID)

	admirers, _, err := swipes.ListAdmirers(ctx, target.ID, nil, 1000)
	if err != nil {
		return err
	}

	if len(admirers) == 0 {
		fmt.Println("No one has liked this profile yet.")
		return nil
	}

	fmt.Printf("%d user(s) liked this profile:\n\n", len(admirers))
	fmt.Printf("%-20s | %s\n", "Name", "Liked at")
	fmt.Println("--------------------------------------------")
	for _, a := range admirers {
		fmt.Printf("%-20s | %s\n", a.Name, a.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
