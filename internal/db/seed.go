package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo users and
// swipes.
//
// Behavior:
//  1. Clears existing data in users, swipes and matches tables.
//  2. Creates 20 users (10 boys, 10 girls) with mixed preferences.
//  3. Generates swipes with ~70% right swipes; every 3rd pair is forced
//     mutual so the demo always contains matches.
//  4. Inserts the match rows implied by mutual right swipes.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(gdb *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearAll(gdb); err != nil {
		return err
	}

	switch gdb.Dialector.Name() {
	case "mysql":
		gdb.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		gdb.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	// --- Seed Users (10 boys, 10 girls) ---
	for i := 1; i <= 20; i++ {
		gender := GenderBoy
		preference := PreferenceGirl
		if i > 10 {
			gender = GenderGirl
			preference = PreferenceBoy
		}
		// every 4th user prefers both
		if i%4 == 0 {
			preference = PreferenceBoth
		}

		user := User{
			Name:       fmt.Sprintf("user%d", i),
			Image:      fmt.Sprintf("https://images.example.com/profiles/user%d.jpg", i),
			Gender:     gender,
			Preference: preference,
			ExpiresAt:  time.Now().Add(24 * time.Hour),
		}
		if err := gdb.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Seed Swipes ---
	var users []User
	if err := gdb.Order("id").Find(&users).Error; err != nil {
		return err
	}

	counter := 0
	for _, actor := range users {
		for j := 0; j < 12; j++ {
			target := users[r.Intn(len(users))]
			if actor.ID == target.ID {
				continue
			}
			if !mutuallyCompatible(actor, target) {
				continue
			}

			liked := r.Intn(100) < 70

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				liked = true
				recip := Swipe{ActorID: target.ID, TargetID: actor.ID, Liked: true}
				gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&recip)
			}

			swipe := Swipe{ActorID: actor.ID, TargetID: target.ID, Liked: liked}
			if err := gdb.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&swipe).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}

			counter++
		}
	}

	// --- Derive matches from mutual right swipes ---
	var rights []Swipe
	if err := gdb.Where("liked = ?", true).Find(&rights).Error; err != nil {
		return err
	}
	rightSet := make(map[[2]uint64]bool, len(rights))
	for _, s := range rights {
		rightSet[[2]uint64{s.ActorID, s.TargetID}] = true
	}
	matched := 0
	for _, s := range rights {
		if s.ActorID > s.TargetID {
			continue // visit each pair once
		}
		if rightSet[[2]uint64{s.TargetID, s.ActorID}] {
			a, b := NormalizePair(s.ActorID, s.TargetID)
			m := Match{UserAID: a, UserBID: b}
			if err := gdb.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&m).Error; err != nil {
				return fmt.Errorf("failed to seed match: %w", err)
			}
			matched++
		}
	}
	log.Printf("Seeded swipes (%d matches).", matched)

	return nil
}

func clearAll(gdb *gorm.DB) error {
	for _, table := range []string{"matches", "swipes", "users"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func mutuallyCompatible(a, b User) bool {
	likes := func(u, other User) bool {
		return u.Preference == PreferenceBoth || u.Preference == other.Gender
	}
	return likes(a, b) && likes(b, a)
}
