package db

import (
	"time"
)

// Gender and preference enums. Preference adds "both" as a wildcard.
const (
	GenderBoy  = "boy"
	GenderGirl = "girl"

	PreferenceBoy  = "boy"
	PreferenceGirl = "girl"
	PreferenceBoth = "both"
)

// ValidGender reports whether g is a known gender value.
func ValidGender(g string) bool {
	return g == GenderBoy || g == GenderGirl
}

// ValidPreference reports whether p is a known preference value.
func ValidPreference(p string) bool {
	return p == PreferenceBoy || p == PreferenceGirl || p == PreferenceBoth
}

// User table. Accounts are anonymous (unique display name, no
// credentials) and ephemeral: ExpiresAt is set at registration and
// expired rows are purged by the janitor.
type User struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	Name       string    `gorm:"uniqueIndex;size:50;not null"`
	Image      string    `gorm:"size:512;not null"`
	Gender     string    `gorm:"size:8;not null;index:idx_gender_preference,priority:1"`
	Preference string    `gorm:"size:8;not null;index:idx_gender_preference,priority:2"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	ExpiresAt  time.Time `gorm:"index"`
}

// Expired reports whether the account has passed its expiry at time now.
// Every account is created with an expiry; a zero ExpiresAt counts as
// already expired, matching the expires_at predicates in the queries.
func (u *User) Expired(now time.Time) bool {
	return !u.ExpiresAt.After(now)
}

// Swipe represents an actor's one-way decision on a target.
//
// Composite PK: (ActorID, TargetID)
//   - A pair is swiped at most once, in exactly one direction: the row
//     either exists with its original Liked value or not at all. Inserts
//     use ON CONFLICT DO NOTHING, and zero affected rows surfaces the
//     "already swiped" conflict to the caller.
//
// Indexes:
//   - idx_target_liked(target_id, liked, created_at DESC, actor_id)
//     serves "who liked me" listings and counts with pagination, and the
//     O(1) reverse-like lookup during match detection.
//
// Fields:
//   - ActorID: the user swiping.
//   - TargetID: the user being swiped on.
//   - Liked: true for a right swipe, false for a left swipe.
//   - CreatedAt: when the swipe was recorded. Never updated.
type Swipe struct {
	ActorID   uint64    `gorm:"primaryKey;index:idx_target_liked,priority:4"`
	TargetID  uint64    `gorm:"primaryKey;index:idx_target_liked,priority:1"`
	Liked     bool      `gorm:"not null;type:tinyint(1);index:idx_target_liked,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_target_liked,priority:3,sort:desc"`
}

// Match is a mutual right-swipe between two users. A single row
// represents both sides, with the smaller id stored first, so the
// symmetry invariant cannot be half-written. Created inside the same
// transaction as the second party's right swipe.
type Match struct {
	UserAID   uint64    `gorm:"primaryKey"`
	UserBID   uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// NormalizePair orders a user-id pair into canonical match-row order.
func NormalizePair(x, y uint64) (uint64, uint64) {
	if x < y {
		return x, y
	}
	return y, x
}

// OtherUser returns the counterpart id for the given member of the pair.
func (m *Match) OtherUser(userID uint64) uint64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
