// Package testutil provides the in-memory database used by package
// tests. The schema mirrors the production DDL with sqlite types so
// repository SQL runs unchanged.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	phone TEXT,
	blood_group TEXT NOT NULL,
	user_type TEXT NOT NULL,
	location TEXT NOT NULL,
	availability TEXT,
	is_verified BOOLEAN NOT NULL DEFAULT 0,
	lat REAL NOT NULL DEFAULT 0,
	lng REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE donors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL UNIQUE,
	last_donation_date DATETIME,
	total_donations INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	current_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens_earned INTEGER NOT NULL DEFAULT 0,
	badge_level TEXT NOT NULL DEFAULT 'novice',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE patients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL UNIQUE,
	medical_condition TEXT NOT NULL,
	urgency_level TEXT NOT NULL,
	next_required_date DATETIME,
	hemoglobin_level REAL,
	weight_kg REAL,
	age INTEGER,
	medical_history TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE matches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	donor_id INTEGER NOT NULL,
	patient_id INTEGER NOT NULL,
	match_score INTEGER NOT NULL,
	compatibility_score INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	scheduled_date DATETIME,
	distance_km REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (donor_id) REFERENCES donors(id),
	FOREIGN KEY (patient_id) REFERENCES patients(id)
);

CREATE TABLE donation_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	donor_id INTEGER NOT NULL,
	patient_id INTEGER NOT NULL,
	donation_date DATETIME NOT NULL,
	amount_ml INTEGER NOT NULL,
	hospital TEXT NOT NULL,
	status TEXT NOT NULL,
	hemoglobin REAL,
	blood_pressure TEXT,
	weight_kg REAL,
	temperature REAL,
	tokens_earned INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (donor_id) REFERENCES donors(id),
	FOREIGN KEY (patient_id) REFERENCES patients(id)
);

CREATE TABLE donor_badges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	donor_id INTEGER NOT NULL,
	badge_type TEXT NOT NULL,
	donation_count INTEGER NOT NULL DEFAULT 0,
	description TEXT,
	earned_at DATETIME NOT NULL,
	FOREIGN KEY (donor_id) REFERENCES donors(id)
);

CREATE TABLE blockchain_tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	donor_id INTEGER NOT NULL,
	token_amount INTEGER NOT NULL,
	earned_from TEXT NOT NULL,
	transaction_ref TEXT,
	earned_at DATETIME NOT NULL,
	FOREIGN KEY (donor_id) REFERENCES donors(id)
);

CREATE TABLE donor_rewards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reward_type TEXT NOT NULL,
	reward_value TEXT NOT NULL,
	provider TEXT NOT NULL,
	description TEXT,
	tokens_required INTEGER NOT NULL,
	expires_at DATETIME,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL
);

CREATE TABLE reward_redemptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	reward_id INTEGER NOT NULL,
	donor_id INTEGER NOT NULL,
	tokens_spent INTEGER NOT NULL,
	redeemed_at DATETIME NOT NULL,
	FOREIGN KEY (reward_id) REFERENCES donor_rewards(id),
	FOREIGN KEY (donor_id) REFERENCES donors(id)
);

CREATE TABLE ml_predictions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_id INTEGER NOT NULL,
	next_required_date DATETIME NOT NULL,
	urgency_score INTEGER NOT NULL,
	predicted_amount_ml INTEGER NOT NULL,
	confidence_level INTEGER NOT NULL,
	factors_considered TEXT,
	recommendations TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (patient_id) REFERENCES patients(id)
);

CREATE TABLE messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id INTEGER NOT NULL,
	recipient_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (sender_id) REFERENCES users(id),
	FOREIGN KEY (recipient_id) REFERENCES users(id)
);
`

// OpenDB returns an in-memory database with the full schema applied.
// The database is closed when the test finishes.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	// A second pooled connection would see its own empty :memory: DB.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("create test schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
