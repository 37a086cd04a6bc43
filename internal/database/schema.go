package database

import (
	"context"
	"database/sql"
)

// schemaStatements holds the full application schema as idempotent
// CREATE TABLE IF NOT EXISTS statements, executed one by one because
// the MySQL driver does not allow multi-statement Exec by default.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(64) NOT NULL,
		email VARCHAR(255) NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		phone VARCHAR(32) NULL,
		blood_group VARCHAR(3) NOT NULL,
		user_type VARCHAR(8) NOT NULL,
		location VARCHAR(255) NOT NULL,
		availability VARCHAR(255) NULL,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		lat DOUBLE NOT NULL DEFAULT 0,
		lng DOUBLE NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS donors (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		last_donation_date DATETIME NULL,
		total_donations INT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		current_tokens INT NOT NULL DEFAULT 0,
		total_tokens_earned INT NOT NULL DEFAULT 0,
		badge_level VARCHAR(16) NOT NULL DEFAULT 'novice',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_donors_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		medical_condition VARCHAR(128) NOT NULL DEFAULT 'thalassemia',
		urgency_level VARCHAR(8) NOT NULL DEFAULT 'medium',
		next_required_date DATETIME NULL,
		hemoglobin_level DOUBLE NULL,
		weight_kg DOUBLE NULL,
		age INT NULL,
		medical_history TEXT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE KEY uq_patients_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		donor_id BIGINT UNSIGNED NOT NULL,
		patient_id BIGINT UNSIGNED NOT NULL,
		match_score INT NOT NULL DEFAULT 0,
		compatibility_score INT NOT NULL DEFAULT 0,
		status VARCHAR(10) NOT NULL DEFAULT 'pending',
		scheduled_date DATETIME NULL,
		distance_km DOUBLE NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		KEY idx_matches_donor (donor_id),
		KEY idx_matches_patient (patient_id)
	)`,
	`CREATE TABLE IF NOT EXISTS donation_history (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		donor_id BIGINT UNSIGNED NOT NULL,
		patient_id BIGINT UNSIGNED NOT NULL,
		donation_date DATETIME NOT NULL,
		amount_ml INT NOT NULL DEFAULT 450,
		hospital VARCHAR(255) NOT NULL,
		status VARCHAR(10) NOT NULL DEFAULT 'completed',
		hemoglobin DOUBLE NULL,
		blood_pressure VARCHAR(16) NULL,
		weight_kg DOUBLE NULL,
		temperature DOUBLE NULL,
		tokens_earned INT NOT NULL DEFAULT 10,
		created_at DATETIME NOT NULL,
		KEY idx_donations_donor (donor_id),
		KEY idx_donations_pair (donor_id, patient_id)
	)`,
	`CREATE TABLE IF NOT EXISTS donor_badges (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		donor_id BIGINT UNSIGNED NOT NULL,
		badge_type VARCHAR(16) NOT NULL,
		donation_count INT NOT NULL,
		description VARCHAR(255) NULL,
		earned_at DATETIME NOT NULL,
		KEY idx_badges_donor (donor_id)
	)`,
	`CREATE TABLE IF NOT EXISTS blockchain_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		donor_id BIGINT UNSIGNED NOT NULL,
		token_amount INT NOT NULL,
		earned_from VARCHAR(12) NOT NULL,
		transaction_ref CHAR(36) NULL,
		earned_at DATETIME NOT NULL,
		KEY idx_tokens_donor (donor_id)
	)`,
	`CREATE TABLE IF NOT EXISTS donor_rewards (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reward_type VARCHAR(32) NOT NULL,
		reward_value VARCHAR(128) NOT NULL,
		provider VARCHAR(128) NOT NULL,
		description VARCHAR(255) NOT NULL,
		tokens_required INT NOT NULL,
		expires_at DATETIME NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reward_redemptions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reward_id BIGINT UNSIGNED NOT NULL,
		donor_id BIGINT UNSIGNED NOT NULL,
		tokens_spent INT NOT NULL,
		redeemed_at DATETIME NOT NULL,
		KEY idx_redemptions_donor (donor_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ml_predictions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		patient_id BIGINT UNSIGNED NOT NULL,
		next_required_date DATETIME NOT NULL,
		urgency_score INT NOT NULL,
		predicted_amount_ml INT NOT NULL DEFAULT 450,
		confidence_level INT NOT NULL,
		factors_considered TEXT NULL,
		recommendations TEXT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_predictions_patient (patient_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		sender_id BIGINT UNSIGNED NOT NULL,
		recipient_id BIGINT UNSIGNED NOT NULL,
		content TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL,
		KEY idx_messages_sender (sender_id),
		KEY idx_messages_recipient (recipient_id)
	)`,
}

// EnsureSchema creates any missing tables. It is safe to run on every
// startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
