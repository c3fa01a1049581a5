package postgres

import (
	"database/sql"
	"fmt"

	"event-ticketer/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(150) UNIQUE NOT NULL,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			email VARCHAR(255) UNIQUE NOT NULL,
			role VARCHAR(20) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id SERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date DATE NOT NULL,
			start_time VARCHAR(8) NOT NULL,
			venue VARCHAR(300) NOT NULL,
			latitude NUMERIC(9,6),
			longitude NUMERIC(9,6),
			ticket_price NUMERIC(10,2) NOT NULL,
			ticket_availability INTEGER NOT NULL CHECK (ticket_availability >= 0),
			organizer_id INTEGER NOT NULL REFERENCES users(id),
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			moderation_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			moderation_notes TEXT,
			moderated_by INTEGER REFERENCES users(id),
			moderated_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			attendee_id INTEGER NOT NULL REFERENCES users(id),
			event_id INTEGER NOT NULL REFERENCES events(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'paid',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS carts (
			id SERIAL PRIMARY KEY,
			user_id INTEGER UNIQUE NOT NULL REFERENCES users(id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS cart_items (
			id SERIAL PRIMARY KEY,
			cart_id INTEGER NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			event_id INTEGER NOT NULL REFERENCES events(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (cart_id, event_id)
		)`,

		`CREATE TABLE IF NOT EXISTS chat_rooms (
			id SERIAL PRIMARY KEY,
			event_id INTEGER UNIQUE NOT NULL REFERENCES events(id),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id SERIAL PRIMARY KEY,
			room_id INTEGER NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
			sender_id INTEGER NOT NULL REFERENCES users(id),
			content VARCHAR(1000) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_events_published ON events(is_published, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_organizer ON events(organizer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_moderation ON events(moderation_status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_attendee ON orders(attendee_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_event_status ON orders(event_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_cart_items_cart ON cart_items(cart_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages(room_id, created_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
