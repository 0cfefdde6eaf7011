package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            user_id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            preferred_language TEXT NOT NULL DEFAULT 'en',
            status TEXT NOT NULL DEFAULT 'offline',
            is_assistant BOOLEAN NOT NULL DEFAULT FALSE,
            last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		// Singleton assistant identity: the partial unique index makes
		// concurrent create-if-absent provisioning race-free.
		`CREATE UNIQUE INDEX IF NOT EXISTS profiles_assistant_name_idx
            ON profiles (name) WHERE is_assistant;`,
		`CREATE TABLE IF NOT EXISTS chats (
            id SERIAL PRIMARY KEY,
            type TEXT NOT NULL CHECK (type IN ('direct', 'group')),
            name TEXT NOT NULL DEFAULT '',
            created_by INT NOT NULL,
            last_message_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS chat_members (
            chat_id INT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            user_id INT NOT NULL,
            PRIMARY KEY(chat_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS stickers (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            image_url TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            tags TEXT[] NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            chat_id INT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
            sender_id INT NOT NULL,
            kind TEXT NOT NULL DEFAULT 'text' CHECK (kind IN ('text', 'image', 'sticker', 'system')),
            content TEXT NOT NULL,
            reply_to INT REFERENCES messages(id),
            sticker_id INT REFERENCES stickers(id),
            from_assistant BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS messages_chat_created_idx
            ON messages (chat_id, created_at);`,
		// The composite primary key is the uniqueness guard for the whole
		// translation pipeline: duplicate fan-out runs land on ON CONFLICT.
		`CREATE TABLE IF NOT EXISTS translations (
            message_id INT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
            target_language TEXT NOT NULL,
            translated_text TEXT NOT NULL,
            original_text TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY(message_id, target_language)
        );`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
