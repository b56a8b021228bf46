package database

// postgresSchema creates the document and membership tables on PostgreSQL
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS poker_tables (
		id VARCHAR(64) PRIMARY KEY,
		status VARCHAR(32) NOT NULL,
		creator_id VARCHAR(64) NOT NULL,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poker_tables_status ON poker_tables (status)`,
	`CREATE INDEX IF NOT EXISTS idx_poker_tables_created ON poker_tables (created_at)`,
	`CREATE TABLE IF NOT EXISTS poker_table_players (
		table_id VARCHAR(64) NOT NULL,
		user_id VARCHAR(64) NOT NULL,
		PRIMARY KEY (table_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poker_table_players_user ON poker_table_players (user_id)`,
	`CREATE TABLE IF NOT EXISTS poker_games (
		id VARCHAR(64) PRIMARY KEY,
		table_id VARCHAR(64) NOT NULL,
		status VARCHAR(32) NOT NULL,
		creator_id VARCHAR(64) NOT NULL,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poker_games_table ON poker_games (table_id)`,
	`CREATE INDEX IF NOT EXISTS idx_poker_games_status ON poker_games (status)`,
	`CREATE INDEX IF NOT EXISTS idx_poker_games_created ON poker_games (created_at)`,
	`CREATE TABLE IF NOT EXISTS poker_game_players (
		game_id VARCHAR(64) NOT NULL,
		user_id VARCHAR(64) NOT NULL,
		PRIMARY KEY (game_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_poker_game_players_user ON poker_game_players (user_id)`,
}
