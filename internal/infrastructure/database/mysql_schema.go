package database

// mysqlSchema creates the document and membership tables on MySQL 8
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS poker_tables (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		status VARCHAR(32) NOT NULL,
		creator_id VARCHAR(64) NOT NULL,
		data JSON NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_poker_tables_status (status),
		INDEX idx_poker_tables_created (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS poker_table_players (
		table_id VARCHAR(64) NOT NULL,
		user_id VARCHAR(64) NOT NULL,
		PRIMARY KEY (table_id, user_id),
		INDEX idx_poker_table_players_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS poker_games (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		table_id VARCHAR(64) NOT NULL,
		status VARCHAR(32) NOT NULL,
		creator_id VARCHAR(64) NOT NULL,
		data JSON NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_poker_games_table (table_id),
		INDEX idx_poker_games_status (status),
		INDEX idx_poker_games_created (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS poker_game_players (
		game_id VARCHAR(64) NOT NULL,
		user_id VARCHAR(64) NOT NULL,
		PRIMARY KEY (game_id, user_id),
		INDEX idx_poker_game_players_user (user_id)
	)`,
}
