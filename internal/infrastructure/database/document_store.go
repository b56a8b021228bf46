package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pokertrack/pokertrack-server/internal/domain/entities"
	"github.com/pokertrack/pokertrack-server/internal/domain/repositories"
	"github.com/pokertrack/pokertrack-server/pkg/db"
)

// collection describes how one resource kind is laid out: a row per document
// holding the JSON body plus the columns listings filter on, and a membership
// table mapping documents to the users that take part in them.
type collection struct {
	name      string // poker_tables
	members   string // poker_table_players
	memberKey string // table_id
	// parentColumn is an extra indexed column (games are filtered by table_id)
	parentColumn string
}

var (
	tablesCollection = collection{
		name:      "poker_tables",
		members:   "poker_table_players",
		memberKey: "table_id",
	}
	gamesCollection = collection{
		name:         "poker_games",
		members:      "poker_game_players",
		memberKey:    "game_id",
		parentColumn: "table_id",
	}
)

// document is the storage form of a table or a game
type document struct {
	ID        string
	Status    string
	CreatorID string
	Parent    string
	Data      []byte
	Members   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// listQuery is the filter applied by documentStore.list
type listQuery struct {
	Member string
	Status string
	Parent string
	Offset int
	Limit  int
}

// queryBuilder numbers placeholders for the active dialect
type queryBuilder struct {
	driver string
	sb     strings.Builder
	args   []interface{}
}

func (b *queryBuilder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

// arg records v and returns its placeholder
func (b *queryBuilder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return db.Placeholder(b.driver, len(b.args))
}

func (b *queryBuilder) String() string {
	return b.sb.String()
}

// documentStore persists documents of one collection through database/sql
type documentStore struct {
	conn db.Database
	coll collection
}

func newDocumentStore(conn db.Database, coll collection) *documentStore {
	return &documentStore{conn: conn, coll: coll}
}

func (s *documentStore) insert(ctx context.Context, doc document) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert into %s: %w", s.coll.name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b := &queryBuilder{driver: s.conn.DriverName()}
	columns := "id, status, creator_id, data, created_at, updated_at"
	values := []string{
		b.arg(doc.ID), b.arg(doc.Status), b.arg(doc.CreatorID), b.arg(doc.Data),
		b.arg(doc.CreatedAt), b.arg(doc.UpdatedAt),
	}
	if s.coll.parentColumn != "" {
		columns += ", " + s.coll.parentColumn
		values = append(values, b.arg(doc.Parent))
	}
	b.write("INSERT INTO ", s.coll.name, " (", columns, ") VALUES (", strings.Join(values, ", "), ")")

	if _, err = tx.ExecContext(ctx, b.String(), b.args...); err != nil {
		if db.IsDuplicateKey(err) {
			return fmt.Errorf("%s %s: %w", s.coll.name, doc.ID, db.ErrAlreadyExists)
		}
		return fmt.Errorf("insert into %s: %w", s.coll.name, err)
	}
	if err = s.replaceMembers(ctx, tx, doc.ID, doc.Members); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert into %s: %w", s.coll.name, err)
	}
	return nil
}

func (s *documentStore) update(ctx context.Context, doc document) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update of %s: %w", s.coll.name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b := &queryBuilder{driver: s.conn.DriverName()}
	b.write("UPDATE ", s.coll.name, " SET status = ", b.arg(doc.Status),
		", creator_id = ", b.arg(doc.CreatorID),
		", data = ", b.arg(doc.Data),
		", updated_at = ", b.arg(doc.UpdatedAt))
	if s.coll.parentColumn != "" {
		b.write(", ", s.coll.parentColumn, " = ", b.arg(doc.Parent))
	}
	b.write(" WHERE id = ", b.arg(doc.ID))

	res, err := tx.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.coll.name, err)
	}
	// MySQL reports zero affected rows when nothing changed, so an existence
	// check decides between "unchanged" and "missing".
	if affected, _ := res.RowsAffected(); affected == 0 {
		var one int
		q := "SELECT 1 FROM " + s.coll.name + " WHERE id = " + db.Placeholder(s.conn.DriverName(), 1)
		if err = tx.QueryRowContext(ctx, q, doc.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%s %s: %w", s.coll.name, doc.ID, entities.ErrNotFound)
			}
			return fmt.Errorf("check %s: %w", s.coll.name, err)
		}
	}
	if err = s.replaceMembers(ctx, tx, doc.ID, doc.Members); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update of %s: %w", s.coll.name, err)
	}
	return nil
}

func (s *documentStore) replaceMembers(ctx context.Context, tx *sql.Tx, id string, members []string) error {
	driver := s.conn.DriverName()
	del := "DELETE FROM " + s.coll.members + " WHERE " + s.coll.memberKey + " = " + db.Placeholder(driver, 1)
	if _, err := tx.ExecContext(ctx, del, id); err != nil {
		return fmt.Errorf("clear members of %s: %w", s.coll.name, err)
	}
	ins := "INSERT INTO " + s.coll.members + " (" + s.coll.memberKey + ", user_id) VALUES (" +
		db.Placeholder(driver, 1) + ", " + db.Placeholder(driver, 2) + ")"
	seen := make(map[string]struct{}, len(members))
	for _, userID := range members {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		if _, err := tx.ExecContext(ctx, ins, id, userID); err != nil {
			return fmt.Errorf("add member to %s: %w", s.coll.name, err)
		}
	}
	return nil
}

func (s *documentStore) get(ctx context.Context, id string) ([]byte, error) {
	q := "SELECT data FROM " + s.coll.name + " WHERE id = " + db.Placeholder(s.conn.DriverName(), 1)
	row := s.conn.QueryRow(ctx, q, id)
	if row == nil {
		return nil, db.ErrNoDatabase
	}
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", s.coll.name, id, entities.ErrNotFound)
		}
		return nil, fmt.Errorf("get from %s: %w", s.coll.name, err)
	}
	return data, nil
}

// buildList renders the listing query; split out so it can be checked without a database
func (s *documentStore) buildList(q listQuery) *queryBuilder {
	b := &queryBuilder{driver: s.conn.DriverName()}
	b.write("SELECT d.data FROM ", s.coll.name, " d")
	if q.Member != "" {
		b.write(" JOIN ", s.coll.members, " m ON m.", s.coll.memberKey, " = d.id AND m.user_id = ", b.arg(q.Member))
	}
	b.write(" WHERE 1=1")
	if q.Status != "" {
		b.write(" AND d.status = ", b.arg(q.Status))
	}
	if q.Parent != "" && s.coll.parentColumn != "" {
		b.write(" AND d.", s.coll.parentColumn, " = ", b.arg(q.Parent))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = repositories.DefaultListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.write(" ORDER BY d.created_at DESC LIMIT ", b.arg(limit), " OFFSET ", b.arg(offset))
	return b
}

func (s *documentStore) list(ctx context.Context, q listQuery) ([][]byte, error) {
	b := s.buildList(q)
	rows, err := s.conn.Query(ctx, b.String(), b.args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.coll.name, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.coll.name, err)
		}
		out = append(out, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.coll.name, err)
	}
	return out, nil
}

func (s *documentStore) delete(ctx context.Context, id string) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete from %s: %w", s.coll.name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.replaceMembers(ctx, tx, id, nil); err != nil {
		return err
	}
	q := "DELETE FROM " + s.coll.name + " WHERE id = " + db.Placeholder(s.conn.DriverName(), 1)
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", s.coll.name, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = fmt.Errorf("%s %s: %w", s.coll.name, id, entities.ErrNotFound)
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete from %s: %w", s.coll.name, err)
	}
	return nil
}

func (s *documentStore) countByParent(ctx context.Context, parent string) (int, error) {
	if s.coll.parentColumn == "" {
		return 0, fmt.Errorf("%s has no parent column", s.coll.name)
	}
	q := "SELECT COUNT(*) FROM " + s.coll.name + " WHERE " + s.coll.parentColumn + " = " +
		db.Placeholder(s.conn.DriverName(), 1)
	row := s.conn.QueryRow(ctx, q, parent)
	if row == nil {
		return 0, db.ErrNoDatabase
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.coll.name, err)
	}
	return n, nil
}
