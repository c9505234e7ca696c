package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/skilltree/internal/progress"
)

// ProgressRepo persists per-user progress: completed skills, ignored skills
// and the last visited node. It implements progress.StateStore.
type ProgressRepo struct {
	db    *sql.DB
	locks *userLocks
}

var _ progress.StateStore = (*ProgressRepo)(nil)

// State returns the user's progress snapshot.
func (r *ProgressRepo) State(ctx context.Context, userID int) (progress.State, error) {
	return loadState(ctx, r.db, userID)
}

// Update applies fn to the user's current state and writes back the
// difference in one transaction. Updates for the same user are serialized.
func (r *ProgressRepo) Update(ctx context.Context, userID int, fn func(progress.State) progress.State) (progress.State, error) {
	unlock := r.locks.lock(userID)
	defer unlock()

	var next progress.State
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := loadState(ctx, tx, userID)
		if err != nil {
			return err
		}
		next = fn(cur.Clone())
		return writeDiff(ctx, tx, userID, cur, next)
	})
	if err != nil {
		return progress.State{}, err
	}
	return next, nil
}

func loadState(ctx context.Context, q querier, userID int) (progress.State, error) {
	st := progress.NewState()

	query, args := sqlb.Select("last_node_id").
		From(entsql.Table(UsersTable.Name)).
		Where(entsql.EQ("id", userID)).
		Query()
	var last sql.NullInt64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return progress.State{}, notFound(err, "user", userID)
	}
	if last.Valid {
		id := int(last.Int64)
		st.LastNode = &id
	}

	if err := loadSkillSet(ctx, q, CompletedSkillsTable.Name, userID, st.Completed); err != nil {
		return progress.State{}, err
	}
	if err := loadSkillSet(ctx, q, IgnoredSkillsTable.Name, userID, st.Ignored); err != nil {
		return progress.State{}, err
	}
	return st, nil
}

func loadSkillSet(ctx context.Context, q querier, table string, userID int, into map[int]bool) error {
	query, args := sqlb.Select("skill_id").
		From(entsql.Table(table)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		into[id] = true
	}
	return rows.Err()
}

func writeDiff(ctx context.Context, q querier, userID int, cur, next progress.State) error {
	now := time.Now().UTC()
	if err := writeSetDiff(ctx, q, CompletedSkillsTable.Name, userID, cur.Completed, next.Completed, now); err != nil {
		return err
	}
	if err := writeSetDiff(ctx, q, IgnoredSkillsTable.Name, userID, cur.Ignored, next.Ignored, now); err != nil {
		return err
	}

	if sameNode(cur.LastNode, next.LastNode) {
		return nil
	}
	upd := sqlb.Update(UsersTable.Name).Where(entsql.EQ("id", userID))
	if next.LastNode == nil {
		upd.SetNull("last_node_id")
	} else {
		upd.Set("last_node_id", *next.LastNode)
	}
	if _, err := exec(ctx, q, upd); err != nil {
		return fmt.Errorf("update last node of user %d: %w", userID, err)
	}
	return nil
}

func writeSetDiff(ctx context.Context, q querier, table string, userID int, cur, next map[int]bool, now time.Time) error {
	for id, on := range next {
		if !on || cur[id] {
			continue
		}
		if _, err := exec(ctx, q, sqlb.Insert(table).
			Columns("user_id", "skill_id", "created_at").
			Values(userID, id, now)); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	for id, on := range cur {
		if !on || next[id] {
			continue
		}
		if _, err := exec(ctx, q, sqlb.Delete(table).
			Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("skill_id", id)))); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

func sameNode(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// userLocks hands out one mutex per user so that read-modify-write updates
// of one user's progress never interleave.
type userLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int]*sync.Mutex)}
}

func (l *userLocks) lock(userID int) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
