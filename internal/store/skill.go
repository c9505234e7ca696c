package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// SkillRepo manages the skill catalogue.
type SkillRepo struct {
	db *sql.DB
}

var skillColumns = []string{"id", "title", "video_url", "text", "duration", "created_at"}

func scanSkill(row interface{ Scan(...any) error }) (Skill, error) {
	var s Skill
	err := row.Scan(&s.ID, &s.Title, &s.VideoURL, &s.Text, &s.Duration, &s.CreatedAt)
	return s, err
}

// Upsert inserts a skill or updates the existing skill with the same title.
// The returned skill carries the stored ID.
func (r *SkillRepo) Upsert(ctx context.Context, s Skill) (Skill, error) {
	if _, err := upsertSkill(ctx, r.db, s); err != nil {
		return Skill{}, err
	}
	return r.ByTitle(ctx, s.Title)
}

func upsertSkill(ctx context.Context, q querier, s Skill) (int, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := exec(ctx, q, sqlb.Insert(SkillsTable.Name).
		Columns("title", "video_url", "text", "duration", "created_at").
		Values(s.Title, s.VideoURL, s.Text, s.Duration, s.CreatedAt).
		OnConflict(
			entsql.ConflictColumns("title"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("video_url")
				u.SetExcluded("text")
				u.SetExcluded("duration")
			}),
		))
	if err != nil {
		return 0, fmt.Errorf("upsert skill %q: %w", s.Title, err)
	}
	return skillID(ctx, q, s.Title)
}

func skillID(ctx context.Context, q querier, title string) (int, error) {
	query, args := sqlb.Select("id").
		From(entsql.Table(SkillsTable.Name)).
		Where(entsql.EQ("title", title)).
		Query()
	var id int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, notFound(err, "skill", title)
	}
	return id, nil
}

// Get returns a skill by ID.
func (r *SkillRepo) Get(ctx context.Context, id int) (Skill, error) {
	query, args := sqlb.Select(skillColumns...).
		From(entsql.Table(SkillsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	s, err := scanSkill(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return Skill{}, notFound(err, "skill", id)
	}
	return s, nil
}

// ByTitle returns a skill by its unique title.
func (r *SkillRepo) ByTitle(ctx context.Context, title string) (Skill, error) {
	query, args := sqlb.Select(skillColumns...).
		From(entsql.Table(SkillsTable.Name)).
		Where(entsql.EQ("title", title)).
		Query()
	s, err := scanSkill(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return Skill{}, notFound(err, "skill", title)
	}
	return s, nil
}

// List returns all skills ordered by ID.
func (r *SkillRepo) List(ctx context.Context) ([]Skill, error) {
	query, args := sqlb.Select(skillColumns...).
		From(entsql.Table(SkillsTable.Name)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	var skills []Skill
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}
