package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/skilltree/internal/skillgraph"
)

// TreeRepo manages trees, their nodes and edges.
type TreeRepo struct {
	db *sql.DB
}

var treeColumns = []string{"id", "title", "description", "intro_video_url", "is_free", "created_at"}

func scanTree(row interface{ Scan(...any) error }) (Tree, error) {
	var t Tree
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.IntroVideoURL, &t.IsFree, &t.CreatedAt)
	return t, err
}

// List returns all trees ordered by ID.
func (r *TreeRepo) List(ctx context.Context) ([]Tree, error) {
	query, args := sqlb.Select(treeColumns...).
		From(entsql.Table(TreesTable.Name)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trees: %w", err)
	}
	defer rows.Close()

	var trees []Tree
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tree: %w", err)
		}
		trees = append(trees, t)
	}
	return trees, rows.Err()
}

// Get returns a tree by ID.
func (r *TreeRepo) Get(ctx context.Context, id int) (Tree, error) {
	query, args := sqlb.Select(treeColumns...).
		From(entsql.Table(TreesTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	t, err := scanTree(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return Tree{}, notFound(err, "tree", id)
	}
	return t, nil
}

// ByTitle returns a tree by its unique title.
func (r *TreeRepo) ByTitle(ctx context.Context, title string) (Tree, error) {
	query, args := sqlb.Select(treeColumns...).
		From(entsql.Table(TreesTable.Name)).
		Where(entsql.EQ("title", title)).
		Query()
	t, err := scanTree(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return Tree{}, notFound(err, "tree", title)
	}
	return t, nil
}

// LoadGraph returns the nodes and edges of a tree. Node titles are the
// titles of their skills.
func (r *TreeRepo) LoadGraph(ctx context.Context, treeID int) (*skillgraph.Graph, error) {
	if _, err := r.Get(ctx, treeID); err != nil {
		return nil, err
	}
	nodes, err := r.nodes(ctx, r.db, entsql.EQ(entsql.Table(NodesTable.Name).C("tree_id"), treeID))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return skillgraph.New(nil, nil), nil
	}

	ids := make([]any, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	query, args := sqlb.Select("id", "from_node_id", "to_node_id", "optional", "priority").
		From(entsql.Table(EdgesTable.Name)).
		Where(entsql.Or(entsql.In("from_node_id", ids...), entsql.In("to_node_id", ids...))).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges of tree %d: %w", treeID, err)
	}
	defer rows.Close()

	var edges []skillgraph.Edge
	for rows.Next() {
		var e skillgraph.Edge
		if err := rows.Scan(&e.ID, &e.From, &e.To, &e.Optional, &e.Priority); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return skillgraph.New(nodes, edges), nil
}

// Node returns a single node by ID.
func (r *TreeRepo) Node(ctx context.Context, nodeID int) (skillgraph.Node, error) {
	nodes, err := r.nodes(ctx, r.db, entsql.EQ(entsql.Table(NodesTable.Name).C("id"), nodeID))
	if err != nil {
		return skillgraph.Node{}, err
	}
	if len(nodes) == 0 {
		return skillgraph.Node{}, fmt.Errorf("node %d: %w", nodeID, ErrNotFound)
	}
	return nodes[0], nil
}

// TreeOf returns the ID of the tree a node belongs to.
func (r *TreeRepo) TreeOf(ctx context.Context, nodeID int) (int, error) {
	query, args := sqlb.Select("tree_id").
		From(entsql.Table(NodesTable.Name)).
		Where(entsql.EQ("id", nodeID)).
		Query()
	var treeID int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&treeID); err != nil {
		return 0, notFound(err, "node", nodeID)
	}
	return treeID, nil
}

func (r *TreeRepo) nodes(ctx context.Context, q querier, where *entsql.Predicate) ([]skillgraph.Node, error) {
	n := entsql.Table(NodesTable.Name)
	s := entsql.Table(SkillsTable.Name)
	query, args := sqlb.Select(n.C("id"), n.C("skill_id"), s.C("title")).
		From(n).
		Join(s).On(n.C("skill_id"), s.C("id")).
		Where(where).
		OrderBy(n.C("id")).
		Query()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []skillgraph.Node
	for rows.Next() {
		var nd skillgraph.Node
		if err := rows.Scan(&nd.ID, &nd.SkillID, &nd.Title); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, nd)
	}
	return nodes, rows.Err()
}

// Save writes a whole tree in one transaction, replacing any existing tree
// with the same title. The draft's skills are upserted in the same
// transaction. It returns the stored tree and the node ID assigned to every
// draft key.
func (r *TreeRepo) Save(ctx context.Context, draft TreeDraft) (Tree, map[string]int, error) {
	t := draft.Tree
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	keys := make(map[string]int, len(draft.Nodes))

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		skills := make(map[string]int, len(draft.Skills))
		for _, sk := range draft.Skills {
			id, err := upsertSkill(ctx, tx, sk)
			if err != nil {
				return err
			}
			skills[sk.Title] = id
		}

		if _, err := exec(ctx, tx, sqlb.Delete(TreesTable.Name).Where(entsql.EQ("title", t.Title))); err != nil {
			return fmt.Errorf("delete previous tree %q: %w", t.Title, err)
		}

		id, err := insertID(ctx, tx, sqlb.Insert(TreesTable.Name).
			Columns("title", "description", "intro_video_url", "is_free", "created_at").
			Values(t.Title, t.Description, t.IntroVideoURL, t.IsFree, t.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert tree %q: %w", t.Title, err)
		}
		t.ID = id

		for _, nd := range draft.Nodes {
			if _, dup := keys[nd.Key]; dup {
				return fmt.Errorf("duplicate node key %q", nd.Key)
			}
			skillID, err := nodeSkill(ctx, tx, nd, skills)
			if err != nil {
				return fmt.Errorf("node %q: %w", nd.Key, err)
			}
			nid, err := insertID(ctx, tx, sqlb.Insert(NodesTable.Name).
				Columns("tree_id", "skill_id").
				Values(t.ID, skillID))
			if err != nil {
				return fmt.Errorf("insert node %q: %w", nd.Key, err)
			}
			keys[nd.Key] = nid
		}

		for _, e := range draft.Edges {
			from, ok := keys[e.From]
			if !ok {
				return fmt.Errorf("edge %s -> %s: unknown node %q", e.From, e.To, e.From)
			}
			to, ok := keys[e.To]
			if !ok {
				return fmt.Errorf("edge %s -> %s: unknown node %q", e.From, e.To, e.To)
			}
			if _, err := exec(ctx, tx, sqlb.Insert(EdgesTable.Name).
				Columns("from_node_id", "to_node_id", "optional", "priority").
				Values(from, to, e.Optional, e.Priority)); err != nil {
				return fmt.Errorf("insert edge %s -> %s: %w", e.From, e.To, err)
			}
		}
		return nil
	})
	if err != nil {
		return Tree{}, nil, err
	}
	return t, keys, nil
}

func nodeSkill(ctx context.Context, q querier, nd NodeDraft, drafted map[string]int) (int, error) {
	if nd.SkillID != 0 {
		return nd.SkillID, nil
	}
	if id, ok := drafted[nd.SkillTitle]; ok {
		return id, nil
	}
	return skillID(ctx, q, nd.SkillTitle)
}

// Delete removes a tree with its nodes and edges.
func (r *TreeRepo) Delete(ctx context.Context, id int) error {
	res, err := exec(ctx, r.db, sqlb.Delete(TreesTable.Name).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete tree %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tree %d: %w", id, ErrNotFound)
	}
	return nil
}
