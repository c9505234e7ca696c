package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const textSize = 2147483647

var (
	// SkillsColumns holds the columns for the "skills" table.
	SkillsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "title", Type: field.TypeString, Unique: true},
		{Name: "video_url", Type: field.TypeString, Default: ""},
		{Name: "text", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "duration", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SkillsTable holds the schema information for the "skills" table.
	SkillsTable = &schema.Table{
		Name:       "skills",
		Columns:    SkillsColumns,
		PrimaryKey: []*schema.Column{SkillsColumns[0]},
	}

	// TreesColumns holds the columns for the "trees" table.
	TreesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "title", Type: field.TypeString, Unique: true},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "intro_video_url", Type: field.TypeString, Default: ""},
		{Name: "is_free", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
	}
	// TreesTable holds the schema information for the "trees" table.
	TreesTable = &schema.Table{
		Name:       "trees",
		Columns:    TreesColumns,
		PrimaryKey: []*schema.Column{TreesColumns[0]},
	}

	// NodesColumns holds the columns for the "nodes" table.
	NodesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "tree_id", Type: field.TypeInt},
		{Name: "skill_id", Type: field.TypeInt},
	}
	// NodesTable holds the schema information for the "nodes" table.
	NodesTable = &schema.Table{
		Name:       "nodes",
		Columns:    NodesColumns,
		PrimaryKey: []*schema.Column{NodesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "nodes_trees_nodes",
				Columns:    []*schema.Column{NodesColumns[1]},
				RefColumns: []*schema.Column{TreesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "nodes_skills_nodes",
				Columns:    []*schema.Column{NodesColumns[2]},
				RefColumns: []*schema.Column{SkillsColumns[0]},
				OnDelete:   schema.Restrict,
			},
		},
		Indexes: []*schema.Index{
			{Name: "node_tree_id", Columns: []*schema.Column{NodesColumns[1]}},
		},
	}

	// EdgesColumns holds the columns for the "edges" table.
	EdgesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "optional", Type: field.TypeBool, Default: false},
		{Name: "priority", Type: field.TypeInt, Default: 0},
		{Name: "from_node_id", Type: field.TypeInt},
		{Name: "to_node_id", Type: field.TypeInt},
	}
	// EdgesTable holds the schema information for the "edges" table.
	EdgesTable = &schema.Table{
		Name:       "edges",
		Columns:    EdgesColumns,
		PrimaryKey: []*schema.Column{EdgesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "edges_nodes_outgoing",
				Columns:    []*schema.Column{EdgesColumns[3]},
				RefColumns: []*schema.Column{NodesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "edges_nodes_incoming",
				Columns:    []*schema.Column{EdgesColumns[4]},
				RefColumns: []*schema.Column{NodesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "edge_from_node_id_to_node_id", Unique: true, Columns: []*schema.Column{EdgesColumns[3], EdgesColumns[4]}},
			{Name: "edge_to_node_id", Columns: []*schema.Column{EdgesColumns[4]}},
		},
	}

	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "username", Type: field.TypeString, Unique: true},
		{Name: "token", Type: field.TypeString, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "last_node_id", Type: field.TypeInt, Nullable: true},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "users_nodes_last_viewers",
				Columns:    []*schema.Column{UsersColumns[4]},
				RefColumns: []*schema.Column{NodesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}

	// CompletedSkillsColumns holds the columns for the "completed_skills" table.
	CompletedSkillsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeInt},
		{Name: "skill_id", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	// CompletedSkillsTable holds the schema information for the "completed_skills" table.
	CompletedSkillsTable = &schema.Table{
		Name:       "completed_skills",
		Columns:    CompletedSkillsColumns,
		PrimaryKey: []*schema.Column{CompletedSkillsColumns[0], CompletedSkillsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "completed_skills_user_id",
				Columns:    []*schema.Column{CompletedSkillsColumns[0]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "completed_skills_skill_id",
				Columns:    []*schema.Column{CompletedSkillsColumns[1]},
				RefColumns: []*schema.Column{SkillsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// IgnoredSkillsColumns holds the columns for the "ignored_skills" table.
	IgnoredSkillsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeInt},
		{Name: "skill_id", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	// IgnoredSkillsTable holds the schema information for the "ignored_skills" table.
	IgnoredSkillsTable = &schema.Table{
		Name:       "ignored_skills",
		Columns:    IgnoredSkillsColumns,
		PrimaryKey: []*schema.Column{IgnoredSkillsColumns[0], IgnoredSkillsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "ignored_skills_user_id",
				Columns:    []*schema.Column{IgnoredSkillsColumns[0]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "ignored_skills_skill_id",
				Columns:    []*schema.Column{IgnoredSkillsColumns[1]},
				RefColumns: []*schema.Column{SkillsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// Tables holds all the tables in the schema, in creation order.
	Tables = []*schema.Table{
		SkillsTable,
		TreesTable,
		NodesTable,
		EdgesTable,
		UsersTable,
		CompletedSkillsTable,
		IgnoredSkillsTable,
	}
)

func init() {
	NodesTable.ForeignKeys[0].RefTable = TreesTable
	NodesTable.ForeignKeys[1].RefTable = SkillsTable
	EdgesTable.ForeignKeys[0].RefTable = NodesTable
	EdgesTable.ForeignKeys[1].RefTable = NodesTable
	UsersTable.ForeignKeys[0].RefTable = NodesTable
	CompletedSkillsTable.ForeignKeys[0].RefTable = UsersTable
	CompletedSkillsTable.ForeignKeys[1].RefTable = SkillsTable
	IgnoredSkillsTable.ForeignKeys[0].RefTable = UsersTable
	IgnoredSkillsTable.ForeignKeys[1].RefTable = SkillsTable
}
