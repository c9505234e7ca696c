package catalog

import "fmt"

var sampleSkills = []string{
	"n8n basics",
	"setup botfather",
	"botfather",
	"web basics",
	"telegram - n8n",
	"data basics",
	"db basics",
	"setup airtable",
	"read/write n8n",
	"airtable - n8n",
	"setup actors",
	"actors",
	"pull to n8n",
	"apify - n8n",
	"ai intro",
	"prompting",
	"agentic",
	"implement a tool",
	"AI - n8n",
	"leads sentinel - n8n",
}

var sampleNodes = []NodeDef{
	// Telegram branch
	{"n8n_basics_1", "n8n basics"},
	{"setup_botfather", "setup botfather"},
	{"botfather", "botfather"},
	{"web_basics_1", "web basics"},
	{"telegram_n8n", "telegram - n8n"},

	// Airtable branch
	{"web_basics_2", "web basics"},
	{"data_basics_1", "data basics"},
	{"db_basics", "db basics"},
	{"setup_airtable", "setup airtable"},
	{"read_write_n8n", "read/write n8n"},
	{"airtable_n8n", "airtable - n8n"},

	// Apify branch
	{"web_basics_3", "web basics"},
	{"data_basics_2", "data basics"},
	{"setup_actors", "setup actors"},
	{"actors", "actors"},
	{"n8n_basics_2", "n8n basics"},
	{"pull_to_n8n", "pull to n8n"},
	{"apify_n8n", "apify - n8n"},

	// AI branch
	{"web_basics_4", "web basics"},
	{"n8n_basics_3", "n8n basics"},
	{"ai_intro", "ai intro"},
	{"prompting", "prompting"},
	{"agentic", "agentic"},
	{"implement_tool", "implement a tool"},
	{"ai_n8n", "AI - n8n"},

	{"leads_sentinel", "leads sentinel - n8n"},
}

var sampleEdges = []EdgeDef{
	{From: "n8n_basics_1", To: "setup_botfather"},
	{From: "setup_botfather", To: "botfather"},
	{From: "botfather", To: "telegram_n8n"},
	{From: "web_basics_1", To: "telegram_n8n", Priority: 1},
	{From: "telegram_n8n", To: "leads_sentinel"},

	{From: "web_basics_2", To: "setup_airtable"},
	{From: "data_basics_1", To: "setup_airtable", Priority: 1},
	{From: "db_basics", To: "setup_airtable", Priority: 2},
	{From: "setup_airtable", To: "read_write_n8n"},
	{From: "read_write_n8n", To: "airtable_n8n"},
	{From: "airtable_n8n", To: "leads_sentinel", Priority: 1},

	{From: "web_basics_3", To: "setup_actors"},
	{From: "data_basics_2", To: "setup_actors", Priority: 1},
	{From: "setup_actors", To: "actors"},
	{From: "n8n_basics_2", To: "pull_to_n8n"},
	{From: "actors", To: "pull_to_n8n", Priority: 1},
	{From: "pull_to_n8n", To: "apify_n8n"},
	{From: "apify_n8n", To: "leads_sentinel", Priority: 2},

	{From: "web_basics_4", To: "n8n_basics_3"},
	{From: "n8n_basics_3", To: "implement_tool"},
	{From: "ai_intro", To: "prompting"},
	{From: "prompting", To: "agentic"},
	{From: "agentic", To: "implement_tool", Priority: 1},
	{From: "implement_tool", To: "ai_n8n"},
	{From: "ai_n8n", To: "leads_sentinel", Priority: 3},
}

// Sample returns the built-in "Leads Sentinel with n8n" course.
func Sample() *Definition {
	def := &Definition{
		Tree: TreeInfo{
			Title:       "Leads Sentinel with n8n",
			Description: "Build a leads monitoring system using n8n, Telegram, Airtable, Apify, and AI.",
			IsFree:      true,
		},
		Skills: make([]SkillDef, len(sampleSkills)),
		Nodes:  append([]NodeDef(nil), sampleNodes...),
		Edges:  append([]EdgeDef(nil), sampleEdges...),
	}
	for i, title := range sampleSkills {
		def.Skills[i] = SkillDef{
			Title:    title,
			VideoURL: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			Text:     fmt.Sprintf("# %s\n\nPlaceholder content for %s.", title, title),
			Duration: 300,
		}
	}
	return def
}
