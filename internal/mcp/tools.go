package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var translateToolDef = mcp.NewTool("translate",
	mcp.WithDescription("Translate text and add the result to the working card list. Set save to persist it immediately."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to translate"),
	),
	mcp.WithString("source",
		mcp.Description("Source language code (en or ja). Defaults to the configured source language."),
	),
	mcp.WithString("target",
		mcp.Description("Target language code (en or ja). Defaults to the configured target language."),
	),
	mcp.WithBoolean("save",
		mcp.Description("Persist the translated card immediately"),
	),
)

var vocabSaveToolDef = mcp.NewTool("vocab_save",
	mcp.WithDescription("Persist cards from the working list. With a timestamp, saves that card; without, saves every unsaved card."),
	mcp.WithString("timestamp",
		mcp.Description("Key of the card to save (YYYY-MM-DD HH:MM:SS). Omit to save all unsaved cards."),
	),
)

var vocabListToolDef = mcp.NewTool("vocab_list",
	mcp.WithDescription("List saved vocabulary, newest first. An empty date prefix lists everything."),
	mcp.WithString("date",
		mcp.Description("Date prefix filter, e.g. 2026-09 or 2026-09-01"),
	),
)

var vocabDeleteToolDef = mcp.NewTool("vocab_delete",
	mcp.WithDescription("Delete one saved card and update its calendar entry."),
	mcp.WithString("timestamp",
		mcp.Required(),
		mcp.Description("Key of the card to delete (YYYY-MM-DD HH:MM:SS)"),
	),
)

var vocabPurgeToolDef = mcp.NewTool("vocab_purge",
	mcp.WithDescription("Delete every saved card whose timestamp matches a date prefix, along with matching calendar entries."),
	mcp.WithString("prefix",
		mcp.Required(),
		mcp.Description("Date prefix, e.g. 2026-09 or 2026-09-01"),
	),
	mcp.WithBoolean("confirm",
		mcp.Required(),
		mcp.Description("Must be true to confirm bulk deletion"),
	),
)

var calendarListToolDef = mcp.NewTool("calendar_list",
	mcp.WithDescription("List days that have saved vocabulary with their card counts, newest first."),
)
