package tools

// Tool name constants - use these instead of magic strings to prevent typos.
const (
	ToolListFiles       = "list_files"
	ToolReadFile        = "read_file"
	ToolWriteFile       = "write_file"
	ToolDeleteFile      = "delete_file"
	ToolCreateDirectory = "create_directory"
	ToolInsertAtLine    = "insert_at_line"
	ToolReplaceCode     = "replace_code"
	ToolSearchFiles     = "search_files"
	ToolRunCommand      = "run_command"
)

// dangerousTools are the tools whose effects mutate persistent state and
// therefore require explicit confirmation before execution.
//
//nolint:gochecknoglobals // fixed catalog property, read-only after init
var dangerousTools = map[string]struct{}{
	ToolWriteFile:       {},
	ToolDeleteFile:      {},
	ToolCreateDirectory: {},
	ToolReplaceCode:     {},
	ToolInsertAtLine:    {},
}

// IsDangerous reports whether the named tool requires human confirmation.
func IsDangerous(name string) bool {
	_, ok := dangerousTools[name]
	return ok
}
