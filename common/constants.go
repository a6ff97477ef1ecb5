package common

const (
	ForElseVersion = "0.3.0"
	ConfigFileName = "forelse.toml"

	// DefaultSourceExt is the extension of files written in the extended
	// dialect.
	DefaultSourceExt    = ".goe"
	DefaultOutputSuffix = "_goe.go"
	DefaultFlagPrefix   = "_forelse"
	DefaultSplitKeyword = "nobreak"
)

// GeneratedHeader is the first line of every expanded file.  It matches the
// convention recognized by `go generate` tooling and linters.
const GeneratedHeader = "// Code generated by forelse from %s. DO NOT EDIT."
