package domain

import "path/filepath"

const (
	// CicdDirName is the name of the internal workspace directory.
	CicdDirName = ".cicd"

	// ProjectFileName is the name of the project configuration file.
	ProjectFileName = "cicd.yaml"

	// DefaultEnvironmentsDir is the directory, relative to the project root, holding one
	// parameter file per deployment stage.
	DefaultEnvironmentsDir = "environments"

	// DefaultAssemblyDir is the default output location for synthesized templates.
	DefaultAssemblyDir = "cdk.out"

	// ManifestFileName is the name of the assembly manifest.
	ManifestFileName = "manifest.json"

	// TemplateSuffix is appended to a stack name to form its template file name.
	TemplateSuffix = ".template.json"

	// YAMLTemplateSuffix is used instead of TemplateSuffix for YAML encoded templates.
	YAMLTemplateSuffix = ".template.yaml"

	// EnvPrefix is the environment variable prefix for parameter overrides.
	EnvPrefix = "CICD"

	// DebugLogFile is the name of the debug log file.
	DebugLogFile = "debug.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultDebugLogPath returns the default path for the debug log.
// It joins .cicd and debug.log.
func DefaultDebugLogPath() string {
	return filepath.Join(CicdDirName, DebugLogFile)
}

// TemplateFileName returns the template file name the infrastructure build is expected
// to emit for the given stack.
func TemplateFileName(stackName string) string {
	return stackName + TemplateSuffix
}
