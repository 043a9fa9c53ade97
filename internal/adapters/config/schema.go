package config

// Shadefile represents the structure of the shade.yaml configuration file.
type Shadefile struct {
	Compiler    CompilerDTO `yaml:"compiler"`
	LockFile    string      `yaml:"lock_file"`
	Include     []string    `yaml:"include"`
	Exclude     []string    `yaml:"exclude"`
	OnFailure   string      `yaml:"on_failure"`
	LockTimeout string      `yaml:"lock_timeout"`
	Format      FormatDTO   `yaml:"format"`
}

// CompilerDTO configures how the external compiler is invoked.
type CompilerDTO struct {
	Args      []string `yaml:"args"`
	OutputExt string   `yaml:"output_ext"`
}

// FormatDTO configures the source formatter.
type FormatDTO struct {
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args"`
	Patterns []string `yaml:"patterns"`
	Workers  *int     `yaml:"workers"`
	Roots    []string `yaml:"roots"`
}
