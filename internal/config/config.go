package config

const VERSION = "1.2.5"

// DocURL is recorded in the trailing comment of every generated script.
const DocURL = "http://research.libd.org/slurmjobs/"

// Config holds global application settings
type Config struct {
	Debug     bool
	SubmitJob bool
	Version   string

	// Defaults applied to job scripts when flags are not given
	DefaultPartition string
	DefaultMemory    string
	DefaultCores     int
	DefaultTime      string
	DefaultEmail     string
	LogDir           string

	SbatchBin string
}

// Global holds the singleton configuration instance
var Global Config

func LoadDefaults() {
	Global = Config{
		Debug:     false,
		SubmitJob: true,
		Version:   VERSION,

		DefaultPartition: "shared",
		DefaultMemory:    "10G",
		DefaultCores:     1,
		DefaultTime:      "1-00:00:00",
		DefaultEmail:     "ALL",
		LogDir:           "logs",

		SbatchBin: "sbatch",
	}
}
