package config

const (
	defaultCorpusDir         = "~/corpora"
	defaultDownloadDir       = "~/.local/share/sluice/download"
	defaultDataDir           = "~/.local/share/sluice/data"
	defaultLogDir            = "~/.local/share/sluice/logs"
	defaultJobs              = 4
	defaultDevSessions       = 20
	defaultSplitSeed         = 1729
	defaultLMOrder           = 3
	defaultCharacterCoverage = 1.0
	defaultInputSentenceSize = 10_000_000
	defaultLhotseBinary      = "lhotse"
	defaultSpmTrainBinary    = "spm_train"
	defaultG2PBinary         = "g2p"
	defaultEstimatorBinary   = "ngram-count"
	defaultCompileLGBinary   = "compile_lg"
	defaultCompileHLGBinary  = "compile_hlg"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 60
)

func defaultBPESizes() []int {
	return []int{500, 2000}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CorpusDir:   defaultCorpusDir,
			DownloadDir: defaultDownloadDir,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
		},
		Pipeline: Pipeline{
			Jobs: defaultJobs,
		},
		Split: Split{
			DevSessions: defaultDevSessions,
			Seed:        defaultSplitSeed,
		},
		LM: LM{
			Order: defaultLMOrder,
		},
		BPE: BPE{
			Sizes:             defaultBPESizes(),
			CharacterCoverage: defaultCharacterCoverage,
			InputSentenceSize: defaultInputSentenceSize,
		},
		Tools: Tools{
			Lhotse:     defaultLhotseBinary,
			SpmTrain:   defaultSpmTrainBinary,
			G2P:        defaultG2PBinary,
			Estimator:  defaultEstimatorBinary,
			CompileLG:  defaultCompileLGBinary,
			CompileHLG: defaultCompileHLGBinary,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
