package stages

import (
	"fmt"
	"path/filepath"

	"sluice/internal/config"
)

// Corpus directory names under corpus_dir, by LDC catalog number. The
// download stage verifies these; the manifests stage hands them to the
// corpus tool.
const (
	FisherAudioPart1      = "LDC2004S13"
	FisherTranscriptPart1 = "LDC2004T19"
	FisherAudioPart2      = "LDC2005S13"
	FisherTranscriptPart2 = "LDC2005T19"
	SwitchboardAudio      = "LDC97S62"
)

// MusanDirName is the directory the corpus tool unpacks MUSAN into beneath
// download_dir.
const MusanDirName = "musan"

// Manifest filenames under data/manifests. Every name is a contract: later
// stages and downstream training code locate artifacts by these exact paths.
const (
	FisherSupervisions      = "fisher-english_supervisions.jsonl.gz"
	SwitchboardSupervisions = "swbd_supervisions.jsonl.gz"
	MusanRecordings         = "musan_recordings.jsonl.gz"

	CombinedSupervisions   = "sluice_supervisions_train_all.jsonl.gz"
	NormalizedSupervisions = "sluice_supervisions_train_all_norm.jsonl.gz"
	TrainSupervisions      = "sluice_supervisions_train.jsonl.gz"
	DevSupervisions        = "sluice_supervisions_dev.jsonl.gz"
)

// Lang directory filenames shared by lang_phone and the lang_bpe fan-out.
const (
	WordsFile      = "words.txt"
	LexiconFile    = "lexicon.txt"
	TokensFile     = "tokens.txt"
	OOVWordsFile   = "oov.txt"
	G2PLexiconFile = "lexicon_g2p.txt"
	BPETextFile    = "text"
	BPEModelPrefix = "bpe"
)

// LM directory filenames.
const (
	TranscriptsFile = "transcripts.txt"
	LMVocabFile     = "vocab.txt"
)

func manifestPath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.ManifestDir(), name)
}

func transcriptsPath(cfg *config.Config) string {
	return filepath.Join(cfg.LMDir(), TranscriptsFile)
}

func lmVocabPath(cfg *config.Config) string {
	return filepath.Join(cfg.LMDir(), LMVocabFile)
}

// ARPAName derives the language model filename from its order, e.g.
// 3gram.arpa.
func ARPAName(order int) string {
	return fmt.Sprintf("%dgram.arpa", order)
}

func arpaPath(cfg *config.Config) string {
	return filepath.Join(cfg.LMDir(), ARPAName(cfg.LM.Order))
}

// ArtifactSpec names one terminal artifact a stage leaves behind.
type ArtifactSpec struct {
	Stage string
	Path  string
	// Dir marks artifacts that are directories rather than files.
	Dir bool
}

// TerminalArtifacts lists the artifacts each configured stage produces, in
// stage order. The status command reports presence and size for every entry;
// the paths double as the idempotence guards the stages themselves check.
func TerminalArtifacts(cfg *config.Config) []ArtifactSpec {
	specs := []ArtifactSpec{
		{Stage: StageDownload, Path: filepath.Join(cfg.Paths.DownloadDir, MusanDirName), Dir: true},
		{Stage: StageManifests, Path: manifestPath(cfg, FisherSupervisions)},
		{Stage: StageManifests, Path: manifestPath(cfg, SwitchboardSupervisions)},
		{Stage: StageManifests, Path: manifestPath(cfg, MusanRecordings)},
		{Stage: StageCombine, Path: manifestPath(cfg, CombinedSupervisions)},
		{Stage: StageNormalize, Path: manifestPath(cfg, NormalizedSupervisions)},
		{Stage: StageSplit, Path: manifestPath(cfg, TrainSupervisions)},
		{Stage: StageSplit, Path: manifestPath(cfg, DevSupervisions)},
		{Stage: StageSplit, Path: transcriptsPath(cfg)},
		{Stage: StageLangPhone, Path: filepath.Join(cfg.LangPhoneDir(), WordsFile)},
		{Stage: StageLangPhone, Path: filepath.Join(cfg.LangPhoneDir(), LexiconFile)},
		{Stage: StageLangPhone, Path: filepath.Join(cfg.LangPhoneDir(), TokensFile)},
		{Stage: StageLangPhone, Path: filepath.Join(cfg.LangPhoneDir(), "L_disambig.fst")},
	}
	for _, size := range cfg.BPE.Sizes {
		dir := cfg.LangBPEDir(size)
		specs = append(specs,
			ArtifactSpec{Stage: StageLangBPE, Path: filepath.Join(dir, BPEModelPrefix+".model")},
			ArtifactSpec{Stage: StageLangBPE, Path: filepath.Join(dir, "L_disambig.fst")},
		)
	}
	specs = append(specs,
		ArtifactSpec{Stage: StageLM, Path: lmVocabPath(cfg)},
		ArtifactSpec{Stage: StageLM, Path: arpaPath(cfg)},
		ArtifactSpec{Stage: StageHLG, Path: filepath.Join(cfg.LangPhoneDir(), "HLG.fst")},
	)
	for _, size := range cfg.BPE.Sizes {
		specs = append(specs, ArtifactSpec{Stage: StageHLG, Path: filepath.Join(cfg.LangBPEDir(size), "HLG.fst")})
	}
	return specs
}
