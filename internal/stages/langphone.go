package stages

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sluice/internal/deps"
	"sluice/internal/fileutil"
	"sluice/internal/lang"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/services"
	"sluice/internal/services/g2p"
	"sluice/internal/services/graphc"
)

// LangPhone builds the phone-based lang directory: the word table over the
// training transcripts, a lexicon whose pronunciations come from the seed
// entries plus the G2P tool, the token table derived from that lexicon, and
// the compiled lexicon FSTs.
type LangPhone struct {
	base
	g2p    *g2p.Client
	graphs *graphc.Client
}

func NewLangPhone(env Env) (*LangPhone, error) {
	g2pOpts := []g2p.Option{}
	graphOpts := []graphc.Option{}
	if env.Exec != nil {
		g2pOpts = append(g2pOpts, g2p.WithExecutor(env.Exec))
		graphOpts = append(graphOpts, graphc.WithExecutor(env.Exec))
	}
	tools := env.Config.Tools
	timeout := env.Config.Pipeline.ToolTimeout
	g2pClient, err := g2p.New(tools.G2P, timeout, g2pOpts...)
	if err != nil {
		return nil, err
	}
	graphClient, err := graphc.New(tools.CompileLG, tools.CompileHLG, timeout, graphOpts...)
	if err != nil {
		return nil, err
	}
	return &LangPhone{base: newBase(env), g2p: g2pClient, graphs: graphClient}, nil
}

func (s *LangPhone) Execute(ctx context.Context) error {
	dir := s.cfg.LangPhoneDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create lang directory: %w", err)
	}

	transcripts := transcriptsPath(s.cfg)
	if !fileutil.NonEmptyFile(transcripts) {
		detail := fmt.Sprintf("%s missing; run the split stage first", transcripts)
		return services.Wrap(services.ErrMissingInput, StageLangPhone, "read transcripts", detail, nil)
	}

	table, err := s.buildWordTable(ctx, dir, transcripts)
	if err != nil {
		return err
	}
	entries, err := s.buildLexicon(ctx, dir, table)
	if err != nil {
		return err
	}
	if err := s.buildTokenTable(ctx, dir, entries); err != nil {
		return err
	}
	return s.compileGraph(ctx, dir)
}

func (s *LangPhone) buildWordTable(ctx context.Context, dir, transcripts string) (*lang.SymbolTable, error) {
	path := filepath.Join(dir, WordsFile)
	if fileutil.NonEmptyFile(path) {
		skipExisting(s.logger, path)
		table, err := lang.ReadSymbolTable(path)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, StageLangPhone, "read word table",
				"existing word table unreadable", err)
		}
		return table, nil
	}

	words, err := lang.ExtractWordsFromFile(transcripts)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageLangPhone, "extract words",
			"reading training transcripts failed", err)
	}
	if len(words) == 0 {
		return nil, services.Wrap(services.ErrValidation, StageLangPhone, "extract words",
			"training transcripts contain no words", nil)
	}
	table := lang.BuildWordTable(words)
	if err := table.WriteFile(path); err != nil {
		return nil, fmt.Errorf("write word table: %w", err)
	}
	s.logger.Info("word table written",
		logging.Int("words", len(table.Words())),
		logging.String(logging.FieldArtifact, path))
	s.env.recordArtifact(ctx, s.logger, path)
	return table, nil
}

func (s *LangPhone) buildLexicon(ctx context.Context, dir string, table *lang.SymbolTable) ([]lang.Entry, error) {
	path := filepath.Join(dir, LexiconFile)
	if fileutil.NonEmptyFile(path) {
		skipExisting(s.logger, path)
		entries, err := lang.ReadLexicon(path)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, StageLangPhone, "read lexicon",
				"existing lexicon unreadable", err)
		}
		return entries, nil
	}

	seed := lang.SeedLexicon()
	missing := lang.MissingWords(seed, table.Words())
	entries := seed
	if len(missing) > 0 {
		generated, err := s.generatePronunciations(ctx, dir, missing)
		if err != nil {
			return nil, err
		}
		entries = lang.MergeLexicons(seed, generated)
	}

	if uncovered := lang.MissingWords(entries, table.Words()); len(uncovered) > 0 {
		sample := uncovered
		if len(sample) > 5 {
			sample = sample[:5]
		}
		detail := fmt.Sprintf("%d words still lack pronunciations (e.g. %s)",
			len(uncovered), strings.Join(sample, ", "))
		return nil, services.Wrap(services.ErrExternalTool, StageLangPhone, "generate pronunciations", detail, nil)
	}

	if err := lang.WriteLexicon(path, entries); err != nil {
		return nil, fmt.Errorf("write lexicon: %w", err)
	}
	s.logger.Info("lexicon written",
		logging.Int("entries", len(entries)),
		logging.Int("generated_words", len(missing)),
		logging.String(logging.FieldArtifact, path))
	s.env.recordArtifact(ctx, s.logger, path)
	return entries, nil
}

// generatePronunciations writes the out-of-vocabulary word list and runs the
// G2P tool over it. The generated lexicon is guarded separately from
// lexicon.txt so an interrupted merge never repeats the expensive tool run.
func (s *LangPhone) generatePronunciations(ctx context.Context, dir string, words []string) ([]lang.Entry, error) {
	oovPath := filepath.Join(dir, OOVWordsFile)
	err := fileutil.AtomicWriteTo(oovPath, 0o644, func(w io.Writer) error {
		for _, word := range words {
			if _, err := fmt.Fprintln(w, word); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("write word list: %w", err)
	}

	generatedPath := filepath.Join(dir, G2PLexiconFile)
	if fileutil.NonEmptyFile(generatedPath) {
		skipExisting(s.logger, generatedPath)
	} else {
		s.logger.Info("generating pronunciations", logging.Int("words", len(words)))
		if err := s.g2p.Generate(ctx, oovPath, generatedPath); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, StageLangPhone, "generate pronunciations",
				"grapheme-to-phoneme conversion failed", err)
		}
		s.env.recordArtifact(ctx, s.logger, generatedPath)
	}

	generated, err := lang.ReadLexicon(generatedPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StageLangPhone, "read pronunciations",
			"generated lexicon unreadable", err)
	}
	return generated, nil
}

func (s *LangPhone) buildTokenTable(ctx context.Context, dir string, entries []lang.Entry) error {
	path := filepath.Join(dir, TokensFile)
	if fileutil.NonEmptyFile(path) {
		skipExisting(s.logger, path)
		return nil
	}
	table := lang.BuildTokenTable(entries)
	if err := table.WriteFile(path); err != nil {
		return fmt.Errorf("write token table: %w", err)
	}
	s.logger.Info("token table written",
		logging.Int("tokens", table.Len()),
		logging.String(logging.FieldArtifact, path))
	s.env.recordArtifact(ctx, s.logger, path)
	return nil
}

func (s *LangPhone) compileGraph(ctx context.Context, dir string) error {
	target := graphc.LDisambigPath(dir)
	if fileutil.NonEmptyFile(target) {
		skipExisting(s.logger, target)
		return nil
	}
	s.logger.Info("compiling lexicon graph", logging.String("lang_dir", dir))
	if err := s.graphs.CompileL(ctx, dir); err != nil {
		return services.Wrap(services.ErrExternalTool, StageLangPhone, "compile lexicon graph",
			"lexicon FST compilation failed", err)
	}
	s.env.recordArtifact(ctx, s.logger, target)
	return nil
}

func (s *LangPhone) HealthCheck(ctx context.Context) pipeline.Health {
	for _, command := range []string{s.cfg.Tools.G2P, s.cfg.Tools.CompileLG} {
		if _, err := deps.LookPathOne(command); err != nil {
			return pipeline.Unhealthy(StageLangPhone, err.Error())
		}
	}
	return pipeline.Healthy(StageLangPhone)
}
