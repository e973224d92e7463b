package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/campus-connect-api/internal/assistant"
	"github.com/noah-isme/campus-connect-api/internal/dto"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/jobs"
	"github.com/noah-isme/campus-connect-api/pkg/storage"
)

// JobPruneVoices deletes evicted voice files and trims the directory.
const JobPruneVoices = "voices.prune"

const (
	voiceFilePrefix = "voice_"
	voiceFileExt    = ".mp3"
	voiceSlugRunes  = 80
)

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

type voiceStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	Exists(filename string) bool
	Open(filename string) (*os.File, error)
	List(prefix string) ([]storage.FileInfo, error)
	KeepNewest(prefix string, keep int) ([]string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// VoiceConfig tunes the voice cache.
type VoiceConfig struct {
	BaseURL  string
	CacheTTL time.Duration
	MaxFiles int
}

// VoiceClip references a synthesized audio file.
type VoiceClip struct {
	File   string
	URL    string
	Lang   assistant.Lang
	Cached bool
}

// VoiceService renders speech text to cached MP3 files.
type VoiceService struct {
	synth   Synthesizer
	store   voiceStorage
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     VoiceConfig
	index   *voiceIndex
	group   singleflight.Group
	now     func() time.Time
}

// NewVoiceService builds the service. queue may be nil, in which case pruning runs inline.
func NewVoiceService(synth Synthesizer, store voiceStorage, queue jobEnqueuer, metrics *MetricsService, cfg VoiceConfig, logger *zap.Logger) *VoiceService {
	return newVoiceService(synth, store, queue, metrics, cfg, logger, time.Now)
}

func newVoiceService(synth Synthesizer, store voiceStorage, queue jobEnqueuer, metrics *MetricsService, cfg VoiceConfig, logger *zap.Logger, now func() time.Time) *VoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "/voices"
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 20
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &VoiceService{
		synth:   synth,
		store:   store,
		queue:   queue,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		index:   newVoiceIndex(cfg.MaxFiles, cfg.CacheTTL, now),
		now:     now,
	}
}

// Speak returns a clip for text, reusing a fresh cached file for the same language and text.
func (s *VoiceService) Speak(ctx context.Context, text string, lang assistant.Lang) (*VoiceClip, error) {
	lang = s.supportedLang(lang)
	prepared := PrepareSpeech(text, lang)
	if prepared == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "There is nothing to read out.")
	}
	key := voiceKey(lang, prepared)

	file, result, stale := s.index.lookup(key)
	if stale != "" {
		s.deleteFiles(stale)
	}
	if result == voiceHit && !s.store.Exists(file) {
		s.index.remove(key)
		result = voiceMiss
	}
	s.metrics.RecordVoiceLookup(result)
	if result == voiceHit {
		return s.clip(file, lang, true), nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.synthesize(context.WithoutCancel(ctx), key, prepared, lang)
	})
	if err != nil {
		return nil, err
	}
	return s.clip(v.(string), lang, false), nil
}

func (s *VoiceService) synthesize(ctx context.Context, key, text string, lang assistant.Lang) (string, error) {
	start := time.Now()
	audio, err := s.synth.Synthesize(ctx, text, string(lang))
	s.metrics.ObserveExternalCall("tts", err, time.Since(start))
	if err != nil {
		s.logger.Warn("voice synthesis failed", zap.String("lang", string(lang)), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrVoiceUpstream.Code, appErrors.ErrVoiceUpstream.Status, appErrors.ErrVoiceUpstream.Message)
	}

	created := s.now()
	file := fmt.Sprintf("%s%s_%d%s", voiceFilePrefix, key, created.UnixMilli(), voiceFileExt)
	if _, err := s.store.Save(file, audio); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store voice file")
	}

	evicted := s.index.add(key, file, created)
	s.schedulePrune(ctx, evicted)
	return file, nil
}

func (s *VoiceService) schedulePrune(ctx context.Context, evicted []string) {
	if s.queue != nil {
		err := s.queue.TryEnqueue(jobs.Job{Type: JobPruneVoices, Payload: evicted})
		if err == nil || errors.Is(err, jobs.ErrQueueFull) {
			return
		}
	}
	if _, err := s.prune(evicted); err != nil {
		s.logger.Warn("voice prune failed", zap.Error(err))
	}
}

// HandlePrune is the jobs handler for JobPruneVoices.
func (s *VoiceService) HandlePrune(ctx context.Context, job jobs.Job) error {
	evicted, _ := job.Payload.([]string)
	_, err := s.prune(evicted)
	return err
}

// prune deletes the evicted files and keeps only the newest MaxFiles on disk.
func (s *VoiceService) prune(evicted []string) (int, error) {
	s.deleteFiles(evicted...)
	trimmed, err := s.store.KeepNewest(voiceFilePrefix, s.cfg.MaxFiles)
	s.index.forgetFiles(trimmed)
	if err != nil {
		return len(evicted) + len(trimmed), fmt.Errorf("trim voice directory: %w", err)
	}
	return len(evicted) + len(trimmed), nil
}

// Open returns the stored audio for file. A clip pruned since it was handed out is not found.
func (s *VoiceService) Open(file string) (*os.File, error) {
	f, err := s.store.Open(file)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.index.forgetFiles([]string{file})
		return nil, appErrors.Clone(appErrors.ErrNotFound, "That voice reply has expired. Please ask again.")
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrVoiceUpstream.Code, appErrors.ErrVoiceUpstream.Status, appErrors.ErrVoiceUpstream.Message)
	}
	return f, nil
}

// Cleanup expires stale entries and orphaned files, then trims the directory.
func (s *VoiceService) Cleanup(ctx context.Context) (*dto.VoiceCleanupResult, error) {
	expired := s.index.expire()
	s.deleteFiles(expired...)

	orphans, err := s.store.CleanupOlderThan(s.cfg.CacheTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clean voice directory")
	}
	s.index.forgetFiles(orphans)

	seen := make(map[string]struct{}, len(expired)+len(orphans))
	for _, f := range append(expired, orphans...) {
		seen[f] = struct{}{}
	}

	pruned, err := s.prune(nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prune voice directory")
	}

	result := &dto.VoiceCleanupResult{Expired: len(seen), Pruned: pruned, Kept: s.index.len()}
	s.logger.Info("voice cache cleaned", zap.Int("expired", result.Expired), zap.Int("pruned", result.Pruned), zap.Int("kept", result.Kept))
	return result, nil
}

// Rebuild indexes files already on disk so the cap holds across restarts.
func (s *VoiceService) Rebuild(ctx context.Context) error {
	files, err := s.store.List(voiceFilePrefix)
	if err != nil {
		return fmt.Errorf("list voice files: %w", err)
	}

	type known struct {
		key     string
		file    string
		created time.Time
	}
	parsed := make([]known, 0, len(files))
	var unknown []string
	for _, f := range files {
		key, created, ok := parseVoiceFile(f.Name)
		if !ok {
			unknown = append(unknown, f.Name)
			continue
		}
		parsed = append(parsed, known{key: key, file: f.Name, created: created})
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].created.Before(parsed[j].created) })

	var evicted []string
	for _, k := range parsed {
		evicted = append(evicted, s.index.add(k.key, k.file, k.created)...)
	}
	s.deleteFiles(append(evicted, unknown...)...)
	s.logger.Info("voice cache rebuilt", zap.Int("indexed", s.index.len()), zap.Int("removed", len(evicted)+len(unknown)))
	return nil
}

func (s *VoiceService) clip(file string, lang assistant.Lang, cached bool) *VoiceClip {
	return &VoiceClip{File: file, URL: s.cfg.BaseURL + "/" + file, Lang: lang, Cached: cached}
}

func (s *VoiceService) deleteFiles(files ...string) {
	for _, f := range files {
		if err := s.store.Delete(f); err != nil {
			s.logger.Warn("failed to delete voice file", zap.String("file", f), zap.Error(err))
		}
	}
}

func (s *VoiceService) supportedLang(lang assistant.Lang) assistant.Lang {
	switch lang {
	case assistant.LangEnglish, assistant.LangHindi:
		return lang
	}
	s.logger.Warn("unsupported voice language, using English", zap.String("lang", string(lang)))
	return assistant.LangEnglish
}

var (
	codeSpelling = map[string]string{
		"CSE": "C S E",
		"ECE": "E C E",
		"IT":  "I T",
		"EE":  "E E",
		"ME":  "M E",
		"CE":  "Civil Engineering",
	}
	codePattern    = regexp.MustCompile(`\b(CSE|ECE|IT|EE|ME|CE)\b`)
	digitThenWord  = regexp.MustCompile(`(\d)([\p{L}\p{M}])`)
	wordThenDigit  = regexp.MustCompile(`([\p{L}\p{M}])(\d)`)
	speechNoise    = strings.NewReplacer("➜", " ", "➤", " ", "⇒", " ", "->", " ", "|", " ")
	sentenceEnders = ".!?।"
)

// PrepareSpeech cleans text for synthesis: markdown and symbols are removed,
// lines become sentences and department codes are spelled out in English.
func PrepareSpeech(text string, lang assistant.Lang) string {
	lines := strings.Split(text, "\n")
	sentences := make([]string, 0, len(lines))
	for _, line := range lines {
		line = assistant.SpeechText(speechNoise.Replace(line))
		line = strings.Map(func(r rune) rune {
			if unicode.Is(unicode.So, r) || r == '\u200d' || r == '\ufe0f' {
				return -1
			}
			return r
		}, line)
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if !strings.ContainsRune(sentenceEnders, []rune(line)[len([]rune(line))-1]) {
			line += "."
		}
		sentences = append(sentences, line)
	}
	out := strings.Join(sentences, " ")

	if lang == assistant.LangHindi {
		out = digitThenWord.ReplaceAllString(out, "$1 $2")
		out = wordThenDigit.ReplaceAllString(out, "$1 $2")
	} else {
		out = codePattern.ReplaceAllStringFunc(out, func(code string) string { return codeSpelling[code] })
	}
	return strings.Join(strings.Fields(out), " ")
}

// voiceKey is lang, a slug of the first 80 characters and 8 hex characters of the SHA-1 of the full text.
func voiceKey(lang assistant.Lang, text string) string {
	normalized := strings.ToLower(text)
	sum := sha1.Sum([]byte(normalized))

	runes := []rune(normalized)
	if len(runes) > voiceSlugRunes {
		runes = runes[:voiceSlugRunes]
	}
	var slug strings.Builder
	lastUnderscore := false
	for _, r := range runes {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			slug.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			slug.WriteByte('_')
			lastUnderscore = true
		}
	}
	return fmt.Sprintf("%s_%s_%s", lang, strings.Trim(slug.String(), "_"), hex.EncodeToString(sum[:])[:8])
}

// parseVoiceFile splits voice_{key}_{unixms}.mp3 back into key and creation time.
func parseVoiceFile(name string) (string, time.Time, bool) {
	if !strings.HasPrefix(name, voiceFilePrefix) || !strings.HasSuffix(name, voiceFileExt) {
		return "", time.Time{}, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(name, voiceFilePrefix), voiceFileExt)
	cut := strings.LastIndexByte(body, '_')
	if cut <= 0 {
		return "", time.Time{}, false
	}
	ms, err := strconv.ParseInt(body[cut+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return body[:cut], time.UnixMilli(ms), true
}
