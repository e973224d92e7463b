package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-connect-api/internal/assistant"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/storage"
	"github.com/noah-isme/campus-connect-api/pkg/tts"
)

type fakeSynth struct {
	calls int32
	delay time.Duration
	err   error
	mu    sync.Mutex
	texts []string
	langs []string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.langs = append(f.langs, lang)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("ID3" + text), nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestVoiceService(t *testing.T, synth Synthesizer, maxFiles int) (*VoiceService, *storage.LocalStorage, *fakeClock) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := newVoiceService(synth, store, nil, nil, VoiceConfig{BaseURL: "/voices/", CacheTTL: 30 * time.Minute, MaxFiles: maxFiles}, nil, clock.Now)
	return svc, store, clock
}

func TestSpeakReusesFreshFile(t *testing.T) {
	synth := &fakeSynth{}
	svc, store, _ := newTestVoiceService(t, synth, 5)

	first, err := svc.Speak(context.Background(), "The **library** is open.", assistant.LangEnglish)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "/voices/"+first.File, first.URL)
	assert.True(t, store.Exists(first.File))

	second, err := svc.Speak(context.Background(), "The library is open.", assistant.LangEnglish)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.File, second.File)
	assert.EqualValues(t, 1, synth.calls)
}

func TestOpenStreamsStoredClip(t *testing.T) {
	svc, store, _ := newTestVoiceService(t, &fakeSynth{}, 5)

	clip, err := svc.Speak(context.Background(), "Canteen is near the library.", assistant.LangEnglish)
	require.NoError(t, err)

	f, err := svc.Open(clip.File)
	require.NoError(t, err)
	audio, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(audio), "ID3"))

	require.NoError(t, store.Delete(clip.File))
	_, err = svc.Open(clip.File)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 0, svc.index.len())
}

func TestSpeakRegeneratesAfterExpiry(t *testing.T) {
	synth := &fakeSynth{}
	svc, store, clock := newTestVoiceService(t, synth, 5)

	first, err := svc.Speak(context.Background(), "Mess opens at 8.", assistant.LangEnglish)
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	second, err := svc.Speak(context.Background(), "Mess opens at 8.", assistant.LangEnglish)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.NotEqual(t, first.File, second.File)
	assert.False(t, store.Exists(first.File))
	assert.True(t, store.Exists(second.File))
	assert.EqualValues(t, 2, synth.calls)
}

func TestSpeakKeepsNewestFiles(t *testing.T) {
	svc, store, clock := newTestVoiceService(t, &fakeSynth{}, 3)

	var files []string
	for i := 0; i < 5; i++ {
		clip, err := svc.Speak(context.Background(), fmt.Sprintf("answer number %d", i), assistant.LangEnglish)
		require.NoError(t, err)
		files = append(files, clip.File)
		clock.Advance(time.Second)
	}

	for _, f := range files[:2] {
		assert.False(t, store.Exists(f), f)
	}
	for _, f := range files[2:] {
		assert.True(t, store.Exists(f), f)
	}
	assert.Equal(t, 3, svc.index.len())
	assert.Equal(t, []string{files[4], files[3], files[2]}, svc.index.files())
}

func TestSpeakSharesConcurrentSynthesis(t *testing.T) {
	synth := &fakeSynth{delay: 50 * time.Millisecond}
	svc, _, _ := newTestVoiceService(t, synth, 5)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clip, err := svc.Speak(context.Background(), "Where is CSE?", assistant.LangEnglish)
			if err == nil {
				results[i] = clip.File
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, synth.calls)
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestSpeakRejectsEmptyText(t *testing.T) {
	svc, _, _ := newTestVoiceService(t, &fakeSynth{}, 5)

	_, err := svc.Speak(context.Background(), "  ** ## ", assistant.LangEnglish)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestSpeakUnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	synth := &fakeSynth{}
	svc, _, _ := newTestVoiceService(t, synth, 5)

	clip, err := svc.Speak(context.Background(), "Bonjour", assistant.Lang("fr"))
	require.NoError(t, err)
	assert.Equal(t, assistant.LangEnglish, clip.Lang)
	assert.Equal(t, []string{"en"}, synth.langs)
}

func TestSpeakSurfacesSynthesisKind(t *testing.T) {
	synth := &fakeSynth{err: &tts.SynthesisError{Kind: tts.KindRateLimited, StatusCode: 429, Err: errors.New("Too Many Requests")}}
	svc, _, _ := newTestVoiceService(t, synth, 5)

	_, err := svc.Speak(context.Background(), "hello", assistant.LangEnglish)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrVoiceUpstream))

	var synthErr *tts.SynthesisError
	require.True(t, errors.As(err, &synthErr))
	assert.Equal(t, tts.KindRateLimited, synthErr.Kind)
}

func TestSpeakMissingFileIsRegenerated(t *testing.T) {
	synth := &fakeSynth{}
	svc, store, _ := newTestVoiceService(t, synth, 5)

	first, err := svc.Speak(context.Background(), "Bus leaves at 5.", assistant.LangEnglish)
	require.NoError(t, err)
	require.NoError(t, store.Delete(first.File))

	second, err := svc.Speak(context.Background(), "Bus leaves at 5.", assistant.LangEnglish)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.EqualValues(t, 2, synth.calls)
}

func TestRebuildRestoresIndexAndCap(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var names []string
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("voice_en_answer_%d_abcd012%d_%d.mp3", i, i, base.Add(time.Duration(i)*time.Minute).UnixMilli())
		_, err := store.Save(name, []byte("ID3"))
		require.NoError(t, err)
		names = append(names, name)
	}
	_, err = store.Save("voice_broken.mp3", []byte("x"))
	require.NoError(t, err)

	clock := &fakeClock{now: base.Add(5 * time.Minute)}
	svc := newVoiceService(&fakeSynth{}, store, nil, nil, VoiceConfig{MaxFiles: 3}, nil, clock.Now)
	require.NoError(t, svc.Rebuild(context.Background()))

	assert.Equal(t, []string{names[3], names[2], names[1]}, svc.index.files())
	assert.False(t, store.Exists(names[0]))
	assert.False(t, store.Exists("voice_broken.mp3"))
}

func TestCleanupExpiresAndReports(t *testing.T) {
	svc, store, clock := newTestVoiceService(t, &fakeSynth{}, 5)

	old, err := svc.Speak(context.Background(), "old answer", assistant.LangEnglish)
	require.NoError(t, err)
	clock.Advance(20 * time.Minute)
	fresh, err := svc.Speak(context.Background(), "fresh answer", assistant.LangEnglish)
	require.NoError(t, err)
	clock.Advance(15 * time.Minute)

	orphan := "voice_en_orphan_deadbeef_1.mp3"
	_, err = store.Save(orphan, []byte("ID3"))
	require.NoError(t, err)
	stale := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(store.Path(orphan), stale, stale))

	result, err := svc.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, 1, result.Kept)
	assert.False(t, store.Exists(old.File))
	assert.False(t, store.Exists(orphan))
	assert.True(t, store.Exists(fresh.File))
}

func TestPrepareSpeech(t *testing.T) {
	cases := []struct {
		name string
		in   string
		lang assistant.Lang
		want string
	}{
		{"codes spelled out", "**CSE** is next to ME block", assistant.LangEnglish, "C S E is next to M E block."},
		{"civil", "Go to CE", assistant.LangEnglish, "Go to Civil Engineering."},
		{"lines become sentences", "📍 Library\n• Floor 2\n→ open now!", assistant.LangEnglish, "Library. Floor 2. open now!"},
		{"links keep text", "[Map](https://maps.google.com)", assistant.LangEnglish, "Map."},
		{"hindi digits spaced", "कमरा101 में", assistant.LangHindi, "कमरा 101 में."},
		{"hindi keeps codes", "CSE विभाग", assistant.LangHindi, "CSE विभाग."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PrepareSpeech(tc.in, tc.lang))
		})
	}
}

func TestVoiceKey(t *testing.T) {
	key := voiceKey(assistant.LangEnglish, "Where is C S E?")
	assert.Regexp(t, `^en_where_is_c_s_e_[0-9a-f]{8}$`, key)
	assert.Equal(t, key, voiceKey(assistant.LangEnglish, "where is c s e?"))
	assert.NotEqual(t, key, voiceKey(assistant.LangHindi, "Where is C S E?"))

	long := voiceKey(assistant.LangEnglish, fmt.Sprintf("%0100d", 7))
	assert.Len(t, long, len("en_")+80+1+8)

	k, created, ok := parseVoiceFile("voice_" + key + "_1709287200000.mp3")
	require.True(t, ok)
	assert.Equal(t, key, k)
	assert.Equal(t, int64(1709287200000), created.UnixMilli())
}
