package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-connect-api/internal/assistant"
	"github.com/noah-isme/campus-connect-api/internal/models"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/osrm"
)

type stubDepartments map[string]*models.Department

func (s stubDepartments) Resolve(_ context.Context, term string) (*models.Department, error) {
	if d, ok := s[strings.ToLower(term)]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

type stubGenerator struct {
	calls int
	text  string
	err   error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubRoutes struct{ err error }

func (s stubRoutes) Route(context.Context, osrm.Point, osrm.Point) (*osrm.Route, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &osrm.Route{DistanceMeters: 300, DurationSeconds: 240}, nil
}

type stubSpeaker struct {
	clip *VoiceClip
	err  error
	text string
	lang assistant.Lang
}

func (s *stubSpeaker) Speak(_ context.Context, text string, lang assistant.Lang) (*VoiceClip, error) {
	s.text, s.lang = text, lang
	return s.clip, s.err
}

func campusStub() stubDepartments {
	floor := 1
	cse := &models.Department{ID: "d-cse", Code: "CSE", Name: "Computer Science & Engineering", Latitude: 26.7310, Longitude: 83.4330, Building: "Academic Block", Floor: &floor}
	lib := &models.Department{ID: "d-lib", Code: "LIB", Name: "Central Library", Latitude: 26.7320, Longitude: 83.4340}
	return stubDepartments{"cse": cse, "lib": lib}
}

func TestAssistantAskRecordsIntent(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewAssistantService(AssistantDeps{Departments: campusStub(), Routes: stubRoutes{}}, nil, metrics, nil)

	reply, err := svc.Ask(context.Background(), "lib to cse")
	require.NoError(t, err)
	assert.Equal(t, assistant.IntentNavigation, reply.Intent)
	assert.Equal(t, assistant.PhraseRoute, reply.Phrase)

	assert.Equal(t, 1.0, metricValue(t, metrics, "assistant_intents_total", map[string]string{"intent": "navigation", "lang": "en"}))
	assert.Equal(t, 1.0, metricValue(t, metrics, "external_call_duration_seconds", map[string]string{"client": "osrm", "outcome": "ok"}))
	assert.Equal(t, 2.0, metricValue(t, metrics, "db_query_duration_seconds", map[string]string{"query": "department_resolve"}))
}

func TestAssistantAskEmptyQuery(t *testing.T) {
	svc := NewAssistantService(AssistantDeps{}, nil, nil, nil)
	_, err := svc.Ask(context.Background(), " ")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestAssistantCachesGeneratedAnswers(t *testing.T) {
	gen := &stubGenerator{text: "MMMUT was founded in 1962."}
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc := NewAssistantService(AssistantDeps{Generator: gen, Cache: cache, AnswerTTL: time.Hour}, nil, nil, nil)

	first, err := svc.Ask(context.Background(), "When was the university founded")
	require.NoError(t, err)
	second, err := svc.Ask(context.Background(), "when  was the UNIVERSITY founded")
	require.NoError(t, err)

	assert.Equal(t, assistant.PhraseAI, first.Phrase)
	assert.Equal(t, first.Display, second.Display)
	assert.Equal(t, 1, gen.calls)
	require.Len(t, repo.ttls, 1)
	for key, ttl := range repo.ttls {
		assert.True(t, strings.HasPrefix(key, "campus:assistant:answer:"))
		assert.Equal(t, time.Hour, ttl)
	}
}

func TestAssistantDoesNotCacheFailures(t *testing.T) {
	gen := &stubGenerator{text: "   "}
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewAssistantService(AssistantDeps{Generator: gen, Cache: NewCacheService(repo, nil, time.Minute, nil, true)}, nil, metrics, nil)

	reply, err := svc.Ask(context.Background(), "who designed the campus")
	require.NoError(t, err)
	assert.Equal(t, assistant.PhraseAIUnavailable, reply.Phrase)
	assert.Empty(t, repo.items)
	assert.Equal(t, 1.0, metricValue(t, metrics, "external_call_duration_seconds", map[string]string{"client": "gemini", "outcome": "error"}))
}

func TestAssistantAskVoice(t *testing.T) {
	speaker := &stubSpeaker{clip: &VoiceClip{File: "voice_hi_x.mp3", URL: "/voices/voice_hi_x.mp3"}}
	svc := NewAssistantService(AssistantDeps{Departments: campusStub()}, speaker, nil, nil)

	out, err := svc.AskVoice(context.Background(), "लाइब्रेरी कहाँ है")
	require.NoError(t, err)
	assert.Equal(t, assistant.LangHindi, speaker.lang)
	assert.Equal(t, out.Speech, speaker.text)
	assert.Equal(t, "/voices/voice_hi_x.mp3", out.Clip.URL)
	assert.NoError(t, out.VoiceErr)
}

func TestAssistantAskVoiceDegradesToText(t *testing.T) {
	speaker := &stubSpeaker{err: appErrors.ErrVoiceUpstream}
	svc := NewAssistantService(AssistantDeps{}, speaker, nil, nil)

	out, err := svc.AskVoice(context.Background(), "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, out.Display)
	assert.Nil(t, out.Clip)
	assert.True(t, errors.Is(out.VoiceErr, appErrors.ErrVoiceUpstream))

	noVoice := NewAssistantService(AssistantDeps{}, nil, nil, nil)
	out, err = noVoice.AskVoice(context.Background(), "hello")
	require.NoError(t, err)
	assert.Nil(t, out.Clip)
	assert.NoError(t, out.VoiceErr)
}
