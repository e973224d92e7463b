package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-connect-api/internal/assistant"
	"github.com/noah-isme/campus-connect-api/internal/models"
	"github.com/noah-isme/campus-connect-api/pkg/config"
	"github.com/noah-isme/campus-connect-api/pkg/osrm"
)

var errEmptyAnswer = errors.New("generator returned no text")

type voiceSpeaker interface {
	Speak(ctx context.Context, text string, lang assistant.Lang) (*VoiceClip, error)
}

// AssistantDeps lists the collaborators of the assistant. Routes, Generator,
// Recorder and Cache are optional.
type AssistantDeps struct {
	Departments    assistant.DepartmentLookup
	Materials      assistant.MaterialLookup
	Routes         assistant.RoutePlanner
	Generator      assistant.TextGenerator
	Recorder       assistant.SearchRecorder
	Campus         config.CampusInfo
	MaterialsLimit int
	Cache          *CacheService
	AnswerTTL      time.Duration
}

// VoiceReply is an assistant reply with its audio. Clip is nil when VoiceErr is set
// or voice is disabled.
type VoiceReply struct {
	*assistant.Reply
	Clip     *VoiceClip
	VoiceErr error
}

// AssistantService answers campus questions and records intent metrics.
type AssistantService struct {
	router  *assistant.Router
	voice   voiceSpeaker
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAssistantService builds the router with instrumented collaborators.
func NewAssistantService(deps AssistantDeps, voice voiceSpeaker, metrics *MetricsService, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}

	routerDeps := assistant.Dependencies{
		Recorder:       deps.Recorder,
		Campus:         deps.Campus,
		MaterialsLimit: deps.MaterialsLimit,
	}
	if deps.Departments != nil {
		routerDeps.Departments = timedDepartments{next: deps.Departments, metrics: metrics}
	}
	if deps.Materials != nil {
		routerDeps.Materials = timedMaterials{next: deps.Materials, metrics: metrics}
	}
	if deps.Routes != nil {
		routerDeps.Routes = timedRoutes{next: deps.Routes, metrics: metrics}
	}
	if deps.Generator != nil {
		routerDeps.Generator = &cachedGenerator{next: deps.Generator, cache: deps.Cache, ttl: deps.AnswerTTL, metrics: metrics}
	}

	return &AssistantService{
		router:  assistant.NewRouter(routerDeps, logger.Named("assistant")),
		voice:   voice,
		metrics: metrics,
		logger:  logger,
	}
}

// Ask answers a text query.
func (s *AssistantService) Ask(ctx context.Context, query string) (*assistant.Reply, error) {
	reply, err := s.router.Answer(ctx, query)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordIntent(string(reply.Intent), string(reply.Lang))
	s.logger.Debug("assistant answered",
		zap.String("intent", string(reply.Intent)),
		zap.String("phrase", string(reply.Phrase)),
		zap.String("lang", string(reply.Lang)))
	return reply, nil
}

// AskVoice answers a query and renders its speech channel. Voice failures do not
// fail the call; they are reported in VoiceErr so callers can fall back to text.
func (s *AssistantService) AskVoice(ctx context.Context, query string) (*VoiceReply, error) {
	reply, err := s.Ask(ctx, query)
	if err != nil {
		return nil, err
	}
	out := &VoiceReply{Reply: reply}
	if s.voice == nil {
		return out, nil
	}
	out.Clip, out.VoiceErr = s.voice.Speak(ctx, reply.Speech, reply.Lang)
	if out.VoiceErr != nil {
		s.logger.Warn("voice reply unavailable", zap.String("intent", string(reply.Intent)), zap.Error(out.VoiceErr))
	}
	return out, nil
}

// cachedGenerator keeps generated answers in Redis. The prompt embeds the
// language instruction and the query, so its normalized form is the cache key.
type cachedGenerator struct {
	next    assistant.TextGenerator
	cache   *CacheService
	ttl     time.Duration
	metrics *MetricsService
}

func (g *cachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	sum := sha1.Sum([]byte(assistant.Normalize(prompt)))
	key := CacheKey("assistant", "answer", hex.EncodeToString(sum[:]))

	text, _, err := Remember(ctx, g.cache, key, g.ttl, func(ctx context.Context) (string, error) {
		start := time.Now()
		text, err := g.next.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyAnswer
		}
		g.metrics.ObserveExternalCall("gemini", err, time.Since(start))
		return text, err
	})
	return text, err
}

type timedRoutes struct {
	next    assistant.RoutePlanner
	metrics *MetricsService
}

func (t timedRoutes) Route(ctx context.Context, from, to osrm.Point) (*osrm.Route, error) {
	start := time.Now()
	route, err := t.next.Route(ctx, from, to)
	t.metrics.ObserveExternalCall("osrm", err, time.Since(start))
	return route, err
}

type timedDepartments struct {
	next    assistant.DepartmentLookup
	metrics *MetricsService
}

func (t timedDepartments) Resolve(ctx context.Context, term string) (*models.Department, error) {
	start := time.Now()
	defer func() { t.metrics.ObserveDBQuery("department_resolve", time.Since(start)) }()
	return t.next.Resolve(ctx, term)
}

type timedMaterials struct {
	next    assistant.MaterialLookup
	metrics *MetricsService
}

func (t timedMaterials) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	start := time.Now()
	defer func() { t.metrics.ObserveDBQuery("resource_list", time.Since(start)) }()
	return t.next.List(ctx, filter)
}
