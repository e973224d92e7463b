package assistant

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-connect-api/internal/models"
	"github.com/noah-isme/campus-connect-api/pkg/config"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/osrm"
)

// DepartmentLookup resolves a free-text place fragment.
type DepartmentLookup interface {
	Resolve(ctx context.Context, term string) (*models.Department, error)
}

// MaterialLookup lists approved study materials.
type MaterialLookup interface {
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
}

// RoutePlanner computes walking routes.
type RoutePlanner interface {
	Route(ctx context.Context, from, to osrm.Point) (*osrm.Route, error)
}

// TextGenerator answers free-form prompts.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SearchRecorder counts department lookups. Implementations must not block on failure.
type SearchRecorder interface {
	RecordLookup(ctx context.Context, departmentIDs ...string)
}

// Dependencies wires the router to its collaborators. Routes, Generator and Recorder may be nil.
type Dependencies struct {
	Departments    DepartmentLookup
	Materials      MaterialLookup
	Routes         RoutePlanner
	Generator      TextGenerator
	Recorder       SearchRecorder
	Campus         config.CampusInfo
	MaterialsLimit int
}

type handlerFunc func(ctx context.Context, c Classification) Reply

// Router answers campus questions by intent.
type Router struct {
	deps     Dependencies
	handlers map[Intent]handlerFunc
	logger   *zap.Logger
}

// NewRouter constructs a Router.
func NewRouter(deps Dependencies, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.MaterialsLimit <= 0 {
		deps.MaterialsLimit = 5
	}
	r := &Router{deps: deps, logger: logger}
	r.handlers = map[Intent]handlerFunc{
		IntentOffTopic:       r.static(PhraseOffTopic),
		IntentGreeting:       r.static(PhraseGreeting),
		IntentNavigation:     r.navigate,
		IntentLocation:       r.locate,
		IntentStudyMaterials: r.materials,
		IntentEvents:         r.static(PhraseEvents),
		IntentMess:           r.static(PhraseMess),
		IntentBus:            r.static(PhraseBus),
		IntentFallback:       r.fallback,
	}
	return r
}

// Answer classifies the query and renders the reply. Only an empty query is an error;
// downstream failures degrade to canned replies.
func (r *Router) Answer(ctx context.Context, query string) (*Reply, error) {
	if strings.TrimSpace(query) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Please ask a question.")
	}
	c := Classify(query)
	reply := r.handlers[c.Intent](ctx, c)
	return &reply, nil
}

func (r *Router) static(phrase Phrase) handlerFunc {
	return func(_ context.Context, c Classification) Reply {
		return Render(c.Intent, phrase, c.Lang, Facts{Campus: r.deps.Campus})
	}
}

func (r *Router) navigate(ctx context.Context, c Classification) Reply {
	var from, to *models.Department
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from = r.resolve(gctx, CanonicalPlace(c.From))
		return nil
	})
	g.Go(func() error {
		to = r.resolve(gctx, CanonicalPlace(c.To))
		return nil
	})
	_ = g.Wait()

	if from == nil {
		return Render(c.Intent, PhraseNotFound, c.Lang, Facts{Query: c.From})
	}
	if to == nil {
		return Render(c.Intent, PhraseNotFound, c.Lang, Facts{Query: c.To})
	}

	a := osrm.Point{Lat: from.Latitude, Lon: from.Longitude}
	b := osrm.Point{Lat: to.Latitude, Lon: to.Longitude}
	facts := Facts{From: from, To: to, MapsURL: MapsDirectionsURL(a, b)}

	if r.deps.Routes != nil {
		route, err := r.deps.Routes.Route(ctx, a, b)
		if err == nil && route != nil {
			facts.DistanceMeters = int(math.Round(route.DistanceMeters))
			facts.Minutes = int(math.Max(1, math.Round(route.DurationSeconds/60)))
			for _, step := range route.Steps {
				if step.Instruction != "" {
					facts.Steps = append(facts.Steps, step.Instruction)
				}
			}
			return Render(c.Intent, PhraseRoute, c.Lang, facts)
		}
		r.logger.Warn("walking route unavailable, using straight-line distance",
			zap.String("from", from.Code), zap.String("to", to.Code), zap.Error(err))
	}

	meters := HaversineMeters(a, b)
	facts.DistanceMeters = int(math.Round(meters))
	facts.Minutes = WalkingMinutes(meters)
	return Render(c.Intent, PhraseRouteApprox, c.Lang, facts)
}

func (r *Router) locate(ctx context.Context, c Classification) Reply {
	candidate := LocationCandidate(c.Normalized)
	if len([]rune(candidate)) < 2 {
		return Render(c.Intent, PhraseNeedDepartment, c.Lang, Facts{})
	}
	department := r.resolve(ctx, candidate)
	if department == nil {
		return Render(c.Intent, PhraseNotFound, c.Lang, Facts{Query: candidate})
	}
	if r.deps.Recorder != nil {
		r.deps.Recorder.RecordLookup(ctx, department.ID)
	}
	return Render(c.Intent, PhraseLocation, c.Lang, Facts{Department: department})
}

func (r *Router) materials(ctx context.Context, c Classification) Reply {
	dept := MaterialsDepartment(c.Normalized)
	facts := Facts{MaterialsDept: dept}
	if r.deps.Materials != nil {
		resources, err := r.deps.Materials.List(ctx, models.ResourceFilter{
			Status:     models.ResourceApproved,
			Department: dept,
			DeptWord:   true,
			Limit:      r.deps.MaterialsLimit,
		})
		if err != nil {
			r.logger.Warn("study materials lookup failed", zap.String("department", dept), zap.Error(err))
		}
		facts.Materials = resources
	}
	if len(facts.Materials) == 0 {
		return Render(c.Intent, PhraseNoMaterials, c.Lang, facts)
	}
	return Render(c.Intent, PhraseMaterials, c.Lang, facts)
}

func (r *Router) fallback(ctx context.Context, c Classification) Reply {
	if r.deps.Generator == nil {
		return Render(c.Intent, PhraseAIUnavailable, c.Lang, Facts{})
	}
	text, err := r.deps.Generator.Generate(ctx, Prompt(c.Lang, c.Query))
	text = strings.TrimSpace(text)
	if err != nil || SpeechText(text) == "" {
		r.logger.Warn("generative answer unavailable", zap.Error(err))
		return Render(c.Intent, PhraseAIUnavailable, c.Lang, Facts{})
	}
	return Render(c.Intent, PhraseAI, c.Lang, Facts{Generated: text})
}

// resolve returns nil when the fragment matches nothing or the lookup fails.
func (r *Router) resolve(ctx context.Context, term string) *models.Department {
	if r.deps.Departments == nil || term == "" {
		return nil
	}
	department, err := r.deps.Departments.Resolve(ctx, term)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("department lookup failed", zap.String("term", term), zap.Error(err))
		}
		return nil
	}
	return department
}

// Prompt wraps the verbatim query in the language-specific instruction.
func Prompt(lang Lang, query string) string {
	if lang == LangHindi {
		return `आप MMMUT कैंपस AI हैं। संक्षिप्त और स्पष्ट हिंदी में जवाब दें (2-3 वाक्य): "` + query + `"`
	}
	return `You are MMMUT Campus AI. Give a brief, conversational answer in 2-3 sentences: "` + query + `"`
}
