package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-connect-api/internal/assistant"
	"github.com/noah-isme/campus-connect-api/internal/dto"
	"github.com/noah-isme/campus-connect-api/internal/service"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
	"github.com/noah-isme/campus-connect-api/pkg/response"
)

const voiceCleanupAnswer = "🗑️ All voice files cleaned up successfully"

type assistantService interface {
	Ask(ctx context.Context, query string) (*assistant.Reply, error)
	AskVoice(ctx context.Context, query string) (*service.VoiceReply, error)
}

type voiceFiles interface {
	Open(file string) (*os.File, error)
	Cleanup(ctx context.Context) (*dto.VoiceCleanupResult, error)
}

// AssistantHandler serves the campus assistant.
type AssistantHandler struct {
	service assistantService
	voice   voiceFiles
}

// NewAssistantHandler builds the handler. voice may be nil when voice replies are disabled.
func NewAssistantHandler(svc assistantService, voice voiceFiles) *AssistantHandler {
	return &AssistantHandler{service: svc, voice: voice}
}

// Query godoc
// @Summary Ask the campus assistant
// @Tags Assistant
// @Accept json
// @Produce json
// @Param payload body dto.AssistantQuery true "Question"
// @Success 200 {object} dto.AssistantAnswer
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /ai/query [post]
func (h *AssistantHandler) Query(c *gin.Context) {
	var req dto.AssistantQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	reply, err := h.service.Ask(c.Request.Context(), req.Qry)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Raw(c, http.StatusOK, dto.AssistantAnswer{Answer: reply.Display})
}

// Voice godoc
// @Summary Ask the campus assistant and get a spoken answer
// @Description Returns the answer with an audio link. Send Accept: audio/mpeg to receive the mp3 itself.
// @Tags Assistant
// @Accept json
// @Produce json
// @Produce audio/mpeg
// @Param payload body dto.AssistantQuery true "Question"
// @Success 200 {object} dto.VoiceAnswer
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ai/query/voice [post]
func (h *AssistantHandler) Voice(c *gin.Context) {
	var req dto.AssistantQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	out, err := h.service.AskVoice(c.Request.Context(), req.Qry)
	if err != nil {
		response.Error(c, err)
		return
	}

	if wantsAudio(c) {
		h.streamClip(c, out)
		return
	}

	body := dto.VoiceAnswer{Answer: out.Display}
	if out.Clip != nil {
		body.AudioURL = &out.Clip.URL
	}
	response.Raw(c, http.StatusOK, body)
}

// CleanupVoices godoc
// @Summary Expire and prune cached voice files
// @Tags Assistant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /ai/cleanup-voices [post]
func (h *AssistantHandler) CleanupVoices(c *gin.Context) {
	if h.voice == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrVoiceUpstream, "Voice replies are disabled on this server."))
		return
	}
	result, err := h.voice.Cleanup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, voiceCleanupAnswer, result, nil)
}

func (h *AssistantHandler) streamClip(c *gin.Context, out *service.VoiceReply) {
	if out.Clip == nil || h.voice == nil {
		if out.VoiceErr != nil {
			response.Error(c, out.VoiceErr)
			return
		}
		response.Error(c, appErrors.ErrVoiceUpstream)
		return
	}

	f, err := h.voice.Open(out.Clip.File)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrVoiceUpstream.Code, appErrors.ErrVoiceUpstream.Status, appErrors.ErrVoiceUpstream.Message))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), "audio/mpeg", f, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", out.Clip.File),
	})
}

func wantsAudio(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "audio/mpeg")
}
