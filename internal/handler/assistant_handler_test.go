package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-connect-api/internal/assistant"
	"github.com/noah-isme/campus-connect-api/internal/dto"
	"github.com/noah-isme/campus-connect-api/internal/service"
	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

type assistantServiceMock struct {
	reply     *assistant.Reply
	err       error
	clip      *service.VoiceClip
	voiceErr  error
	lastQuery string
}

func (m *assistantServiceMock) Ask(ctx context.Context, query string) (*assistant.Reply, error) {
	m.lastQuery = query
	return m.reply, m.err
}

func (m *assistantServiceMock) AskVoice(ctx context.Context, query string) (*service.VoiceReply, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return &service.VoiceReply{Reply: m.reply, Clip: m.clip, VoiceErr: m.voiceErr}, nil
}

type voiceFilesMock struct {
	dir    string
	result *dto.VoiceCleanupResult
	err    error
}

func (m *voiceFilesMock) Open(file string) (*os.File, error) {
	f, err := os.Open(filepath.Join(m.dir, file))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "That voice reply has expired. Please ask again.")
	}
	return f, nil
}

func (m *voiceFilesMock) Cleanup(ctx context.Context) (*dto.VoiceCleanupResult, error) {
	return m.result, m.err
}

func greetingReply() *assistant.Reply {
	return &assistant.Reply{
		Intent:  assistant.IntentGreeting,
		Phrase:  assistant.PhraseGreeting,
		Lang:    assistant.LangEnglish,
		Speech:  "Hello! Ask me about departments.",
		Display: "👋 **Hello!** Ask me about departments.",
	}
}

func postJSON(path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAssistantHandlerQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assistantServiceMock{reply: greetingReply()}
	handler := NewAssistantHandler(mockSvc, nil)

	c, w := postJSON("/api/ai/query", `{"qry":"hello"}`)
	handler.Query(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", mockSvc.lastQuery)
	assert.JSONEq(t, `{"answer":"👋 **Hello!** Ask me about departments."}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestAssistantHandlerQueryErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := postJSON("/api/ai/query", `{"qry":`)
	NewAssistantHandler(&assistantServiceMock{}, nil).Query(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"answer":"Some required data is missing. Please check and resend."}`, w.Body.String())

	c, w = postJSON("/api/ai/query", `{"qry":"  "}`)
	NewAssistantHandler(&assistantServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "Please ask a question.")}, nil).Query(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"answer":"Please ask a question."}`, w.Body.String())
}

func TestAssistantHandlerVoiceJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assistantServiceMock{
		reply: greetingReply(),
		clip:  &service.VoiceClip{File: "voice_en_hello_1.mp3", URL: "/voices/voice_en_hello_1.mp3"},
	}

	c, w := postJSON("/api/ai/query/voice", `{"qry":"hello"}`)
	NewAssistantHandler(mockSvc, nil).Voice(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.VoiceAnswer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.AudioURL)
	assert.Equal(t, "/voices/voice_en_hello_1.mp3", *body.AudioURL)

	mockSvc.clip, mockSvc.voiceErr = nil, appErrors.ErrVoiceUpstream
	c, w = postJSON("/api/ai/query/voice", `{"qry":"hello"}`)
	NewAssistantHandler(mockSvc, nil).Voice(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"👋 **Hello!** Ask me about departments.","audioUrl":null}`, w.Body.String())
}

func TestAssistantHandlerVoiceStreamsAudio(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "voice_en_hello_1.mp3"), []byte("ID3-audio"), 0o644))
	mockSvc := &assistantServiceMock{reply: greetingReply(), clip: &service.VoiceClip{File: "voice_en_hello_1.mp3"}}

	c, w := postJSON("/api/ai/query/voice", `{"qry":"hello"}`)
	c.Request.Header.Set("Accept", "audio/mpeg")
	NewAssistantHandler(mockSvc, &voiceFilesMock{dir: dir}).Voice(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "9", w.Header().Get("Content-Length"))
	assert.Equal(t, `inline; filename="voice_en_hello_1.mp3"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID3-audio", w.Body.String())
}

func TestAssistantHandlerVoiceClipPrunedBeforeStreaming(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assistantServiceMock{reply: greetingReply(), clip: &service.VoiceClip{File: "voice_en_gone_1.mp3"}}

	c, w := postJSON("/api/ai/query/voice", `{"qry":"hello"}`)
	c.Request.Header.Set("Accept", "audio/mpeg")
	NewAssistantHandler(mockSvc, &voiceFilesMock{dir: t.TempDir()}).Voice(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"answer":"That voice reply has expired. Please ask again."}`, w.Body.String())
}

func TestAssistantHandlerVoiceAudioUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assistantServiceMock{reply: greetingReply(), voiceErr: appErrors.Wrap(assert.AnError, appErrors.ErrVoiceUpstream.Code, appErrors.ErrVoiceUpstream.Status, appErrors.ErrVoiceUpstream.Message)}

	c, w := postJSON("/api/ai/query/voice", `{"qry":"hello"}`)
	c.Request.Header.Set("Accept", "audio/mpeg")
	NewAssistantHandler(mockSvc, nil).Voice(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"answer":"Voice generation is unavailable right now. Please try the text answer."}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestAssistantHandlerCleanupVoices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cleaner := &voiceFilesMock{result: &dto.VoiceCleanupResult{Expired: 2, Pruned: 1, Kept: 4}}

	c, w := postJSON("/api/ai/cleanup-voices", "")
	NewAssistantHandler(&assistantServiceMock{}, cleaner).CleanupVoices(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"🗑️ All voice files cleaned up successfully","data":{"expired":2,"pruned":1,"kept":4}}`, w.Body.String())

	c, w = postJSON("/api/ai/cleanup-voices", "")
	NewAssistantHandler(&assistantServiceMock{}, nil).CleanupVoices(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"answer":"Voice replies are disabled on this server."}`, w.Body.String())
}
