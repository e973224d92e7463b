package response

import (
	"context"
	"errors"
	"net"
	"strings"

	appErrors "github.com/noah-isme/campus-connect-api/pkg/errors"
)

const (
	groupAI          = "ai"
	groupDepartments = "departments"
	groupStudyHub    = "studyhub"
	groupAuth        = "auth"
	groupAdmin       = "admin"
)

var internalPhrasing = map[string]string{
	groupAI:          "I couldn't get a valid AI response right now. Please try again.",
	groupDepartments: "Couldn't fetch department details right now. Try again later.",
	groupStudyHub:    "Couldn't load study materials right now. Try again later.",
	groupAuth:        "We couldn't process your sign in right now. Please try again.",
	groupAdmin:       "The moderation request could not be completed. Please try again.",
}

var notFoundPhrasing = map[string]string{
	groupDepartments: "That department doesn't exist. Try another name or check spelling.",
	groupStudyHub:    "No study material found for that query. Try different keywords.",
	groupAdmin:       "That resource no longer exists.",
}

// Translate turns a typed error into the message shown to API clients.
// Wrapped causes are never included.
func Translate(path string, err *appErrors.Error) string {
	if err == nil {
		return ""
	}
	group := routeGroup(path)

	switch err.Code {
	case appErrors.ErrInternal.Code:
		if msg, ok := internalPhrasing[group]; ok {
			return msg
		}
		return appErrors.ErrInternal.Message
	case appErrors.ErrNotFound.Code:
		if err.Message != "" && err.Message != appErrors.ErrNotFound.Message {
			return err.Message
		}
		if msg, ok := notFoundPhrasing[group]; ok {
			return msg
		}
		return "The requested item was not found."
	case appErrors.ErrAIUpstream.Code:
		if isTimeout(err.Err) {
			return "The AI is slow to respond. Please try again shortly."
		}
		return fallbackMessage(err, appErrors.ErrAIUpstream)
	case appErrors.ErrConflict.Code:
		return fallbackMessage(err, appErrors.Clone(appErrors.ErrConflict, "That record already exists."))
	case appErrors.ErrValidation.Code:
		return fallbackMessage(err, appErrors.ErrValidation)
	}

	if err.Message == "" {
		return appErrors.ErrInternal.Message
	}
	return err.Message
}

func fallbackMessage(err, fallback *appErrors.Error) string {
	if err.Message == "" || err.Message == appErrors.ErrConflict.Message {
		return fallback.Message
	}
	return err.Message
}

func routeGroup(path string) string {
	trimmed := strings.Trim(strings.ToLower(path), "/")
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		if part == "api" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
