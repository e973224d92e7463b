package dto

// AssistantQuery is the free-text question sent to the assistant.
type AssistantQuery struct {
	Qry string `json:"qry"`
}

// AssistantAnswer is the display-channel reply.
type AssistantAnswer struct {
	Answer string `json:"answer"`
}

// VoiceAnswer pairs the display answer with the generated audio, if any.
type VoiceAnswer struct {
	Answer   string  `json:"answer"`
	AudioURL *string `json:"audioUrl"`
}

// VoiceCleanupResult reports what the cleanup endpoint removed.
type VoiceCleanupResult struct {
	Expired int `json:"expired"`
	Pruned  int `json:"pruned"`
	Kept    int `json:"kept"`
}
