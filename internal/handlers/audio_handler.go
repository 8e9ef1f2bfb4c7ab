package handlers

import (
	"errors"
	"net/http"

	"learnplay/internal/audio"
)

// AudioHandler serves spoken letter clips
type AudioHandler struct {
	tts *audio.TTSService
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(tts *audio.TTSService) *AudioHandler {
	return &AudioHandler{tts: tts}
}

func (h *AudioHandler) Letter(w http.ResponseWriter, r *http.Request) {
	path, err := h.tts.LetterClip(r.Context(), r.PathValue("letter"))
	if err != nil {
		if errors.Is(err, audio.ErrInvalidLetter) {
			respondWithError(w, http.StatusBadRequest, "Invalid letter", "", nil)
			return
		}
		respondWithError(w, http.StatusBadGateway, "Audio unavailable", "Letter audio failed", err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}
