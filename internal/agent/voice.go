package agent

import (
	"context"

	"niva/internal/logging"
	"niva/internal/speech"
)

// VoiceTurn is a Turn plus the synthesized audio artifact path. AudioPath
// is empty when synthesis failed or was skipped; the text reply stands on
// its own.
type VoiceTurn struct {
	Turn
	Transcript string
	AudioPath  string
}

// VoicePipeline runs transcribed audio through the engine and voices the
// reply: STT, Process, TTS in sequence.
type VoicePipeline struct {
	agent       *Agent
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
}

// NewVoicePipeline assembles the pipeline. The synthesizer may be nil, in
// which case replies are text-only.
func NewVoicePipeline(a *Agent, t speech.Transcriber, s speech.Synthesizer) *VoicePipeline {
	return &VoicePipeline{agent: a, transcriber: t, synthesizer: s}
}

// ProcessAudio transcribes the samples, runs one turn, and synthesizes the
// reply. A transcription failure is terminal; on a synthesis failure the
// turn's text reply is delivered with no audio.
func (v *VoicePipeline) ProcessAudio(ctx context.Context, samples []float32, sampleRate int) (VoiceTurn, error) {
	lang := v.agent.Session().Language()
	transcript, err := v.transcriber.Transcribe(ctx, samples, sampleRate, lang)
	if err != nil {
		return VoiceTurn{}, err
	}

	turn, err := v.agent.Process(ctx, transcript.Text)
	if err != nil {
		return VoiceTurn{}, err
	}

	result := VoiceTurn{Turn: turn, Transcript: transcript.Text}
	if v.synthesizer == nil {
		return result, nil
	}
	audioPath, err := v.synthesizer.Synthesize(ctx, turn.Response, turn.Language)
	if err != nil {
		logging.Speech("Synthesis failed, delivering text only: %v", err)
		return result, nil
	}
	result.AudioPath = audioPath
	return result, nil
}
