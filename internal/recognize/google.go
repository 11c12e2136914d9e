package recognize

import (
	"context"
	"log/slog"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/parley-cli/parley/internal/audio"
)

// recognizeAPI is the slice of the Cloud Speech client Transcriber uses;
// tests substitute a fake.
type recognizeAPI interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
}

// Transcriber sends PCM clips to Google Cloud Speech batch recognition.
type Transcriber struct {
	api    recognizeAPI
	logger *slog.Logger
}

// NewGoogle dials the Cloud Speech service using Application Default
// Credentials.
func NewGoogle(ctx context.Context, logger *slog.Logger) (*Transcriber, func() error, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &Transcriber{api: client, logger: logger}, client.Close, nil
}

// Transcribe runs one batch recognition request for the clip in the given
// locale. Service failures are folded into the Result rather than returned,
// so one bad network moment never ends the conversation loop.
func (t *Transcriber) Transcribe(ctx context.Context, clip audio.Clip, locale string) Result {
	if clip.Empty() {
		return Result{Kind: KindNoSpeech}
	}

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(clip.SampleRate),
			LanguageCode:    locale,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.PCM},
		},
	}

	resp, err := t.api.Recognize(ctx, req)
	if err != nil {
		reason := classifyRecognizeError(err)
		t.logger.Warn("speech recognition request failed",
			slog.String("locale", locale),
			slog.String("error", err.Error()))
		return failed(reason)
	}

	text := assemble(transcripts(resp))
	if text == "" {
		return failed(ReasonUnrecognized)
	}
	return ok(text)
}

// transcripts collects the top alternative of each result segment.
func transcripts(resp *speechpb.RecognizeResponse) []string {
	var segments []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		segments = append(segments, alts[0].GetTranscript())
	}
	return segments
}

func classifyRecognizeError(err error) Reason {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return ReasonUnavailable
	default:
		return ReasonInternal
	}
}
