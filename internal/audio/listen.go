package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNoSpeech reports that nothing crossed the speech threshold before the
// listening window expired.
var ErrNoSpeech = errors.New("no speech detected within the listening window")

// DeviceError wraps microphone/stream failures so callers can distinguish
// them from the benign no-speech timeout.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Clip is one captured utterance as raw PCM.
type Clip struct {
	PCM        []byte
	SampleRate int
}

// Empty reports whether the clip carries no samples.
func (c Clip) Empty() bool {
	return len(c.PCM) == 0
}

// Options bounds one listening attempt.
type Options struct {
	MaxWait   time.Duration // silence allowed before giving up
	MaxPhrase time.Duration // recording cap once speech starts
	Calibrate time.Duration // ambient noise measurement window
}

const (
	// noiseFloorScale and minSpeechRMS derive the speech gate from the
	// calibrated ambient level (normalized RMS of 16-bit samples).
	noiseFloorScale = 3.0
	minSpeechRMS    = 0.015

	// hangover is the trailing silence that ends a phrase early.
	hangover = 800 * time.Millisecond
)

// chunkSource is the capture stream contract Listen consumes; tests feed
// synthetic PCM through a fake.
type chunkSource interface {
	Chunks() <-chan []byte
	Stop() error
}

// Microphone is the session-facing capture adapter bound to one device.
type Microphone struct {
	device Device
	opts   Options
}

// NewMicrophone binds listening options to a selected device.
func NewMicrophone(device Device, opts Options) *Microphone {
	return &Microphone{device: device, opts: opts}
}

// Capture runs one calibrate/wait/record cycle against the microphone.
func (m *Microphone) Capture(ctx context.Context) (Clip, error) {
	return Listen(ctx, m.device, m.opts)
}

// Listen opens the device, calibrates against ambient noise, waits for
// speech, and records one phrase. The Pulse stream is released on every
// exit path.
func Listen(ctx context.Context, device Device, opts Options) (Clip, error) {
	src, err := startCapture(ctx, device)
	if err != nil {
		return Clip{}, &DeviceError{Op: "open", Err: err}
	}
	defer func() { _ = src.Stop() }()

	return listenFrom(ctx, src, opts)
}

// listenFrom runs the listening phases against any chunk source.
func listenFrom(ctx context.Context, src chunkSource, opts Options) (Clip, error) {
	threshold, err := calibrate(ctx, src, opts.Calibrate)
	if err != nil {
		return Clip{}, err
	}

	var (
		recorded  []byte
		waited    time.Duration
		spoken    time.Duration
		silentFor time.Duration
		started   bool
	)

	for {
		select {
		case <-ctx.Done():
			return Clip{}, ctx.Err()
		case chunk, ok := <-src.Chunks():
			if !ok {
				return Clip{}, &DeviceError{Op: "stream", Err: errors.New("capture stream closed unexpectedly")}
			}

			level := rmsLevel(chunk)
			span := pcmDuration(len(chunk))

			if !started {
				if level >= threshold {
					started = true
					recorded = append(recorded, chunk...)
					spoken += span
					continue
				}
				waited += span
				if waited >= opts.MaxWait {
					return Clip{}, ErrNoSpeech
				}
				continue
			}

			recorded = append(recorded, chunk...)
			spoken += span

			if level < threshold {
				silentFor += span
			} else {
				silentFor = 0
			}

			if silentFor >= hangover || spoken >= opts.MaxPhrase {
				return Clip{PCM: recorded, SampleRate: SampleRate}, nil
			}
		}
	}
}

// calibrate measures the ambient noise floor and derives the speech gate.
func calibrate(ctx context.Context, src chunkSource, window time.Duration) (float64, error) {
	var (
		measured time.Duration
		sumSq    float64
		samples  int
	)

	for measured < window {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case chunk, ok := <-src.Chunks():
			if !ok {
				return 0, &DeviceError{Op: "calibrate", Err: errors.New("capture stream closed during calibration")}
			}
			s, n := sumSquares(chunk)
			sumSq += s
			samples += n
			measured += pcmDuration(len(chunk))
		}
	}

	if samples == 0 {
		return 0, &DeviceError{Op: "calibrate", Err: errors.New("no samples captured during calibration")}
	}

	floor := math.Sqrt(sumSq / float64(samples))
	return speechThreshold(floor), nil
}

// speechThreshold scales the noise floor with a hard minimum so a silent
// room still needs real speech energy to trip the gate.
func speechThreshold(noiseFloor float64) float64 {
	threshold := noiseFloor * noiseFloorScale
	if threshold < minSpeechRMS {
		threshold = minSpeechRMS
	}
	return threshold
}

// rmsLevel computes the normalized RMS of 16-bit little-endian PCM.
func rmsLevel(pcm []byte) float64 {
	sumSq, n := sumSquares(pcm)
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(n))
}

func sumSquares(pcm []byte) (float64, int) {
	n := len(pcm) / 2
	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}
	return sum, n
}

// pcmDuration converts a byte count of 16kHz mono s16 PCM to wall time.
func pcmDuration(bytes int) time.Duration {
	samples := bytes / 2
	return time.Duration(samples) * time.Second / SampleRate
}
