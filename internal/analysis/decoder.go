package analysis

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/pkg/errors"

	"github.com/AnthonyMichaelTDM/mecomp/internal/merrors"
)

// SampleRate is the fixed sampling rate every decoded track is resampled to
// before feature extraction; every descriptor's window/hop sizes assume it.
const SampleRate = 22050

// ResampledAudio is a track fully decoded to mono float64 samples at
// SampleRate, ready to feed the descriptor pipeline.
type ResampledAudio struct {
	Path    string
	Samples []float64
}

// ErrInfiniteAudioSource is returned when the decoder can't establish a
// track's total duration (needed to pre-size the sample buffer), e.g. a
// streamed source with no known length.
var ErrInfiniteAudioSource = errors.New("audio source has no known duration")

func openStream(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrapf(merrors.ErrFileNotFound, "open %s: %v", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		_ = f.Close()
		return nil, beep.Format{}, errors.Wrapf(merrors.ErrWrongExtension, "unsupported extension for %s", path)
	}
}

// Decode decodes the track at path, down-mixes it to mono, and resamples it
// to SampleRate, matching MecompDecoder::decode: each stereo frame beep
// delivers is folded into one mono sample as it is read (left and right
// summed and halved; a mono source's samples are copied through), and the
// mono buffer is pre-sized to (whole seconds of duration + 1)*sourceRate
// before down-mixing to avoid reallocation.
func Decode(path string) (ResampledAudio, error) {
	stream, format, err := openStream(path)
	if err != nil {
		return ResampledAudio{}, err
	}
	defer stream.Close()

	numChannels := format.NumChannels
	sourceRate := int(format.SampleRate)

	numSamples := stream.Len()
	if numSamples <= 0 {
		return ResampledAudio{}, errors.Wrapf(ErrInfiniteAudioSource, "%s", path)
	}
	durationSecs := numSamples / sourceRate

	mono := make([]float64, 0, (durationSecs+1)*sourceRate)

	buf := make([][2]float64, 512)
	for {
		n, ok := stream.Stream(buf)
		if n > 0 {
			for i := 0; i < n; i++ {
				if numChannels == 1 {
					mono = append(mono, buf[i][0])
				} else {
					mono = append(mono, (buf[i][0]+buf[i][1])/2)
				}
			}
		}
		if !ok {
			break
		}
	}

	if sourceRate == SampleRate {
		// mono's capacity was pre-sized to (whole seconds + 1)*sourceRate, which
		// overshoots the actual sample count by 1 to sourceRate samples. No
		// cubic resampling runs on this path; shrink the slack capacity so the
		// returned buffer satisfies len == cap (spec.md §8 "Resampler when
		// sr == 22050: shrinks to fit ... len == capacity").
		fitted := make([]float64, len(mono))
		copy(fitted, mono)
		return ResampledAudio{Path: path, Samples: fitted}, nil
	}

	resampled := ResampleCubic(mono, sourceRate, SampleRate)
	return ResampledAudio{Path: path, Samples: resampled}, nil
}
