package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reelforge/internal/domain"
	"reelforge/internal/ffmpeg"
	"reelforge/internal/pkg/errors"
	"reelforge/internal/pkg/logger"
)

// Encoder is the external-encoder surface the pipeline needs. *ffmpeg.Tool
// implements it; tests substitute fakes.
type Encoder interface {
	RenderSegment(ctx context.Context, spec ffmpeg.SegmentSpec) error
	Concat(ctx context.Context, listPath, outputPath string) error
}

// Prober reports a media file's duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Audio-probe fallback when a scene's clip cannot be read. One unreadable
// clip must not abort the whole render.
const fallbackAudioSeconds = 2.0

// Synthesis progress window: linearly interpolated per completed scene.
const (
	synthProgressStart = 50
	synthProgressEnd   = 80
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// SynthesisResult is the ordered segment list plus bookkeeping.
type SynthesisResult struct {
	Segments      []string
	SkippedScenes int
}

// Synthesizer produces one segment per image per scene. Scenes missing
// their audio clip or images are skipped; an encoder failure is fatal.
type Synthesizer struct {
	enc    Encoder
	prober Prober
	log    *logger.Logger
}

func NewSynthesizer(enc Encoder, prober Prober, log *logger.Logger) *Synthesizer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Synthesizer{
		enc:    enc,
		prober: prober,
		log:    log.WithComponent("synthesizer"),
	}
}

// Run walks the scene list in manifest order. Each scene's audio duration is
// split uniformly across its images; every image gets one encoder invocation
// muxing the full scene audio trimmed to its share. onProgress receives a
// value inside the synthesis window after each completed scene.
func (s *Synthesizer) Run(ctx context.Context, ws *Workspace, scenes []domain.Scene, onProgress func(int)) (SynthesisResult, error) {
	var res SynthesisResult

	for i, scene := range scenes {
		audioPath := filepath.Join(ws.VoiceoversDir(), "scene-"+scene.ID+".wav")
		if _, err := os.Stat(audioPath); err != nil {
			s.log.Warn("scene audio missing, skipping scene",
				"scene_id", scene.ID,
				"audio", filepath.Base(audioPath),
			)
			res.SkippedScenes++
			s.report(onProgress, i+1, len(scenes))
			continue
		}

		images, err := sceneImages(ws.ImagesDir(), scene.ID)
		if err != nil {
			return res, errors.Wrap(err, "synth.images", "list scene images")
		}
		if len(images) == 0 {
			s.log.Warn("no images for scene, skipping scene", "scene_id", scene.ID)
			res.SkippedScenes++
			s.report(onProgress, i+1, len(scenes))
			continue
		}

		duration, err := s.prober.Duration(ctx, audioPath)
		if err != nil {
			s.log.Warn("audio probe failed, using fallback duration",
				"scene_id", scene.ID,
				"fallback_seconds", fallbackAudioSeconds,
				"error", err.Error(),
			)
			duration = fallbackAudioSeconds
		}

		perImage := duration / float64(len(images))

		for _, image := range images {
			segment := ws.SegmentPath(len(res.Segments))
			spec := ffmpeg.SegmentSpec{
				ImagePath:  image,
				AudioPath:  audioPath,
				OutputPath: segment,
				Duration:   perImage,
			}
			if err := s.enc.RenderSegment(ctx, spec); err != nil {
				return res, errors.Wrapf(err, "synth.render", "render segment for scene %s", scene.ID)
			}
			res.Segments = append(res.Segments, segment)
		}

		s.log.Debug("scene synthesized",
			"scene_id", scene.ID,
			"images", len(images),
			"seconds_per_image", perImage,
		)
		s.report(onProgress, i+1, len(scenes))
	}

	return res, nil
}

func (s *Synthesizer) report(onProgress func(int), done, total int) {
	if onProgress == nil || total == 0 {
		return
	}
	span := synthProgressEnd - synthProgressStart
	onProgress(synthProgressStart + span*done/total)
}

// sceneImages returns the scene's image files in filename order. A file
// belongs to the scene when it is named scene-<id>.<ext> or
// scene-<id>-<suffix>.<ext>.
func sceneImages(dir, sceneID string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !imageExtensions[ext] {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if stem == "scene-"+sceneID || strings.HasPrefix(stem, "scene-"+sceneID+"-") {
			out = append(out, filepath.Join(dir, name))
		}
	}

	sort.Strings(out)
	return out, nil
}
