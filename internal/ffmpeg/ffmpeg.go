// Package ffmpeg wraps the external encoder and prober binaries. Every
// invocation uses an explicit argument list (never a shell string) and
// captures stderr for diagnostics on failure.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"reelforge/internal/pkg/errors"
)

// Output canvas and motion parameters. All segments share the same codec,
// profile and resolution so the concat demuxer can stream-copy them.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1920
	FrameRate    = 30

	zoomCeiling = 1.1
	zoomStep    = 0.0015
)

// stderr tails longer than this are truncated in error messages.
const maxDiagnosticBytes = 2048

// SegmentSpec describes one single-image segment render: loop the still
// image, mux the full scene audio, trim to Duration seconds.
type SegmentSpec struct {
	ImagePath  string
	AudioPath  string
	OutputPath string
	Duration   float64
}

// Tool invokes the ffmpeg and ffprobe binaries.
type Tool struct {
	ffmpegBin  string
	ffprobeBin string
}

func New(ffmpegBin, ffprobeBin string) *Tool {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &Tool{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin}
}

// Check verifies both binaries resolve on the host. Their absence is an
// operational error that fails every job, so callers run this at startup.
func (t *Tool) Check() error {
	if _, err := exec.LookPath(t.ffmpegBin); err != nil {
		return errors.MissingDependency(t.ffmpegBin)
	}
	if _, err := exec.LookPath(t.ffprobeBin); err != nil {
		return errors.MissingDependency(t.ffprobeBin)
	}
	return nil
}

// RenderSegment produces one segment: the still image scaled and padded onto
// the vertical canvas with a slow zoom sweep, muxed with the scene audio and
// trimmed to the spec duration.
func (t *Tool) RenderSegment(ctx context.Context, spec SegmentSpec) error {
	args := []string{
		"-y",
		"-loop", "1",
		"-framerate", strconv.Itoa(FrameRate),
		"-i", spec.ImagePath,
		"-i", spec.AudioPath,
		"-t", formatSeconds(spec.Duration),
		"-filter:v", segmentFilter(spec.Duration),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-profile:v", "high",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-shortest",
		spec.OutputPath,
	}

	if err := t.run(ctx, t.ffmpegBin, args); err != nil {
		return errors.EncodingFailure(err, "ffmpeg.segment", "segment render failed")
	}
	return nil
}

// Concat joins the segments listed in listPath into outputPath using the
// concat demuxer with stream copy. All inputs must share codec, profile and
// resolution; RenderSegment guarantees that.
func (t *Tool) Concat(ctx context.Context, listPath, outputPath string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}

	if err := t.run(ctx, t.ffmpegBin, args); err != nil {
		return errors.EncodingFailure(err, "ffmpeg.concat", "concatenation failed")
	}
	return nil
}

// Duration probes a media file's duration in seconds.
func (t *Tool) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	cmd := exec.CommandContext(ctx, t.ffprobeBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe: %w: %s", err, diagnosticTail(stderr.Bytes()))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: unparseable duration %q", strings.TrimSpace(stdout.String()))
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("ffprobe: non-positive duration %f", seconds)
	}
	return seconds, nil
}

func (t *Tool) run(ctx context.Context, bin string, args []string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", bin, args[len(args)-1], err, diagnosticTail(stderr.Bytes()))
	}
	return nil
}

// segmentFilter builds the video filter chain: fit onto the canvas
// preserving aspect ratio, then a zoom sweep from 1.0 toward the ceiling
// over the segment's frames.
func segmentFilter(duration float64) string {
	frames := int(duration * FrameRate)
	if frames < 1 {
		frames = 1
	}

	size := fmt.Sprintf("%dx%d", CanvasWidth, CanvasHeight)
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,"+
			"pad=%d:%d:(ow-iw)/2:(oh-ih)/2,"+
			"zoompan=z='min(zoom+%g,%g)':d=%d:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%s:fps=%d,"+
			"format=yuv420p",
		CanvasWidth, CanvasHeight,
		CanvasWidth, CanvasHeight,
		zoomStep, zoomCeiling, frames, size, FrameRate,
	)
}

func formatSeconds(d float64) string {
	return strconv.FormatFloat(d, 'f', 3, 64)
}

func diagnosticTail(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if len(s) > maxDiagnosticBytes {
		s = s[len(s)-maxDiagnosticBytes:]
	}
	return s
}
