package pipeline

import (
	"context"
	"os"
	"strings"

	"reelforge/internal/pkg/errors"
)

// Concatenator joins the synthesized segments into the final output using
// the encoder's lossless concat mode. Segment order is exactly production
// order, which is manifest order.
type Concatenator struct {
	enc Encoder
}

func NewConcatenator(enc Encoder) *Concatenator {
	return &Concatenator{enc: enc}
}

// Run writes the concat list and invokes the encoder once. A bundle that
// produced zero segments is rejected as invalid even though the condition is
// detected this late.
func (c *Concatenator) Run(ctx context.Context, ws *Workspace, segments []string) (string, error) {
	if len(segments) == 0 {
		return "", errors.InvalidBundle("no renderable scenes in bundle")
	}

	if err := writeConcatList(ws.ConcatListPath(), segments); err != nil {
		return "", errors.Wrap(err, "concat.list", "write concat list")
	}

	if err := c.enc.Concat(ctx, ws.ConcatListPath(), ws.OutputPath()); err != nil {
		return "", err
	}
	return ws.OutputPath(), nil
}

// writeConcatList emits the concat demuxer directive file, one entry per
// segment in order.
func writeConcatList(path string, segments []string) error {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(seg, "'", `'\''`))
		b.WriteString("'\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
