package effects

import (
	"runtime"
	"sync"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/emojierr"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
)

// Func applies one effect to a base canvas. It must not modify base.
type Func func(base raster.Canvas, s Spec) ([]raster.Sequence, error)

var dispatch = map[Kind]Func{
	None:      none,
	Scroll:    scroll,
	Party:     party,
	Rotate:    rotate,
	Shake:     shake,
	Wave:      wave,
	Typing:    typing,
	Grow:      grow,
	Split:     split,
	Marquee:   marquee,
	Billboard: typing,
}

// Apply runs the effect named by s.Kind. Text effects expect the base canvas
// laid out by [TextLayout]; image effects expect a Size×Size canvas.
func Apply(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	if !s.Kind.Supports(s.Target) {
		return nil, emojierr.New(emojierr.UnsupportedEffectForRequestKind, "%s does not support %s requests", s.Kind, s.Target)
	}
	f, ok := dispatch[s.Kind]
	if !ok {
		return nil, emojierr.New(emojierr.InvalidRequest, "unknown effect %d", int(s.Kind))
	}
	return f(base, s)
}

// frames computes n frames concurrently, at most s.Workers at a time, and
// stores them by index. frame cannot fail, so there is no error to collect.
func frames(s Spec, n int, frame func(i int) raster.Canvas) raster.Sequence {
	seq := make(raster.Sequence, n)
	sem := make(chan struct{}, workers(s.Workers))
	var wg sync.WaitGroup
	for i := range n {
		sem <- struct{}{}
		wg.Go(func() {
			defer func() { <-sem }()
			seq[i] = raster.Frame{Canvas: frame(i), DurationMs: s.DurationMs}
		})
	}
	wg.Wait()
	return seq
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Segment cuts seq into consecutive parts of at most maxFrames frames with
// sizes differing by at most one. No frame is dropped.
func Segment(seq raster.Sequence, maxFrames int) []raster.Sequence {
	if maxFrames < 1 || len(seq) <= maxFrames {
		return []raster.Sequence{seq}
	}
	parts := (len(seq) + maxFrames - 1) / maxFrames
	out := make([]raster.Sequence, 0, parts)
	start := 0
	for p := range parts {
		size := len(seq) / parts
		if p < len(seq)%parts {
			size++
		}
		out = append(out, seq[start:start+size])
		start += size
	}
	return out
}
