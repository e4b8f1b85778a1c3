package encode

import (
	"image"
	"image/color"
	"slices"

	"github.com/ericpauley/go-quantize/quantize"
)

// ///////////////////////////////////////////////
// Palette
// ///////////////////////////////////////////////

// quantizeTo reduces src to at most k colors with a median cut quantizer.
// With transparent set one of the k entries is reserved for a fully
// transparent color, returned at index 0. The remaining entries are sorted
// so equal input always yields the same table.
func quantizeTo(src image.Image, k int, transparent bool) []color.NRGBA {
	if transparent {
		k = max(k, 2)
	}
	q := quantize.MedianCutQuantizer{AddTransparent: transparent}
	var out []color.NRGBA
	for _, c := range q.Quantize(make(color.Palette, 0, max(k, 1)), src) {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		if transparent && n.A == 0 {
			continue
		}
		out = append(out, n)
	}
	slices.SortFunc(out, cmpColor)
	out = slices.Compact(out)
	if transparent {
		out = append([]color.NRGBA{{}}, out...)
	}
	return out
}

// gifPalette returns the global palette of at most k entries for frames
// packed by [packOpaque], and the transparent index or -1. A nil packed
// image means every pixel is transparent.
func gifPalette(packed *image.NRGBA, k int, transparent bool) ([]color.NRGBA, int) {
	if packed == nil {
		return []color.NRGBA{{}}, 0
	}
	pal := quantizeTo(packed, k, transparent)
	if transparent {
		return pal, 0
	}
	return pal, -1
}

// packOpaque copies every pixel of imgs above the transparency threshold,
// with alpha forced to 0xff, into one single-row image, so the frames share
// one histogram. It reports whether any pixel was left out, and returns a
// nil image when all were.
func packOpaque(imgs []*image.NRGBA) (*image.NRGBA, bool) {
	n, total := 0, 0
	for _, img := range imgs {
		for p := 3; p < len(img.Pix); p += 4 {
			total++
			if img.Pix[p] > alphaThreshold {
				n++
			}
		}
	}
	if n == 0 {
		return nil, total > 0
	}
	out := image.NewNRGBA(image.Rect(0, 0, n, 1))
	i := 0
	for _, img := range imgs {
		pix := img.Pix
		for p := 0; p < len(pix); p += 4 {
			if pix[p+3] <= alphaThreshold {
				continue
			}
			copy(out.Pix[i:i+3], pix[p:p+3])
			out.Pix[i+3] = 0xff
			i += 4
		}
	}
	return out, n < total
}

func cmpColor(a, b color.NRGBA) int {
	if a.R != b.R {
		return int(a.R) - int(b.R)
	}
	if a.G != b.G {
		return int(a.G) - int(b.G)
	}
	if a.B != b.B {
		return int(a.B) - int(b.B)
	}
	return int(a.A) - int(b.A)
}

// ///////////////////////////////////////////////
// Mapping
// ///////////////////////////////////////////////

// mapper assigns pixels to palette indices by nearest color, sending pixels
// at or below the transparency threshold to the transparent index. A
// mapper memoizes results and must not be shared between goroutines.
type mapper struct {
	pal []color.NRGBA
	// transparent is the index used for pixels at or below the threshold,
	// or -1 when the palette has none.
	transparent int
	opaque      bool
	memo        map[uint32]uint8
}

func newMapper(pal []color.NRGBA, transparent int, opaque bool) *mapper {
	return &mapper{pal: pal, transparent: transparent, opaque: opaque, memo: make(map[uint32]uint8)}
}

// paletted converts img into a paletted image over m's palette.
func (m *mapper) paletted(img *image.NRGBA, pal color.Palette) *image.Paletted {
	out := image.NewPaletted(img.Rect, pal)
	w := img.Rect.Dx()
	for y := 0; y < img.Rect.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range w {
			dst[x] = m.index(src[x*4], src[x*4+1], src[x*4+2], src[x*4+3])
		}
	}
	return out
}

func (m *mapper) index(r, g, b, a uint8) uint8 {
	if m.transparent >= 0 && a <= alphaThreshold {
		return uint8(m.transparent)
	}
	if m.opaque {
		a = 0xff
	}
	key := uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
	if i, ok := m.memo[key]; ok {
		return i
	}
	best, bestD := 0, -1
	for i, c := range m.pal {
		if i == m.transparent {
			continue
		}
		dr := int(c.R) - int(r)
		dg := int(c.G) - int(g)
		db := int(c.B) - int(b)
		da := int(c.A) - int(a)
		d := dr*dr + dg*dg + db*db + da*da
		if bestD < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	m.memo[key] = uint8(best)
	return uint8(best)
}

// colorPalette converts pal for use in an [image.Paletted].
func colorPalette(pal []color.NRGBA) color.Palette {
	cp := make(color.Palette, len(pal))
	for i, c := range pal {
		cp[i] = c
	}
	return cp
}
