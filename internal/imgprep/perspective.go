package imgprep

import (
	"image"
	"image/color"
	"math"
)

// quad holds document corners in order: top-left, top-right, bottom-right,
// bottom-left.
type quad [4]image.Point

// detectDocumentQuad locates the paper sheet inside a camera frame. The
// frame is thresholded with Otsu's method (paper is the bright region) and
// the four extreme foreground points become the corners. The quad is only
// trusted when it covers a plausible share of the frame: too small means
// the threshold grabbed a highlight, near-full means there is nothing to
// correct.
func detectDocumentQuad(gray *image.Gray) (quad, bool) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 40 || h < 40 {
		return quad{}, false
	}

	threshold := otsuThreshold(gray)

	var (
		tl, tr, br, bl image.Point
		minSum         = math.MaxInt
		maxSum         = math.MinInt
		minDiff        = math.MaxInt
		maxDiff        = math.MinInt
		foreground     int
	)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y < threshold {
				continue
			}
			foreground++
			sum, diff := x+y, x-y
			if sum < minSum {
				minSum, tl = sum, image.Pt(x, y)
			}
			if sum > maxSum {
				maxSum, br = sum, image.Pt(x, y)
			}
			if diff > maxDiff {
				maxDiff, tr = diff, image.Pt(x, y)
			}
			if diff < minDiff {
				minDiff, bl = diff, image.Pt(x, y)
			}
		}
	}

	q := quad{tl, tr, br, bl}
	area := quadArea(q)
	frame := float64(w * h)
	if foreground == 0 || area < 0.30*frame || area > 0.95*frame {
		return quad{}, false
	}
	return q, true
}

// otsuThreshold picks the histogram split maximizing between-class
// variance.
func otsuThreshold(gray *image.Gray) uint8 {
	b := gray.Bounds()
	var hist [256]int
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}

	var sumB, wB float64
	bestVar, best := 0.0, 128
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar, best = between, i
		}
	}
	return uint8(best)
}

func quadArea(q quad) float64 {
	// shoelace over the ordered corners
	area := 0.0
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		area += float64(q[i].X*q[j].Y - q[j].X*q[i].Y)
	}
	return math.Abs(area) / 2
}

func dist(a, b image.Point) float64 {
	dx, dy := float64(a.X-b.X), float64(a.Y-b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// warpPerspective maps the quad onto an axis-aligned rectangle sized by
// the quad's longest edges, using the inverse homography with bilinear
// sampling.
func warpPerspective(src image.Image, q quad) image.Image {
	dstW := int(math.Max(dist(q[0], q[1]), dist(q[3], q[2])))
	dstH := int(math.Max(dist(q[0], q[3]), dist(q[1], q[2])))
	if dstW < 2 || dstH < 2 {
		return src
	}

	// homography from destination rectangle corners to source quad corners
	h, ok := homography(
		[4][2]float64{{0, 0}, {float64(dstW - 1), 0}, {float64(dstW - 1), float64(dstH - 1)}, {0, float64(dstH - 1)}},
		[4][2]float64{
			{float64(q[0].X), float64(q[0].Y)},
			{float64(q[1].X), float64(q[1].Y)},
			{float64(q[2].X), float64(q[2].Y)},
			{float64(q[3].X), float64(q[3].Y)},
		},
	)
	if !ok {
		return src
	}

	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			fx, fy := float64(x), float64(y)
			den := h[6]*fx + h[7]*fy + 1
			if den == 0 {
				continue
			}
			sx := (h[0]*fx + h[1]*fy + h[2]) / den
			sy := (h[3]*fx + h[4]*fy + h[5]) / den
			out.Set(x, y, bilinearAt(src, b, sx, sy))
		}
	}
	return out
}

func bilinearAt(src image.Image, b image.Rectangle, sx, sy float64) color.Color {
	x0, y0 := int(math.Floor(sx)), int(math.Floor(sy))
	fx, fy := sx-float64(x0), sy-float64(y0)

	sample := func(x, y int) (r, g, bl, a float64) {
		x = clamp(x, 0, b.Dx()-1)
		y = clamp(y, 0, b.Dy()-1)
		ri, gi, bi, ai := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
		return float64(ri >> 8), float64(gi >> 8), float64(bi >> 8), float64(ai >> 8)
	}

	r00, g00, b00, a00 := sample(x0, y0)
	r10, g10, b10, a10 := sample(x0+1, y0)
	r01, g01, b01, a01 := sample(x0, y0+1)
	r11, g11, b11, a11 := sample(x0+1, y0+1)

	lerp2 := func(v00, v10, v01, v11 float64) uint8 {
		top := v00 + (v10-v00)*fx
		bot := v01 + (v11-v01)*fx
		return uint8(math.Round(top + (bot-top)*fy))
	}
	return color.NRGBA{
		R: lerp2(r00, r10, r01, r11),
		G: lerp2(g00, g10, g01, g11),
		B: lerp2(b00, b10, b01, b11),
		A: lerp2(a00, a10, a01, a11),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// homography solves the 8-unknown projective mapping src→dst with Gaussian
// elimination; returns h such that (x', y') = H(x, y).
func homography(src, dst [4][2]float64) ([8]float64, bool) {
	var m [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := src[i][0], src[i][1]
		u, v := dst[i][0], dst[i][1]
		m[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		m[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-10 {
			return [8]float64{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := 0; r < 8; r++ {
			if r == col {
				continue
			}
			f := m[r][col] / m[col][col]
			for c := col; c < 9; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	var h [8]float64
	for i := 0; i < 8; i++ {
		h[i] = m[i][8] / m[i][i]
	}
	return h, true
}
