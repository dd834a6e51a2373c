package vectra

import (
	"image"
	"image/color"
	"math"
)

// Point is a single contour vertex in pixel coordinates.
type Point struct {
	X, Y float64
}

// Contour is a closed polygon boundary of a connected same-label
// region. The first point is not repeated at the end; closure is
// implicit. A hole contour is nested within exactly one outer contour,
// referenced by Parent (index into the extracted slice, -1 at top level).
type Contour struct {
	Points []Point
	Hole   bool
	Parent int
}

// Area returns the enclosed area of the contour in px² (shoelace formula).
func (c *Contour) Area() float64 {
	pts := c.Points
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// boundingBox returns the min and max corner of the contour.
func (c *Contour) boundingBox() (minPt, maxPt Point) {
	minPt = Point{math.Inf(1), math.Inf(1)}
	maxPt = Point{math.Inf(-1), math.Inf(-1)}
	for _, p := range c.Points {
		minPt.X = math.Min(minPt.X, p.X)
		minPt.Y = math.Min(minPt.Y, p.Y)
		maxPt.X = math.Max(maxPt.X, p.X)
		maxPt.Y = math.Max(maxPt.Y, p.Y)
	}
	return minPt, maxPt
}

// maskForLabel builds a binary mask selecting the pixels of one palette index.
func maskForLabel(m *LabelMap, label uint8) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) == label {
				mask.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return mask
}

// Counterclockwise 8-neighborhood starting east, in (row, column) deltas.
var neighborhood = [8][2]int{
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1},
}

func neighborDir(di, dj int) int {
	for d, n := range neighborhood {
		if n[0] == di && n[1] == dj {
			return d
		}
	}
	return 0
}

// findContours extracts every region boundary of the mask with the
// border following scheme of Suzuki and Abe: both outer boundaries and
// inner hole boundaries are returned, linked into a hierarchy of
// arbitrary depth. External-only retrieval would silently drop enclosed
// holes (the counter of a letter "O"), which is a correctness bug this
// extractor exists to avoid.
func findContours(mask *image.Gray) []Contour {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()

	// Pixel field padded with a one pixel background frame:
	// 0 background, 1 unvisited foreground, |v|>1 visited border label.
	fw, fh := w+2, h+2
	f := make([]int32, fw*fh)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.GrayAt(x, y).Y > 0 {
				f[(y+1)*fw+x+1] = 1
			}
		}
	}

	type borderInfo struct {
		hole   bool
		parent int // border number, frame = 1
	}
	// Border number 1 is the implicit hole border of the frame.
	borders := []borderInfo{{hole: true, parent: 0}}
	var contours []Contour

	nbd := 1
	for i := 1; i < fh-1; i++ {
		lnbd := 1
		for j := 1; j < fw-1; j++ {
			fij := f[i*fw+j]
			if fij == 0 {
				continue
			}

			var (
				isBorder bool
				hole     bool
				i2, j2   int
			)
			switch {
			case fij == 1 && f[i*fw+j-1] == 0:
				isBorder, hole = true, false
				i2, j2 = i, j-1
			case fij >= 1 && f[i*fw+j+1] == 0:
				isBorder, hole = true, true
				i2, j2 = i, j+1
				if fij > 1 {
					lnbd = int(fij)
				}
			}

			if isBorder {
				nbd++
				prev := borders[lnbd-1]
				parent := lnbd
				if prev.hole == hole {
					parent = prev.parent
				}
				borders = append(borders, borderInfo{hole: hole, parent: parent})

				c := Contour{Hole: hole, Parent: parent - 2}
				if parent <= 1 {
					c.Parent = -1
				}
				c.Points = followBorder(f, fw, i, j, i2, j2, nbd)
				contours = append(contours, c)
			}

			if v := f[i*fw+j]; v != 1 {
				if v < 0 {
					lnbd = int(-v)
				} else {
					lnbd = int(v)
				}
			}
		}
	}

	return contours
}

// followBorder walks one region boundary starting at (i, j) and returns
// the visited border pixels in unpadded image coordinates. The field is
// marked in place so the scan does not restart the same border.
func followBorder(f []int32, fw, i, j, i2, j2, nbd int) []Point {
	var points []Point

	// Clockwise scan around (i, j) for a nonzero neighbor.
	d0 := neighborDir(i2-i, j2-j)
	i1, j1 := -1, -1
	for k := 0; k < 8; k++ {
		d := (d0 - k + 8) % 8
		ny, nx := i+neighborhood[d][0], j+neighborhood[d][1]
		if f[ny*fw+nx] != 0 {
			i1, j1 = ny, nx
			break
		}
	}
	if i1 < 0 {
		// Isolated single pixel region.
		f[i*fw+j] = int32(-nbd)
		return append(points, Point{float64(j - 1), float64(i - 1)})
	}

	i2, j2 = i1, j1
	i3, j3 := i, j

	for {
		// Counterclockwise scan around (i3, j3), starting after (i2, j2).
		d := neighborDir(i2-i3, j2-j3)
		eastSeen := false
		var i4, j4 int
		for k := 1; k <= 8; k++ {
			dd := (d + k) % 8
			ny, nx := i3+neighborhood[dd][0], j3+neighborhood[dd][1]
			if f[ny*fw+nx] != 0 {
				i4, j4 = ny, nx
				break
			}
			if dd == 0 {
				eastSeen = true
			}
		}

		if eastSeen {
			f[i3*fw+j3] = int32(-nbd)
		} else if f[i3*fw+j3] == 1 {
			f[i3*fw+j3] = int32(nbd)
		}
		points = append(points, Point{float64(j3 - 1), float64(i3 - 1)})

		if i4 == i && j4 == j && i3 == i1 && j3 == j1 {
			return points
		}
		i2, j2 = i3, j3
		i3, j3 = i4, j4
	}
}

// filterContours drops noise regions below the minimum area and, unless
// the layer is meant to be the background, contours whose bounding box
// covers nearly the whole canvas (those would render as an opaque
// background-blocking rectangle). Holes survive only while their outer
// contour survives; parent links are remapped to the filtered slice.
func filterContours(contours []Contour, w, h int, minAreaPx float64, allowCanvas bool) []Contour {
	canvasArea := float64(w) * float64(h)

	keep := make([]int, len(contours))
	for i := range keep {
		keep[i] = -1
	}

	var out []Contour
	for i := range contours {
		c := &contours[i]
		if c.Area() < minAreaPx {
			continue
		}
		if !allowCanvas && !c.Hole {
			minPt, maxPt := c.boundingBox()
			bbox := (maxPt.X - minPt.X + 1) * (maxPt.Y - minPt.Y + 1)
			if bbox >= 0.98*canvasArea {
				continue
			}
		}
		if c.Parent >= 0 && keep[c.Parent] < 0 {
			continue
		}

		nc := *c
		if nc.Parent >= 0 {
			nc.Parent = keep[nc.Parent]
		}
		keep[i] = len(out)
		out = append(out, nc)
	}
	return out
}

// extractContours runs the hole-aware extraction with its fallback
// ladder: when the primary pass yields nothing usable, the minimum area
// threshold is relaxed by an order of magnitude; when that still yields
// nothing, a gradient-magnitude edge mask dilated by one pixel is traced
// with a near-zero area threshold. Each fallback runs only if the
// previous stage produced nothing.
func extractContours(mask *image.Gray, minAreaPx float64, allowCanvas bool) []Contour {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()

	contours := findContours(mask)

	if out := filterContours(contours, w, h, minAreaPx, allowCanvas); len(out) > 0 {
		return out
	}
	if out := filterContours(contours, w, h, minAreaPx/10, allowCanvas); len(out) > 0 {
		return out
	}

	edges := sobelMask(mask, 60)
	edges = dilateGray(edges, 1)
	return filterContours(findContours(edges), w, h, 1, allowCanvas)
}

// Sobel kernels, row major.
var (
	sobelX = [3][3]int32{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]int32{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// sobelMask binarizes the gradient magnitude of a grayscale mask.
// See https://en.wikipedia.org/wiki/Sobel_operator
func sobelMask(src *image.Gray, threshold float64) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(src.Bounds())

	at := func(x, y int) int32 {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return int32(src.GrayAt(x, y).Y)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sumX, sumY int32
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					px := at(x+kx-1, y+ky-1)
					sumX += px * sobelX[ky][kx]
					sumY += px * sobelY[ky][kx]
				}
			}
			magnitude := math.Sqrt(float64(sumX*sumX) + float64(sumY*sumY))
			if magnitude > threshold {
				dst.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return dst
}

// dilateGray grows the nonzero pixels of a mask by the given radius.
func dilateGray(src *image.Gray, radius int) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if src.GrayAt(x, y).Y == 0 {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					dst.SetGray(nx, ny, color.Gray{Y: 0xff})
				}
			}
		}
	}
	return dst
}
