package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
	"github.com/san-kum/hyperion/internal/viz"
)

const (
	background   = "#0a0a0a"
	nominalFill  = "#00ff88"
	overheatFill = "#ff4444"
	bodyFill     = "#ffcc00"
	ringStroke   = "#666688"
)

func header(sb *strings.Builder, width, height float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", nominalFill))

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SwarmSVG draws the XY projection of a swarm: the exclusion zone around
// the body, then one circle per panel coloured by thermal status. The view
// is centred on the body and padded by 10%.
func SwarmSVG(sw *swarm.Swarm, body geom.Point3, exclusion, threshold float64, size int) string {
	if sw == nil || size <= 0 {
		return ""
	}

	extent := exclusion
	for i := range sw.Panels {
		p := sw.Panels[i].Position
		extent = math.Max(extent, math.Max(math.Abs(p.X-body.X), math.Abs(p.Y-body.Y)))
	}
	if extent <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		extent = 1
	}
	extent *= 1.1

	half := float64(size) / 2
	scale := half / extent
	toScreen := func(p geom.Point3) (float64, float64) {
		return half + (p.X-body.X)*scale, half - (p.Y-body.Y)*scale
	}

	var sb strings.Builder
	header(&sb, float64(size), float64(size))

	bx, by := toScreen(body)
	if exclusion > 0 {
		sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"none\" stroke=\"%s\" stroke-dasharray=\"4 4\"/>\n",
			bx, by, exclusion*scale, ringStroke))
	}
	sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"4.0\" fill=\"%s\"/>\n", bx, by, bodyFill))

	for i := range sw.Panels {
		p := &sw.Panels[i]
		fill := nominalFill
		if p.IsOverheating(threshold) {
			fill = overheatFill
		}
		x, y := toScreen(p.Position)
		sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2.5\" fill=\"%s\"><title>panel %d %s</title></circle>\n",
			x, y, fill, i, p.ThermalStatus(threshold)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// EnergySVG plots a per-round series as a polyline, rounds on the x axis.
func EnergySVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
