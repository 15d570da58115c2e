package mindmap

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
)

const (
	renderMargin   = 80.0
	renderMinSize  = 320
	nodeHeight     = 34.0
	nodePadding    = 14.0
	maxRenderNodes = 500
)

var (
	backgroundColor = color.White
	edgeColor       = color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	labelColor      = color.White
	levelColors     = []color.NRGBA{
		{R: 0x4f, G: 0x46, B: 0xe5, A: 0xff},
		{R: 0x05, G: 0x96, B: 0x69, A: 0xff},
		{R: 0xd9, G: 0x77, B: 0x06, A: 0xff},
		{R: 0xdb, G: 0x27, B: 0x77, A: 0xff},
	}
)

// RenderPNG draws mm with the stored node positions and writes a PNG to w.
func RenderPNG(mm learning.MindMap, w io.Writer) error {
	if len(mm.Nodes) > maxRenderNodes {
		return fmt.Errorf("mind map too large to render: %d nodes", len(mm.Nodes))
	}
	minX, minY, maxX, maxY := bounds(mm.Nodes)
	width := int(math.Max(float64(renderMinSize), maxX-minX+2*renderMargin+NodeSpacing))
	height := int(math.Max(float64(renderMinSize), maxY-minY+2*renderMargin))

	offX := float64(width)/2 - (minX+maxX)/2
	offY := renderMargin - minY

	dc := gg.NewContext(width, height)
	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()

	at := make(map[string]learning.Position, len(mm.Nodes))
	for _, n := range mm.Nodes {
		at[n.ID] = learning.Position{X: n.Position.X + offX, Y: n.Position.Y + offY}
	}

	dc.SetColor(edgeColor)
	dc.SetLineWidth(2)
	for _, e := range mm.Edges {
		s, okS := at[e.Source]
		t, okT := at[e.Target]
		if !okS || !okT {
			continue
		}
		dc.DrawLine(s.X, s.Y, t.X, t.Y)
		dc.Stroke()
	}

	for _, n := range mm.Nodes {
		p := at[n.ID]
		tw, _ := dc.MeasureString(n.Label)
		boxW := tw + 2*nodePadding
		dc.SetColor(levelColors[n.Level%len(levelColors)])
		dc.DrawRoundedRectangle(p.X-boxW/2, p.Y-nodeHeight/2, boxW, nodeHeight, 8)
		dc.Fill()
		dc.SetColor(labelColor)
		dc.DrawStringAnchored(n.Label, p.X, p.Y, 0.5, 0.35)
	}
	return dc.EncodePNG(w)
}

func bounds(nodes []learning.MindMapNode) (minX, minY, maxX, maxY float64) {
	if len(nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X)
		maxY = math.Max(maxY, n.Position.Y)
	}
	return minX, minY, maxX, maxY
}
