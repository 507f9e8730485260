package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// boxLabel holds the details of a box label to render
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// Boxes renders the bounding boxes of the render commands onto the image.
// Boxes get a translucent fill followed by a solid border in the color of
// their style, commands with StyleNone are skipped.
func Boxes(img *gocv.Mat, cmds []Command, opts Options) {

	if len(cmds) == 0 {
		return
	}

	if opts.FillOpacity > 0 {
		// paint fills on a copy and blend it back so the fill is translucent
		overlay := img.Clone()
		defer overlay.Close()

		for _, cmd := range cmds {
			clr, ok := styleColors[cmd.Style]

			if !ok {
				continue
			}

			gocv.Rectangle(&overlay, cmd.Box.Rect(), clr, -1)
		}

		gocv.AddWeighted(overlay, opts.FillOpacity, *img, 1-opts.FillOpacity, 0, img)
	}

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, cmd := range cmds {
		clr, ok := styleColors[cmd.Style]

		if !ok {
			continue
		}

		rect := cmd.Box.Rect()

		thickness := opts.BoxThickness[cmd.Style]
		if thickness <= 0 {
			thickness = 1
		}

		gocv.Rectangle(img, rect, clr, thickness)

		if !opts.ShowLabels {
			continue
		}

		text := cmd.Label.String()
		textSize := gocv.GetTextSize(text, opts.Font.Face, opts.Font.Scale,
			opts.Font.Thickness)

		// place the label above the box, left aligned to the border
		labelPosition := image.Pt(rect.Min.X+opts.Font.Pad, rect.Min.Y-opts.Font.Pad)

		bRect := image.Rect(rect.Min.X, rect.Min.Y-textSize.Y-2*opts.Font.Pad,
			rect.Min.X+textSize.X+2*opts.Font.Pad, rect.Min.Y)

		boxLabels = append(boxLabels, boxLabel{
			rect:    bRect,
			clr:     clr,
			text:    text,
			textPos: labelPosition,
		})
	}

	// draw labels last so they are the top most layer and don't get
	// overlapped by neighbouring boxes
	for _, box := range boxLabels {
		gocv.Rectangle(img, box.rect, box.clr, -1)

		gocv.PutTextWithParams(img, box.text, box.textPos,
			opts.Font.Face, opts.Font.Scale, opts.Font.Color, opts.Font.Thickness,
			opts.Font.LineType, false)
	}
}
