package render

import (
	"image"

	"gocv.io/x/gocv"
)

// Lane fills the lane corridor polygon onto the image at the given opacity
func Lane(img *gocv.Mat, corridor []image.Point, opacity float64) {

	if len(corridor) < 3 || opacity <= 0 {
		return
	}

	overlay := img.Clone()
	defer overlay.Close()

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{corridor})
	defer pv.Close()

	gocv.FillPoly(&overlay, pv, LaneGreen)
	gocv.AddWeighted(overlay, opacity, *img, 1-opacity, 0, img)
}
