package postprocess

// YOLOv5 defines the struct for post processing the output of a YOLOv5 model
// exported to ONNX and run through the OpenCV DNN module
type YOLOv5 struct {
	// Params are the Model configuration parameters
	Params YOLOv5Params
}

// YOLOv5Params defines the struct containing the YOLOv5 parameters to use
// for post processing operations
type YOLOv5Params struct {
	// BoxThreshold is the minimum probability score required for a bounding box
	// region to be considered for processing
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for defining
	// the maximum allowed Intersection Over Union (IoU) between two
	// bounding boxes for both to be kept
	NMSThreshold float32
	// ObjectClassNum is the number of different object classes the Model has
	// been trained with
	ObjectClassNum int
	// MaxObjectNumber is the maximum number of objects detected that can be
	// returned
	MaxObjectNumber int
}

// YOLOv5COCOParams returns an instance of YOLOv5Params configured with
// default values for a Model trained on the COCO dataset featuring:
// - Object Classes: 80
// - Box Threshold: 0.25
// - NMS Threshold: 0.45
// - Maximum Object Number: 64
func YOLOv5COCOParams() YOLOv5Params {
	return YOLOv5Params{
		BoxThreshold:    0.25,
		NMSThreshold:    0.45,
		ObjectClassNum:  80,
		MaxObjectNumber: 64,
	}
}

// NewYOLOv5 returns an instance of the YOLOv5 post processor
func NewYOLOv5(p YOLOv5Params) *YOLOv5 {
	return &YOLOv5{
		Params: p,
	}
}

// rowSize is the number of values describing each candidate box, being
// center x, center y, width, height, objectness and one score per class
func (y *YOLOv5) rowSize() int {
	return 5 + y.Params.ObjectClassNum
}

// DetectObjects decodes the flattened model output into detection results.
// Box coordinates are in the model input space of width x height pixels.
func (y *YOLOv5) DetectObjects(output []float32, width, height int) []DetectResult {

	rowSize := y.rowSize()

	if rowSize <= 5 || len(output) < rowSize {
		return nil
	}

	rows := len(output) / rowSize

	var filterBoxes []float32
	var objProbs []float32
	var classID []int

	for r := 0; r < rows; r++ {

		row := output[r*rowSize : (r+1)*rowSize]
		boxConfidence := row[4]

		if boxConfidence < y.Params.BoxThreshold {
			continue
		}

		maxClassProbs := row[5]
		maxClassID := 0

		for k := 1; k < y.Params.ObjectClassNum; k++ {
			if row[5+k] > maxClassProbs {
				maxClassID = k
				maxClassProbs = row[5+k]
			}
		}

		score := maxClassProbs * boxConfidence

		if score < y.Params.BoxThreshold {
			continue
		}

		boxW := row[2]
		boxH := row[3]
		boxX := row[0] - boxW/2.0
		boxY := row[1] - boxH/2.0

		filterBoxes = append(filterBoxes, boxX, boxY, boxW, boxH)
		objProbs = append(objProbs, score)
		classID = append(classID, maxClassID)
	}

	validCount := len(objProbs)

	if validCount == 0 {
		return nil
	}

	// indexArray keeps the original position of each candidate as objProbs
	// gets sorted
	indexArray := make([]int, validCount)

	for i := range indexArray {
		indexArray[i] = i
	}

	quickSortIndiceInverse(objProbs, 0, validCount-1, indexArray)

	classSet := make(map[int]bool)

	for _, id := range classID {
		classSet[id] = true
	}

	for c := range classSet {
		nms(validCount, filterBoxes, classID, indexArray, c, y.Params.NMSThreshold)
	}

	group := make([]DetectResult, 0)

	for i := 0; i < validCount; i++ {
		if indexArray[i] == -1 || len(group) >= y.Params.MaxObjectNumber {
			continue
		}
		n := indexArray[i]

		x1 := filterBoxes[n*4+0]
		y1 := filterBoxes[n*4+1]
		x2 := x1 + filterBoxes[n*4+2]
		y2 := y1 + filterBoxes[n*4+3]

		group = append(group, DetectResult{
			Box: BoxRect{
				Left:   int(clamp(x1, 0, float32(width))),
				Top:    int(clamp(y1, 0, float32(height))),
				Right:  int(clamp(x2, 0, float32(width))),
				Bottom: int(clamp(y2, 0, float32(height))),
			},
			Probability: objProbs[i],
			Class:       classID[n],
		})
	}

	return group
}
