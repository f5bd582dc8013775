package posture

// DefaultSensitivity is used when no sensitivity is configured.
const DefaultSensitivity = 0.4

// sensitivityScale maps the user-facing sensitivity onto the fraction of the
// shoulder-to-ear distance used as the leaning threshold.
const sensitivityScale = 0.4

// Point is a landmark in normalized image coordinates ([0,1], y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmarks holds the points the classifier needs. A nil field was not detected.
type Landmarks struct {
	Chin          *Point `json:"chin"`
	LeftShoulder  *Point `json:"left_shoulder"`
	RightShoulder *Point `json:"right_shoulder"`
	LeftEar       *Point `json:"left_ear"`
	RightEar      *Point `json:"right_ear"`
}

// Complete reports whether every landmark is present.
func (l Landmarks) Complete() bool {
	return l.Chin != nil && l.LeftShoulder != nil && l.RightShoulder != nil &&
		l.LeftEar != nil && l.RightEar != nil
}

// Evaluate compares the chin against the higher of the two raised shoulder
// lines. Each shoulder line sits sensitivity*0.4 of the way from the shoulder
// toward the ear on that side. Pixel rows are truncated to integers for an
// image of the given height. Leaning iff the chin is below the line.
func Evaluate(l Landmarks, sensitivity float64, height int) Verdict {
	if !l.Complete() || height <= 0 {
		return Indeterminate
	}
	s := sensitivity * sensitivityScale
	left := shoulderLine(s, l.LeftShoulder, l.LeftEar, height)
	right := shoulderLine(s, l.RightShoulder, l.RightEar, height)
	upper := right
	if left < right {
		upper = left
	}
	chin := int(l.Chin.Y * float64(height))
	if chin > upper {
		return Leaning
	}
	return Upright
}

func shoulderLine(s float64, shoulder, ear *Point, height int) int {
	return int((s*(ear.Y-shoulder.Y) + shoulder.Y) * float64(height))
}
