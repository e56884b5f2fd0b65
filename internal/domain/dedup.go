package domain

// DuplicateOverlapThreshold is the IoU above which a later detection is
// considered a duplicate of an earlier one.
const DuplicateOverlapThreshold = 0.6

// EliminateDuplicates drops every box that overlaps an earlier surviving box
// with IoU strictly greater than DuplicateOverlapThreshold. The earliest box of
// a cluster always survives and survivors keep their original order.
//
// The scan is quadratic in the number of boxes, which is fine for the few
// dozen detections a single sector image produces.
func EliminateDuplicates(boxes []BoundingBox) []BoundingBox {
	kept := make([]BoundingBox, 0, len(boxes))
	for _, candidate := range boxes {
		duplicate := false
		for _, survivor := range kept {
			if OverlapRatio(survivor, candidate) > DuplicateOverlapThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}
