package detect

import "github.com/deepteams/nexus"

// SuppressNonMax filters corners so that only local score maxima remain.
// corners must be in raster order, as emitted by FastDetectKeypoints. A
// corner survives when no corner in its 8-neighbourhood has a strictly
// greater score; on equal scores the first corner in raster order wins.
// At most maxN surviving corners are appended to dst.
//
// The sweep keeps per-row start indices and two cursors trailing one row
// above and one row below the current corner, giving linear time over the
// corner list.
func SuppressNonMax(dst []nexus.Keypoint, corners []nexus.Keypoint, maxN int) []nexus.Keypoint {
	if len(corners) == 0 || maxN <= 0 {
		return dst
	}
	limit := len(dst) + maxN

	// Row start indices; -1 marks a row with no corners.
	lastRow := int(corners[len(corners)-1].Y)
	rowStart := make([]int, lastRow+1)
	for i := range rowStart {
		rowStart[i] = -1
	}
	prevRow := -1
	for i := range corners {
		if int(corners[i].Y) != prevRow {
			rowStart[corners[i].Y] = i
			prevRow = int(corners[i].Y)
		}
	}

	pointAbove := 0
	pointBelow := 0
	sz := len(corners)

nextCorner:
	for i := 0; i < sz; i++ {
		pos := &corners[i]
		score := pos.Score

		// Earlier neighbours (left, row above) suppress on >=, later
		// neighbours (right, row below) on >: ties go to the first
		// corner in raster order.
		if i > 0 {
			prev := &corners[i-1]
			if prev.X == pos.X-1 && prev.Y == pos.Y && prev.Score >= score {
				continue
			}
		}
		if i < sz-1 {
			next := &corners[i+1]
			if next.X == pos.X+1 && next.Y == pos.Y && next.Score > score {
				continue
			}
		}

		if pos.Y != 0 && rowStart[pos.Y-1] != -1 {
			if corners[pointAbove].Y < pos.Y-1 {
				pointAbove = rowStart[pos.Y-1]
			}
			for ; corners[pointAbove].Y < pos.Y && corners[pointAbove].X < pos.X-1; pointAbove++ {
			}
			for j := pointAbove; corners[j].Y < pos.Y && corners[j].X <= pos.X+1; j++ {
				x := corners[j].X
				if (x == pos.X-1 || x == pos.X || x == pos.X+1) && corners[j].Score >= score {
					continue nextCorner
				}
			}
		}

		if int(pos.Y) != lastRow && rowStart[pos.Y+1] != -1 && pointBelow < sz {
			if corners[pointBelow].Y < pos.Y+1 {
				pointBelow = rowStart[pos.Y+1]
			}
			for ; pointBelow < sz && corners[pointBelow].Y == pos.Y+1 && corners[pointBelow].X < pos.X-1; pointBelow++ {
			}
			for j := pointBelow; j < sz && corners[j].Y == pos.Y+1 && corners[j].X <= pos.X+1; j++ {
				x := corners[j].X
				if (x == pos.X-1 || x == pos.X || x == pos.X+1) && corners[j].Score > score {
					continue nextCorner
				}
			}
		}

		dst = append(dst, *pos)
		if len(dst) >= limit {
			break
		}
	}

	return dst
}
