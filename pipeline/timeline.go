package pipeline

import "math"

// MapTimeline converts ordered audio segments and positioned scene frames
// into the chronological timeline used to render the video.
//
// Each segment contributes one entry whose boundary is the cumulative end
// time of that segment's audio. The frame shown up to a boundary is the one
// whose absolute timestamp (displayPercentage * totalDuration) is nearest to
// it; ties keep the first frame encountered in iteration order.
//
// Pure function: exactly len(audioSegments) entries, strictly increasing
// boundaries for positive durations, last boundary == total duration.
func MapTimeline(audioSegments []AudioSegment, sceneFrames []SceneFrame) ([]TimelineEntry, error) {
	if len(audioSegments) == 0 {
		return nil, nil
	}
	if len(sceneFrames) == 0 {
		return nil, ErrNoFrames
	}

	totalDuration := 0
	for _, seg := range audioSegments {
		totalDuration += seg.DurationMs
	}

	type absoluteFrame struct {
		fileID       string
		absoluteTime float64
	}
	frames := make([]absoluteFrame, len(sceneFrames))
	for i, frame := range sceneFrames {
		frames[i] = absoluteFrame{
			fileID:       frame.FileID,
			absoluteTime: frame.DisplayPercentage * float64(totalDuration),
		}
	}

	entries := make([]TimelineEntry, 0, len(audioSegments))
	cumulative := 0
	for _, seg := range audioSegments {
		cumulative += seg.DurationMs
		boundary := float64(cumulative)

		best := frames[0]
		for _, f := range frames[1:] {
			if math.Abs(f.absoluteTime-boundary) < math.Abs(best.absoluteTime-boundary) {
				best = f
			}
		}
		entries = append(entries, TimelineEntry{
			BoundaryMs:  cumulative,
			FrameFileID: best.fileID,
		})
	}
	return entries, nil
}
