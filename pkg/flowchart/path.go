package flowchart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/google/uuid"
)

// PointIDPlaceholder marks a freshly drawn path vertex that has no stable
// identity yet. It is replaced with a generated id on the next read.
const PointIDPlaceholder = "x"

// ConvertLinkPathToPositions parses a serialized SVG path ("M x y {L x y}*")
// into an ordered position list. The second argument is the comma-joined
// per-point identifier list; any placeholder entry is replaced with a fresh
// unique id, and the updated joined list is returned alongside the
// positions. An empty path yields an empty position list.
func ConvertLinkPathToPositions(path, pointIDs string) ([]models.Position, string, error) {
	if strings.TrimSpace(path) == "" {
		return []models.Position{}, "", nil
	}

	fields := strings.Fields(path)

	positions := make([]models.Position, 0, len(fields)/3)

	for i := 0; i < len(fields); i += 3 {
		if i+2 >= len(fields) {
			return nil, "", fmt.Errorf("malformed link path %q: truncated segment", path)
		}

		command := fields[i]
		if (i == 0 && command != "M") || (i > 0 && command != "L") {
			return nil, "", fmt.Errorf("malformed link path %q: unexpected command %q", path, command)
		}

		x, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, "", fmt.Errorf("malformed link path %q: %w", path, err)
		}

		y, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return nil, "", fmt.Errorf("malformed link path %q: %w", path, err)
		}

		positions = append(positions, models.Position{X: x, Y: y})
	}

	ids := strings.Split(pointIDs, ",")
	if pointIDs == "" {
		ids = make([]string, 0, len(positions))
	}

	for len(ids) < len(positions) {
		ids = append(ids, PointIDPlaceholder)
	}

	ids = ids[:len(positions)]

	for i, id := range ids {
		if id == PointIDPlaceholder {
			ids[i] = uuid.New().String()
		}
	}

	return positions, strings.Join(ids, ","), nil
}

// ConvertPositionsToLinkPath serializes a position list back into the SVG
// path form. An empty list yields an empty path.
func ConvertPositionsToLinkPath(positions []models.Position) string {
	if len(positions) == 0 {
		return ""
	}

	var b strings.Builder

	for i, p := range positions {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}

		b.WriteString(strconv.Itoa(p.X))
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(p.Y))
	}

	return b.String()
}
