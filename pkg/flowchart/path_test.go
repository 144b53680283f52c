package flowchart

import (
	"strings"
	"testing"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkPathRoundTrip(t *testing.T) {
	testCases := []struct {
		name      string
		positions []models.Position
	}{
		{name: "empty", positions: []models.Position{}},
		{name: "single point", positions: []models.Position{{X: 5, Y: -3}}},
		{name: "two points", positions: []models.Position{{X: 0, Y: 0}, {X: 100, Y: 250}}},
		{
			name: "many points",
			positions: []models.Position{
				{X: 1, Y: 2}, {X: 3, Y: 4}, {X: -5, Y: 60}, {X: 700, Y: 8}, {X: 9, Y: 10},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := ConvertPositionsToLinkPath(tc.positions)

			parsed, _, err := ConvertLinkPathToPositions(path, "")
			require.NoError(t, err)
			assert.Equal(t, tc.positions, parsed)
		})
	}
}

func TestConvertLinkPathToPositions_EmptyPath(t *testing.T) {
	positions, ids, err := ConvertLinkPathToPositions("", "")
	require.NoError(t, err)
	assert.Empty(t, positions)
	assert.Empty(t, ids)

	assert.Equal(t, "", ConvertPositionsToLinkPath(nil))
}

func TestConvertLinkPathToPositions_ReplacesPlaceholderIDs(t *testing.T) {
	positions, ids, err := ConvertLinkPathToPositions("M 0 0 L 10 10 L 20 20", "p1,x,p3")
	require.NoError(t, err)
	require.Len(t, positions, 3)

	parts := strings.Split(ids, ",")
	require.Len(t, parts, 3)
	assert.Equal(t, "p1", parts[0])
	assert.Equal(t, "p3", parts[2])
	assert.NotEqual(t, PointIDPlaceholder, parts[1], "placeholder must be replaced with a generated id")
	assert.NotEmpty(t, parts[1])
}

func TestConvertLinkPathToPositions_GeneratesMissingIDs(t *testing.T) {
	_, ids, err := ConvertLinkPathToPositions("M 0 0 L 10 10", "")
	require.NoError(t, err)

	parts := strings.Split(ids, ",")
	require.Len(t, parts, 2)
	assert.NotEqual(t, parts[0], parts[1])
}

func TestConvertLinkPathToPositions_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		path string
	}{
		{name: "truncated segment", path: "M 0"},
		{name: "wrong first command", path: "L 0 0"},
		{name: "wrong later command", path: "M 0 0 M 1 1"},
		{name: "non numeric", path: "M a b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ConvertLinkPathToPositions(tc.path, "")
			assert.Error(t, err)
		})
	}
}

func TestLinkOperatorAndConnectorID(t *testing.T) {
	operatorID, connectorID, err := LinkOperatorAndConnectorID("op-1_conn-2")
	require.NoError(t, err)
	assert.Equal(t, "op-1", operatorID)
	assert.Equal(t, "conn-2", connectorID)

	_, _, err = LinkOperatorAndConnectorID("no-separator")
	assert.Error(t, err)

	_, _, err = LinkOperatorAndConnectorID("too_many_parts")
	assert.Error(t, err)
}
