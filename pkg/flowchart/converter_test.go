package flowchart

import (
	"encoding/json"
	"testing"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkflow() *models.Transformation {
	content := models.NewWorkflowContent()
	content.Operators = []models.Operator{
		{
			ID:               "op-1",
			TransformationID: "c-1",
			Name:             "Resample",
			Type:             models.TypeComponent,
			Position:         models.Position{X: 120, Y: 80},
			Inputs: []models.Connector{
				{ID: "in-a", Name: "series", DataType: models.DataTypeSeries, Exposed: true},
				{ID: "in-b", Name: "freq", DataType: models.DataTypeString, Exposed: true},
			},
			Outputs: []models.Connector{
				{ID: "out-a", Name: "resampled", DataType: models.DataTypeSeries},
			},
		},
	}
	content.Inputs = []models.IOConnector{
		{ID: "wf-in-1", Name: "raw", DataType: models.DataTypeSeries, OperatorID: "op-1", ConnectorID: "in-a", Position: models.Position{X: -130, Y: 140}},
		{ID: "wf-in-2", Name: "", DataType: models.DataTypeString, OperatorID: "op-1", ConnectorID: "in-b"},
	}
	content.Outputs = []models.IOConnector{
		{ID: "wf-out-1", Name: "result", DataType: models.DataTypeSeries, OperatorID: "op-1", ConnectorID: "out-a"},
	}
	content.Links = []models.Link{
		{
			ID:    "link-1",
			Start: models.Vertex{Connector: models.Connector{ID: "wf-in-1", DataType: models.DataTypeSeries}},
			End:   models.Vertex{Operator: "op-1", Connector: models.Connector{ID: "in-a", DataType: models.DataTypeSeries}},
			Path:  []models.Position{{X: 10, Y: 20}, {X: 30, Y: 40}},
		},
		{
			ID:    "link-2",
			Start: models.Vertex{Operator: "op-1", Connector: models.Connector{ID: "out-a", DataType: models.DataTypeSeries}},
			End:   models.Vertex{Connector: models.Connector{ID: "wf-out-1", DataType: models.DataTypeSeries}},
		},
	}

	return &models.Transformation{
		ID:              "wf-1",
		RevisionGroupID: "g-1",
		Name:            "Preprocess",
		Type:            models.TypeWorkflow,
		State:           models.StateDraft,
		Content:         content,
	}
}

func TestConvertWorkflowToFlowchart(t *testing.T) {
	chart, err := ConvertWorkflowToFlowchart(testWorkflow())
	require.NoError(t, err)

	require.Len(t, chart.Components, 1)
	assert.Equal(t, models.Position{X: 120, Y: 80}, chart.Components[0].Position)
	assert.Len(t, chart.Components[0].Inputs, 2)

	// The unnamed boundary input is not drawn.
	require.Len(t, chart.IO, 2)
	assert.Equal(t, "wf-in-1", chart.IO[0].ID)
	assert.Equal(t, "wf-out-1", chart.IO[1].ID)

	// Boundary direction is inverted on canvas.
	assert.False(t, chart.IO[0].Input, "workflow input feeds the internals, drawn as canvas output")
	assert.True(t, chart.IO[1].Input, "workflow output receives from the internals, drawn as canvas input")

	require.Len(t, chart.Links, 2)
}

func TestConvertWorkflowToFlowchart_BoundaryVertexUsesWorkflowID(t *testing.T) {
	chart, err := ConvertWorkflowToFlowchart(testWorkflow())
	require.NoError(t, err)

	assert.Equal(t, "wf-1_wf-in-1", chart.Links[0].From)
	assert.Equal(t, "op-1_in-a", chart.Links[0].To)
	assert.Equal(t, "wf-1_wf-out-1", chart.Links[1].To)
}

func TestConvertWorkflowToFlowchart_PathPointIDs(t *testing.T) {
	chart, err := ConvertWorkflowToFlowchart(testWorkflow())
	require.NoError(t, err)

	assert.Equal(t, "M 10 20 L 30 40", chart.Links[0].Path)

	positions, ids, err := ConvertLinkPathToPositions(chart.Links[0].Path, chart.Links[0].PointIDs)
	require.NoError(t, err)
	assert.Len(t, positions, 2)
	assert.Equal(t, chart.Links[0].PointIDs, ids, "generated point ids are already stable")
}

func TestConvertWorkflowToFlowchart_ConstantsReplaceLinks(t *testing.T) {
	workflow := testWorkflow()
	content, _ := workflow.WorkflowContent()
	content.Links = content.Links[:1] // keep only the link into op-1.in-a
	content.Constants = []models.Constant{
		{OperatorID: "op-1", ConnectorID: "in-a", DataType: models.DataTypeSeries, Value: "[1,2,3]"},
	}

	chart, err := ConvertWorkflowToFlowchart(workflow)
	require.NoError(t, err)

	assert.Empty(t, chart.Links, "links into a constant-bound connector are not drawn")

	input := chart.Components[0].Inputs[0]
	assert.True(t, input.Constant)
	assert.Equal(t, "[1,2,3]", input.Value)
}

func TestConvertWorkflowToFlowchart_DoesNotMutateInput(t *testing.T) {
	workflow := testWorkflow()

	before, err := json.Marshal(workflow)
	require.NoError(t, err)

	_, err = ConvertWorkflowToFlowchart(workflow)
	require.NoError(t, err)

	after, err := json.Marshal(workflow)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestConvertComponentToFlowchart(t *testing.T) {
	component := &models.Transformation{
		ID:      "c-9",
		Name:    "Scale",
		Type:    models.TypeComponent,
		Content: &models.ComponentContent{Code: "pass"},
		IOInterface: models.IOInterface{
			Inputs: []models.IOItem{
				{ID: "i1", Name: "x", DataType: models.DataTypeFloat},
				{ID: "i2", Name: "factor", DataType: models.DataTypeFloat, Value: 2.0},
			},
			Outputs: []models.IOItem{{ID: "o1", Name: "y", DataType: models.DataTypeFloat}},
		},
	}

	chart := ConvertComponentToFlowchart(component)

	require.Len(t, chart.Components, 1)
	assert.Empty(t, chart.Links)
	assert.Empty(t, chart.IO)

	inputs := chart.Components[0].Inputs
	require.Len(t, inputs, 2)
	assert.True(t, inputs[0].Exposed, "component inputs are always exposed")
	assert.False(t, inputs[0].Default)
	assert.True(t, inputs[1].Default)
	assert.Equal(t, 2.0, inputs[1].Value)
}

func TestConvertComponentToFlowchart_WorkflowDerivesExposure(t *testing.T) {
	workflow := testWorkflow()
	workflow.IOInterface = models.IOInterface{
		Inputs: []models.IOItem{
			{ID: "in-a", Name: "raw", DataType: models.DataTypeSeries},
			{ID: "in-b", Name: "freq", DataType: models.DataTypeString},
		},
		Outputs: []models.IOItem{{ID: "out-a", Name: "result", DataType: models.DataTypeSeries}},
	}

	content, _ := workflow.WorkflowContent()
	content.Operators[0].Inputs[1].Exposed = false
	content.Operators[0].Inputs[1].Value = "5min"

	chart := ConvertComponentToFlowchart(workflow)

	inputs := chart.Components[0].Inputs
	require.Len(t, inputs, 2)
	assert.True(t, inputs[0].Exposed)
	assert.False(t, inputs[1].Exposed)
	assert.True(t, inputs[1].Default)
}

func TestConnectorFromOperatorByID(t *testing.T) {
	workflow := testWorkflow()
	workflow.IOInterface = models.IOInterface{
		Inputs: []models.IOItem{{ID: "wf-in-1", Name: "raw", DataType: models.DataTypeSeries}},
	}

	connector, err := ConnectorFromOperatorByID(workflow, "op-1", "in-a", false)
	require.NoError(t, err)
	assert.Equal(t, models.DataTypeSeries, connector.DataType)

	connector, err = ConnectorFromOperatorByID(workflow, "wf-1", "wf-in-1", true)
	require.NoError(t, err)
	assert.Equal(t, "raw", connector.Name)

	_, err = ConnectorFromOperatorByID(workflow, "op-404", "in-a", false)
	assert.Error(t, err)

	_, err = ConnectorFromOperatorByID(workflow, "op-1", "conn-404", false)
	assert.Error(t, err)
}
