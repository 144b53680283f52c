package editor

import (
	"context"
	"testing"

	logrus "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdesk/flowdesk/pkg/models"
	"github.com/flowdesk/flowdesk/pkg/persistence"
)

type fakeRepository struct {
	saved []*models.Transformation
	byID  map[string]*models.Transformation
	err   error
}

func (r *fakeRepository) List(_ context.Context, _ persistence.ListOptions) ([]*models.Transformation, error) {
	return nil, nil
}

func (r *fakeRepository) Save(_ context.Context, transformation *models.Transformation) error {
	if r.err != nil {
		return r.err
	}

	r.saved = append(r.saved, transformation.Clone())

	return nil
}

func (r *fakeRepository) Delete(_ context.Context, _ string) error { return nil }

func (r *fakeRepository) GetByID(_ context.Context, id string) (*models.Transformation, error) {
	if t, ok := r.byID[id]; ok {
		return t.Clone(), nil
	}

	return nil, persistence.NewTransformationError("GetByID", id, persistence.ErrTransformationNotFound)
}

func (r *fakeRepository) GetByRevisionGroup(_ context.Context, _ string) ([]*models.Transformation, error) {
	return nil, nil
}

func testEngine(t *testing.T, transformation *models.Transformation) (*Engine, *fakeRepository) {
	t.Helper()

	repo := &fakeRepository{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewEngine(transformation, repo, nil, logrus.NewEntry(logger)), repo
}

func editableWorkflow() *models.Transformation {
	return &models.Transformation{
		ID:              "wf-1",
		RevisionGroupID: "group-1",
		Name:            "Aggregate",
		Category:        "Examples",
		VersionTag:      "1.0.0",
		State:           models.StateDraft,
		Type:            models.TypeWorkflow,
		Content: &models.WorkflowContent{
			Operators: []models.Operator{
				{
					ID:               "op-1",
					TransformationID: "comp-1",
					RevisionGroupID:  "comp-group-1",
					Name:             "Filter",
					Type:             models.TypeComponent,
					Inputs: []models.Connector{
						{ID: "in-1", Name: "series", DataType: models.DataTypeSeries, Exposed: true},
						{ID: "in-2", Name: "threshold", DataType: models.DataTypeFloat, Exposed: true},
					},
					Outputs:  []models.Connector{{ID: "out-1", Name: "filtered", DataType: models.DataTypeSeries}},
					Position: models.Position{X: 200, Y: 100},
				},
				{
					ID:               "op-2",
					TransformationID: "comp-2",
					RevisionGroupID:  "comp-group-2",
					Name:             "Resample",
					Type:             models.TypeComponent,
					Inputs:           []models.Connector{{ID: "in-a", Name: "data", DataType: models.DataTypeSeries, Exposed: true}},
					Outputs:          []models.Connector{{ID: "out-b", Name: "resampled", DataType: models.DataTypeSeries}},
					Position:         models.Position{X: 600, Y: 100},
				},
			},
			Links: []models.Link{
				{
					ID:    "link-1",
					Start: models.Vertex{Operator: "op-1", Connector: models.Connector{ID: "out-1", DataType: models.DataTypeSeries}},
					End:   models.Vertex{Operator: "op-2", Connector: models.Connector{ID: "in-a", DataType: models.DataTypeSeries}},
				},
			},
			Inputs: []models.IOConnector{
				{ID: "io-in", Name: "alpha", DataType: models.DataTypeSeries, OperatorID: "op-1", ConnectorID: "in-1", Position: models.Position{X: 0, Y: 100}},
			},
			Outputs: []models.IOConnector{
				{ID: "io-out", Name: "beta", DataType: models.DataTypeSeries, OperatorID: "op-2", ConnectorID: "out-b", Position: models.Position{X: 900, Y: 100}},
			},
			Constants: []models.Constant{
				{ID: "const-1", OperatorID: "op-1", ConnectorID: "in-2", DataType: models.DataTypeFloat, Value: 0.5},
			},
		},
		IOInterface: models.IOInterface{
			Inputs:  []models.IOItem{{ID: "io-in", Name: "alpha", DataType: models.DataTypeSeries}},
			Outputs: []models.IOItem{{ID: "io-out", Name: "beta", DataType: models.DataTypeSeries}},
		},
	}
}

func TestEngine_DoesNotAliasCallerState(t *testing.T) {
	workflow := editableWorkflow()
	engine, _ := testEngine(t, workflow)

	engine.UpdatePosition(CanvasElement{ID: "op-1", Position: models.Position{X: 1, Y: 1}})

	content, _ := workflow.WorkflowContent()
	assert.Equal(t, models.Position{X: 200, Y: 100}, content.Operators[0].Position)
}

func TestEngine_FlushPersistsOnlyWhenDirty(t *testing.T) {
	engine, repo := testEngine(t, editableWorkflow())

	require.NoError(t, engine.Flush(context.Background()))
	assert.Empty(t, repo.saved)

	engine.UpdatePosition(CanvasElement{ID: "op-1", Position: models.Position{X: 10, Y: 20}})
	require.True(t, engine.Dirty())

	require.NoError(t, engine.Flush(context.Background()))
	require.Len(t, repo.saved, 1)
	assert.False(t, engine.Dirty())

	content, _ := repo.saved[0].WorkflowContent()
	assert.Equal(t, models.Position{X: 10, Y: 20}, content.Operators[0].Position)
}

func TestEngine_ReleasedFlushIsSilentNoOp(t *testing.T) {
	workflow := editableWorkflow()
	workflow.State = models.StateReleased
	engine, repo := testEngine(t, workflow)

	engine.UpdatePosition(CanvasElement{ID: "op-1", Position: models.Position{X: 10, Y: 20}})

	require.NoError(t, engine.Flush(context.Background()))
	assert.Empty(t, repo.saved)
	assert.True(t, engine.Dirty(), "dirty flag must survive so the skip repeats every tick")
}

func TestEngine_UpdatePosition(t *testing.T) {
	t.Run("unchanged operator position stays clean", func(t *testing.T) {
		engine, _ := testEngine(t, editableWorkflow())

		engine.UpdatePosition(CanvasElement{ID: "op-1", Position: models.Position{X: 200, Y: 100}})

		assert.False(t, engine.Dirty())
	})

	t.Run("unmatched id is ignored", func(t *testing.T) {
		engine, _ := testEngine(t, editableWorkflow())

		engine.UpdatePosition(CanvasElement{ID: "not-a-graph-entity", Position: models.Position{X: 1, Y: 2}})

		assert.False(t, engine.Dirty())
	})

	t.Run("link path is recomputed", func(t *testing.T) {
		engine, _ := testEngine(t, editableWorkflow())

		engine.UpdatePosition(CanvasElement{ID: "link-1", Path: "M 10 20 L 30 40", PointIDs: "x,x"})

		require.True(t, engine.Dirty())
		content, _ := engine.Transformation().WorkflowContent()
		link, ok := content.LinkByID("link-1")
		require.True(t, ok)
		assert.Equal(t, []models.Position{{X: 10, Y: 20}, {X: 30, Y: 40}}, link.Path)
	})

	t.Run("empty path over empty path stays clean", func(t *testing.T) {
		engine, _ := testEngine(t, editableWorkflow())

		engine.UpdatePosition(CanvasElement{ID: "link-1", Path: "", PointIDs: ""})

		assert.False(t, engine.Dirty())
	})

	t.Run("boundary connector position", func(t *testing.T) {
		engine, _ := testEngine(t, editableWorkflow())

		engine.UpdatePosition(CanvasElement{ID: "io-in", Position: models.Position{X: -50, Y: 75}})

		require.True(t, engine.Dirty())
		content, _ := engine.Transformation().WorkflowContent()
		assert.Equal(t, models.Position{X: -50, Y: 75}, content.Inputs[0].Position)
	})
}

func TestEngine_AddElement_Link(t *testing.T) {
	engine, _ := testEngine(t, editableWorkflow())

	err := engine.AddElement(CanvasElement{
		ID:         "link-2",
		Dispatcher: DispatcherLink,
		From:       "op-2_out-b",
		To:         "wf-1_io-out",
	})
	require.NoError(t, err)
	require.True(t, engine.Dirty())

	content, _ := engine.Transformation().WorkflowContent()
	link, ok := content.LinkByID("link-2")
	require.True(t, ok)
	assert.Equal(t, "op-2", link.Start.Operator)
	assert.True(t, link.End.IsBoundary(), "workflow's own id resolves to a boundary vertex")
}

func TestEngine_AddElement_ExistingLinkIsIgnored(t *testing.T) {
	engine, _ := testEngine(t, editableWorkflow())

	err := engine.AddElement(CanvasElement{ID: "link-1", Dispatcher: DispatcherLink, From: "op-1_out-1", To: "op-2_in-a"})
	require.NoError(t, err)
	assert.False(t, engine.Dirty())
}

func TestEngine_AddElement_IncompatibleTypes(t *testing.T) {
	engine, _ := testEngine(t, editableWorkflow())

	err := engine.AddElement(CanvasElement{ID: "link-3", Dispatcher: DispatcherLink, From: "op-1_out-1", To: "op-1_in-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible")
}

func TestEngine_RemoveElement(t *testing.T) {
	t.Run("operator removal strips its constants but not links", func(t *testing.T) {
		engine, _ := testEngine(t, editableWorkflow())

		engine.RemoveElement("op-1")

		require.True(t, engine.Dirty())
		content, _ := engine.Transformation().WorkflowContent()
		_, ok := content.OperatorByID("op-1")
		assert.False(t, ok)
		assert.Empty(t, content.Constants)
		assert.Len(t, content.Links, 1, "canvas is responsible for link removal on this path")
	})

	t.Run("link removal", func(t *testing.T) {
		engine, _ := testEngine(t, editableWorkflow())

		engine.RemoveElement("link-1")

		content, _ := engine.Transformation().WorkflowContent()
		assert.Empty(t, content.Links)
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		engine, _ := testEngine(t, editableWorkflow())

		engine.RemoveElement("nope")

		assert.False(t, engine.Dirty())
	})
}

func droppable() *models.Transformation {
	return &models.Transformation{
		ID:              "comp-1",
		RevisionGroupID: "comp-group-1",
		Name:            "Filter",
		VersionTag:      "1.0.1",
		State:           models.StateReleased,
		Type:            models.TypeComponent,
		IOInterface: models.IOInterface{
			Inputs:  []models.IOItem{{ID: "in-1", Name: "series", DataType: models.DataTypeSeries, Exposed: true}},
			Outputs: []models.IOItem{{ID: "out-1", Name: "filtered", DataType: models.DataTypeSeries}},
		},
	}
}

func TestEngine_DropOperator(t *testing.T) {
	engine, repo := testEngine(t, editableWorkflow())

	operator, err := engine.DropOperator(context.Background(), droppable(), models.Position{X: 40, Y: 400})
	require.NoError(t, err)

	assert.Equal(t, "Filter (2)", operator.Name, "second drop of comp-1 gets a numbered suffix")
	assert.Equal(t, models.Position{X: 40, Y: 400}, operator.Position)
	assert.Len(t, repo.saved, 1, "drop persists immediately")
	assert.False(t, engine.Dirty())
}

func TestEngine_DropOperator_FirstOfItsKindKeepsName(t *testing.T) {
	engine, _ := testEngine(t, editableWorkflow())

	fresh := droppable()
	fresh.ID = "comp-9"
	fresh.Name = "Score"

	operator, err := engine.DropOperator(context.Background(), fresh, models.Position{})
	require.NoError(t, err)
	assert.Equal(t, "Score", operator.Name)
}

func TestEngine_ChangeRevision_Cascades(t *testing.T) {
	engine, repo := testEngine(t, editableWorkflow())

	replacement := droppable()
	replacement.ID = "comp-1-v2"
	replacement.VersionTag = "2.0.0"

	require.NoError(t, engine.ChangeRevision(context.Background(), "op-1", replacement))

	content, _ := engine.Transformation().WorkflowContent()
	assert.Empty(t, content.Links, "links touching the old operator are removed")
	assert.Empty(t, content.Constants, "constants bound to the old operator are removed")
	assert.Empty(t, content.Inputs, "boundary connectors of the old operator are removed")

	var swapped *models.Operator
	for i := range content.Operators {
		if content.Operators[i].TransformationID == "comp-1-v2" {
			swapped = &content.Operators[i]
		}
	}

	require.NotNil(t, swapped)
	assert.Equal(t, "Filter", swapped.Name, "display name survives the revision swap")
	assert.Equal(t, models.Position{X: 200, Y: 100}, swapped.Position)
	assert.Len(t, repo.saved, 1)
}

func TestEngine_ChangeRevision_RejectsForeignGroup(t *testing.T) {
	engine, _ := testEngine(t, editableWorkflow())

	replacement := droppable()
	replacement.RevisionGroupID = "some-other-group"

	err := engine.ChangeRevision(context.Background(), "op-1", replacement)
	require.Error(t, err)
}

func TestEngine_RenameOperator(t *testing.T) {
	engine, repo := testEngine(t, editableWorkflow())

	require.NoError(t, engine.RenameOperator(context.Background(), "op-1", "Smoother"))

	content, _ := engine.Transformation().WorkflowContent()
	operator, _ := content.OperatorByID("op-1")
	assert.Equal(t, "Smoother", operator.Name)
	assert.Len(t, repo.saved, 1)
}

func TestEngine_CopyOperator(t *testing.T) {
	engine, repo := testEngine(t, editableWorkflow())

	duplicate, err := engine.CopyOperator(context.Background(), "op-1")
	require.NoError(t, err)

	assert.NotEqual(t, "op-1", duplicate.ID)
	assert.Equal(t, "Filter (2)", duplicate.Name)
	assert.Equal(t, models.Position{X: 300, Y: 200}, duplicate.Position)
	assert.Len(t, repo.saved, 1)
}

func TestEngine_SetOptionalExposure_HidingClearsBoundaryName(t *testing.T) {
	engine, _ := testEngine(t, editableWorkflow())

	require.NoError(t, engine.SetOptionalExposure("op-1", "in-1", false))

	content, _ := engine.Transformation().WorkflowContent()
	operator, _ := content.OperatorByID("op-1")
	connector, _ := operator.InputByID("in-1")
	assert.False(t, connector.Exposed)
	assert.Empty(t, content.Inputs[0].Name, "boundary input referencing the hidden port loses its name")
	assert.True(t, engine.Dirty())
}

func TestEngine_SetOptionalExposure_NoChangeStaysClean(t *testing.T) {
	engine, _ := testEngine(t, editableWorkflow())

	require.NoError(t, engine.SetOptionalExposure("op-1", "in-1", true))
	assert.False(t, engine.Dirty())
}

func TestEngine_ConfigureWorkflowIO(t *testing.T) {
	engine, repo := testEngine(t, editableWorkflow())

	err := engine.ConfigureWorkflowIO(context.Background(), []IOUpdate{
		{ID: "io-in", Name: "gamma"},
		{ID: "io-out", Name: "delta"},
	})
	require.NoError(t, err)

	content, _ := engine.Transformation().WorkflowContent()

	assert.Equal(t, "gamma", content.Inputs[0].Name)
	assert.Equal(t, models.Position{X: 200 - 250, Y: 100 + 60}, content.Inputs[0].Position,
		"input position derives from the owning operator with the fixed offsets")
	assert.Equal(t, models.Position{X: 600 + 450, Y: 100 + 60}, content.Outputs[0].Position)

	var boundaryLinks int
	for _, link := range content.Links {
		if link.Start.IsBoundary() || link.End.IsBoundary() {
			boundaryLinks++
		}
	}

	assert.Equal(t, 2, boundaryLinks, "one synthetic link per named boundary connector")
	_, internalKept := content.LinkByID("link-1")
	assert.True(t, internalKept, "wholly internal links are preserved")
	assert.Len(t, repo.saved, 1)
}

func TestEngine_ConfigureWorkflowIO_ConstantReplacesLink(t *testing.T) {
	engine, _ := testEngine(t, editableWorkflow())

	err := engine.ConfigureWorkflowIO(context.Background(), []IOUpdate{
		{ID: "io-in", IsConstant: true, Value: 42.0},
	})
	require.NoError(t, err)

	content, _ := engine.Transformation().WorkflowContent()

	assert.True(t, content.Inputs[0].Constant)
	assert.Empty(t, content.Inputs[0].Name)

	constant, ok := content.ConstantFor("op-1", "in-1")
	require.True(t, ok)
	assert.Equal(t, 42.0, constant.Value)

	for _, link := range content.Links {
		if link.Start.IsBoundary() || link.End.IsBoundary() {
			assert.NotEqual(t, "in-1", link.End.Connector.ID, "no boundary link remains for the constant port")
		}
	}
}

func TestEngine_ConfigureWorkflowIO_Validation(t *testing.T) {
	tests := []struct {
		name    string
		updates []IOUpdate
	}{
		{"reserved word", []IOUpdate{{ID: "io-in", Name: "lambda"}}},
		{"not an identifier", []IOUpdate{{ID: "io-in", Name: "1st"}}},
		{"named and constant", []IOUpdate{{ID: "io-in", Name: "alpha", IsConstant: true}}},
		{"duplicate names", []IOUpdate{{ID: "io-in", Name: "alpha"}, {ID: "io-out", Name: "alpha"}}},
		{"constant on output", []IOUpdate{{ID: "io-out", IsConstant: true, Value: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, repo := testEngine(t, editableWorkflow())

			err := engine.ConfigureWorkflowIO(context.Background(), tt.updates)
			require.Error(t, err)
			assert.Empty(t, repo.saved)
		})
	}
}

func TestEngine_ConfigureWorkflowIO_RejectionLeavesGraphUntouched(t *testing.T) {
	engine, repo := testEngine(t, editableWorkflow())

	before, _ := engine.Transformation().WorkflowContent()

	// The valid input row precedes the invalid output row; rejection must
	// not leave the input half-applied.
	err := engine.ConfigureWorkflowIO(context.Background(), []IOUpdate{
		{ID: "io-in", Name: "gamma"},
		{ID: "io-out", IsConstant: true, Value: 1},
	})
	require.Error(t, err)

	after, _ := engine.Transformation().WorkflowContent()

	assert.Equal(t, before.Inputs, after.Inputs)
	assert.Equal(t, before.Links, after.Links)
	assert.Equal(t, before.Constants, after.Constants)
	assert.False(t, engine.Dirty())
	assert.Empty(t, repo.saved)
}

func TestEngine_ConfigureComponentIO(t *testing.T) {
	component := droppable()
	component.State = models.StateDraft
	engine, repo := testEngine(t, component)

	err := engine.ConfigureComponentIO(context.Background(),
		[]models.IOItem{{Name: "series", DataType: models.DataTypeSeries}, {Name: "window", DataType: models.DataTypeInt}},
		[]models.IOItem{{Name: "series", DataType: models.DataTypeSeries}},
	)
	require.NoError(t, err)

	result := engine.Transformation()
	require.Len(t, result.IOInterface.Inputs, 2)
	assert.NotEmpty(t, result.IOInterface.Inputs[0].ID, "missing ids are generated")
	assert.Len(t, repo.saved, 1)
}

func TestEngine_ConfigureComponentIO_DuplicateWithinList(t *testing.T) {
	component := droppable()
	component.State = models.StateDraft
	engine, _ := testEngine(t, component)

	err := engine.ConfigureComponentIO(context.Background(),
		[]models.IOItem{{Name: "series"}, {Name: "series"}},
		nil,
	)
	require.Error(t, err)
}
