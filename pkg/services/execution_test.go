package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flowdesk/flowdesk/pkg/events"
	"github.com/flowdesk/flowdesk/pkg/models"
)

func executableComponent() *models.Transformation {
	return &models.Transformation{
		ID:              "comp-1",
		RevisionGroupID: "group-1",
		Name:            "Filter",
		Category:        "Examples",
		VersionTag:      "1.0.0",
		State:           models.StateReleased,
		Type:            models.TypeComponent,
		Content:         &models.ComponentContent{Code: "def main(*, series):\n    return {\"out\": series}\n"},
		IOInterface: models.IOInterface{
			Inputs:  []models.IOItem{{ID: "in-1", Name: "series", DataType: models.DataTypeSeries}},
			Outputs: []models.IOItem{{ID: "out-1", Name: "out", DataType: models.DataTypeSeries}},
		},
	}
}

func newExecutionService(t *testing.T) (*Execution, *memoryPersistence, *capturePublisher) {
	t.Helper()

	store := newMemoryPersistence()
	publisher := &capturePublisher{}
	tracer := noop.NewTracerProvider().Tracer("test")

	return NewExecution(store, publisher, tracer), store, publisher
}

func TestExecution_Execute_PublishesRequest(t *testing.T) {
	service, store, publisher := newExecutionService(t)

	component := executableComponent()
	store.transformations[component.ID] = component

	wiring := &models.TestWiring{
		InputWirings: []models.InputWiring{{
			WorkflowInputName: "series",
			AdapterID:         models.DirectProvisioningAdapterID,
		}},
		OutputWirings: []models.OutputWiring{{
			WorkflowOutputName: "out",
			AdapterID:          models.DirectProvisioningAdapterID,
		}},
	}

	jobID, err := service.Execute(context.Background(), component.ID, wiring)
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	require.Len(t, publisher.published, 1)
	request, ok := publisher.published[0].(events.ExecutionRequested)
	require.True(t, ok)
	assert.Equal(t, jobID, request.ID)
	assert.Len(t, request.Wiring.InputWirings, 1)

	_, err = store.WiringRepository().GetByTransformation(context.Background(), component.ID)
	require.NoError(t, err, "an explicit wiring becomes the stored standard wiring")
}

func TestExecution_Execute_FallsBackToStoredWiring(t *testing.T) {
	service, store, publisher := newExecutionService(t)

	component := executableComponent()
	store.transformations[component.ID] = component
	store.wirings[component.ID] = &models.TestWiring{
		InputWirings: []models.InputWiring{{WorkflowInputName: "series", AdapterID: "demo-adapter", RefID: "src-1"}},
	}

	_, err := service.Execute(context.Background(), component.ID, nil)
	require.NoError(t, err)

	request := publisher.published[0].(events.ExecutionRequested)
	require.Len(t, request.Wiring.InputWirings, 1)
	assert.Equal(t, "demo-adapter", request.Wiring.InputWirings[0].AdapterID)
}

func TestExecution_Execute_NoStoredWiringMeansEmptyWiring(t *testing.T) {
	service, store, publisher := newExecutionService(t)

	component := executableComponent()
	store.transformations[component.ID] = component

	_, err := service.Execute(context.Background(), component.ID, nil)
	require.NoError(t, err)

	request := publisher.published[0].(events.ExecutionRequested)
	assert.Empty(t, request.Wiring.InputWirings)
}

func TestExecution_Execute_RefusesIncomplete(t *testing.T) {
	service, store, publisher := newExecutionService(t)

	component := executableComponent()
	component.IOInterface = models.IOInterface{}
	store.transformations[component.ID] = component

	_, err := service.Execute(context.Background(), component.ID, nil)
	require.ErrorIs(t, err, ErrNotExecutable)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, publisher.published)
}

func TestExecution_Execute_RejectsUnknownWiringName(t *testing.T) {
	service, store, _ := newExecutionService(t)

	component := executableComponent()
	store.transformations[component.ID] = component

	wiring := &models.TestWiring{
		InputWirings: []models.InputWiring{{WorkflowInputName: "no_such_input", AdapterID: "demo"}},
	}

	_, err := service.Execute(context.Background(), component.ID, wiring)
	require.ErrorIs(t, err, ErrIncompleteWiring)
}

func TestExecution_Execute_RejectsIncompatibleWiringType(t *testing.T) {
	service, store, publisher := newExecutionService(t)

	component := executableComponent()
	store.transformations[component.ID] = component

	wiring := &models.TestWiring{
		InputWirings: []models.InputWiring{{WorkflowInputName: "series", AdapterID: "demo", Type: "BOOLEAN"}},
	}

	_, err := service.Execute(context.Background(), component.ID, wiring)
	require.ErrorIs(t, err, ErrIncompatibleWiring)
	assert.Empty(t, publisher.published, "no request goes out for an incompatible wiring")
}

func TestExecution_Execute_UnknownTransformation(t *testing.T) {
	service, _, _ := newExecutionService(t)

	_, err := service.Execute(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrTransformationNotFound)
}
