package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdesk/flowdesk/pkg/models"
)

func TestWiring_SaveAndGet(t *testing.T) {
	store := newMemoryPersistence()
	service := NewWiring(store)

	component := executableComponent()
	store.transformations[component.ID] = component

	wiring := &models.TestWiring{
		InputWirings: []models.InputWiring{{
			WorkflowInputName: "series",
			AdapterID:         "demo-adapter",
			RefID:             "src-1",
			Filters:           map[string]string{"timestampFrom": "2026-01-01T00:00:00Z"},
		}},
	}

	saved, err := service.Save(context.Background(), component.ID, wiring)
	require.NoError(t, err)
	require.Len(t, saved.InputWirings, 1)

	loaded, err := service.Get(context.Background(), component.ID)
	require.NoError(t, err)
	assert.Equal(t, "src-1", loaded.InputWirings[0].RefID)
	assert.Equal(t, "2026-01-01T00:00:00Z", loaded.InputWirings[0].Filters["timestampFrom"])
}

func TestWiring_Save_RejectsUnknownNames(t *testing.T) {
	store := newMemoryPersistence()
	service := NewWiring(store)

	component := executableComponent()
	store.transformations[component.ID] = component

	_, err := service.Save(context.Background(), component.ID, &models.TestWiring{
		OutputWirings: []models.OutputWiring{{WorkflowOutputName: "bogus", AdapterID: "demo"}},
	})
	require.ErrorIs(t, err, ErrIncompleteWiring)
}

func TestWiring_Save_TypeCompatibility(t *testing.T) {
	tests := []struct {
		name    string
		wiring  models.TestWiring
		wantErr bool
	}{
		{
			name: "incompatible source type",
			wiring: models.TestWiring{
				InputWirings: []models.InputWiring{{
					WorkflowInputName: "series", AdapterID: "demo", Type: "STRING",
				}},
			},
			wantErr: true,
		},
		{
			name: "incompatible sink type",
			wiring: models.TestWiring{
				OutputWirings: []models.OutputWiring{{
					WorkflowOutputName: "out", AdapterID: "demo", Type: "INT",
				}},
			},
			wantErr: true,
		},
		{
			name: "series family source feeds a series input",
			wiring: models.TestWiring{
				InputWirings: []models.InputWiring{{
					WorkflowInputName: "series", AdapterID: "demo", Type: "DATAFRAME",
				}},
			},
		},
		{
			name: "untyped wiring skips the check",
			wiring: models.TestWiring{
				InputWirings: []models.InputWiring{{
					WorkflowInputName: "series", AdapterID: models.DirectProvisioningAdapterID,
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryPersistence()
			service := NewWiring(store)

			component := executableComponent()
			store.transformations[component.ID] = component

			_, err := service.Save(context.Background(), component.ID, &tt.wiring)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIncompatibleWiring)
				assert.True(t, IsValidationError(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWiring_Save_NilWiring(t *testing.T) {
	store := newMemoryPersistence()
	service := NewWiring(store)

	_, err := service.Save(context.Background(), "any", nil)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestWiring_Get_NotFound(t *testing.T) {
	store := newMemoryPersistence()
	service := NewWiring(store)

	_, err := service.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrWiringNotFound)
}

func TestWiring_Delete(t *testing.T) {
	store := newMemoryPersistence()
	service := NewWiring(store)

	wiring := models.TestWiring{}
	store.wirings["t-1"] = &wiring

	require.NoError(t, service.Delete(context.Background(), "t-1"))

	_, err := service.Get(context.Background(), "t-1")
	require.ErrorIs(t, err, ErrWiringNotFound)
}
