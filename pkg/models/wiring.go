package models

// InputWiring maps one exposed workflow input name to a literal value or an
// external adapter source reference.
type InputWiring struct {
	WorkflowInputName string            `json:"workflow_input_name" validate:"required"`
	AdapterID         string            `json:"adapter_id"          validate:"required"`
	RefID             string            `json:"ref_id,omitempty"`
	RefIDType         string            `json:"ref_id_type,omitempty"`
	RefKey            string            `json:"ref_key,omitempty"`
	Type              string            `json:"type,omitempty"`
	Filters           map[string]string `json:"filters,omitempty"`
}

// OutputWiring maps one exposed workflow output name to an external adapter
// sink reference.
type OutputWiring struct {
	WorkflowOutputName string `json:"workflow_output_name" validate:"required"`
	AdapterID          string `json:"adapter_id"           validate:"required"`
	RefID              string `json:"ref_id,omitempty"`
	RefIDType          string `json:"ref_id_type,omitempty"`
	RefKey             string `json:"ref_key,omitempty"`
	Type               string `json:"type,omitempty"`
}

// TestWiring binds a transformation's exposed inputs/outputs for execution.
// Created or updated only on an explicit execute or configure-io action;
// at most one standard wiring is the default per transformation.
type TestWiring struct {
	InputWirings  []InputWiring  `json:"input_wirings"`
	OutputWirings []OutputWiring `json:"output_wirings"`
}

// DirectProvisioningAdapterID identifies the built-in adapter for literal
// values entered in the execution dialog.
const DirectProvisioningAdapterID = "direct_provisioning"

// Clone returns a deep copy of the wiring.
func (w TestWiring) Clone() TestWiring {
	clone := TestWiring{
		InputWirings:  make([]InputWiring, len(w.InputWirings)),
		OutputWirings: make([]OutputWiring, len(w.OutputWirings)),
	}

	for i, iw := range w.InputWirings {
		clone.InputWirings[i] = iw

		if iw.Filters != nil {
			clone.InputWirings[i].Filters = make(map[string]string, len(iw.Filters))
			for k, v := range iw.Filters {
				clone.InputWirings[i].Filters[k] = v
			}
		}
	}

	copy(clone.OutputWirings, w.OutputWirings)

	return clone
}
