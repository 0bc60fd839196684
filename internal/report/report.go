// Package report builds and persists the JSON summary of a simulation
// run: the parameters it was given, the admission outcome for every
// flow, and (once the run either drains or times out) its completion
// status.
package report

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/google/uuid"

	"cqfsim/internal/colgen"
	"cqfsim/internal/config"
	"cqfsim/internal/domain"
)

// FlowResult is one flow's admission outcome.
type FlowResult struct {
	FlowID       int64    `json:"flow_id"`
	ArrivalRate  float64  `json:"arrival_rate"`
	BurstSize    float64  `json:"burst_size"`
	MaxE2EDelay  float64  `json:"max_e2e_delay"`
	MaxPktSize   float64  `json:"max_pkt_size"`
	Src          int64    `json:"src"`
	Dest         int64    `json:"dest"`
	Admitted     bool     `json:"admitted"`
	Path         []int64  `json:"path"`
	ShapingParam *float64 `json:"shaping_parameter"`
}

// NetworkSummary echoes the topology a run was given.
type NetworkSummary struct {
	Nodes         []int64            `json:"nodes"`
	Links         []config.LinkConfig `json:"links"`
	QueuingDelays map[string]float64 `json:"queuing_delays,omitempty"`
}

// Report is the full JSON document written for a simulation run. The
// completion-related fields are left unset until the run has either
// drained every admitted flow or hit the completion timeout.
type Report struct {
	RunID               string         `json:"run_id"`
	SimulationParameters map[string]any `json:"simulation_parameters"`
	Network             NetworkSummary `json:"network"`
	Flows               []FlowResult   `json:"flows"`
	AdmittedFlowsCount  int            `json:"admitted_flows_count"`
	TotalFlowsCount     int            `json:"total_flows_count"`

	SimulationComplete *bool            `json:"simulation_complete,omitempty"`
	CompletionStatus    map[string]bool `json:"completion_status,omitempty"`
	TimeoutReached      *bool           `json:"timeout_reached,omitempty"`
	IncompleteFlows     []int64         `json:"incomplete_flows,omitempty"`
	KeyboardInterrupt   *bool           `json:"keyboard_interrupt,omitempty"`
}

// Build assembles the pre-run portion of a report: parameters, the
// network as configured, and each flow's admission decision.
func Build(cfg *config.Config, flows []domain.Flow, result colgen.Result) *Report {
	admitted := make(map[int64]colgen.AdmittedFlow, len(result.Admitted))
	for _, a := range result.Admitted {
		admitted[a.FlowID] = a
	}

	flowResults := make([]FlowResult, 0, len(flows))
	for _, f := range flows {
		fr := FlowResult{
			FlowID:      f.FlowID,
			ArrivalRate: f.ArrivalRate,
			BurstSize:   f.BurstSize,
			MaxE2EDelay: f.MaxE2EDelay,
			MaxPktSize:  f.MaxPktSize,
			Src:         f.Src,
			Dest:        f.Dest,
		}
		if a, ok := admitted[f.FlowID]; ok {
			fr.Admitted = true
			fr.Path = a.Path
			shaping := a.ShapingParam
			fr.ShapingParam = &shaping
		}
		flowResults = append(flowResults, fr)
	}

	return &Report{
		RunID: uuid.NewString(),
		SimulationParameters: map[string]any{
			"cycle_duration_t": cfg.Simulation.CycleDurationUs,
		},
		Network: NetworkSummary{
			Nodes:         cfg.Network.Nodes,
			Links:         cfg.Network.Links,
			QueuingDelays: cfg.Network.QueuingDelays,
		},
		Flows:              flowResults,
		AdmittedFlowsCount: len(result.Admitted),
		TotalFlowsCount:    len(flows),
	}
}

// MarkCompleted records that every admitted flow finished before the
// completion timeout.
func (r *Report) MarkCompleted(status map[int64]bool) {
	complete := true
	r.SimulationComplete = &complete
	r.CompletionStatus = make(map[string]bool, len(status))
	for flowID, done := range status {
		r.CompletionStatus[strconv.FormatInt(flowID, 10)] = done
	}
}

// MarkTimedOut records that the completion timeout elapsed with flows
// still incomplete.
func (r *Report) MarkTimedOut(incomplete []int64) {
	complete := false
	timedOut := true
	r.SimulationComplete = &complete
	r.TimeoutReached = &timedOut
	r.IncompleteFlows = incomplete
}

// MarkInterrupted records that the run was stopped by a cancellation
// signal before completing or timing out.
func (r *Report) MarkInterrupted() {
	complete := false
	interrupted := true
	r.SimulationComplete = &complete
	r.KeyboardInterrupt = &interrupted
}

// WriteFile serializes the report as indented JSON to path.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
