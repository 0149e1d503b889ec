package types

// MutationMessage carries one mutated input to the executors.
type MutationMessage struct {
	SessionID   string   `json:"session_id"`
	Sequence    int      `json:"sequence"`
	NodeID      *int     `json:"node_id,omitempty"`
	Data        []byte   `json:"data"` // packed most significant bit first, base64 in JSON
	Bits        uint     `json:"bits"`
	Types       []string `json:"types"`
	ProbedStart uint     `json:"probed_start"`
	ProbedEnd   uint     `json:"probed_end"`
}
