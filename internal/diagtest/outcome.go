package diagtest

// Outcome pairs a test's result record with its human-readable rendering.
// Outcomes are recorded by the orchestrator in completion order and consumed
// verbatim by the report assembler.
type Outcome struct {
	Result    Result `json:"result"`
	Formatted string `json:"formatted"`
}
