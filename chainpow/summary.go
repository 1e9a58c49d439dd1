package main

// MethodSummary stores the result of one computation method.
type MethodSummary struct {
	// Method is direct or eigen.
	Method string `json:"method"`
	// Seconds is the computation time in seconds.
	Seconds float64 `json:"seconds"`
	// Cached is true if the result came from the cache.
	Cached bool `json:"cached"`
}

// RunSummary is storing chainpow run summary information.
type RunSummary struct {
	// Version stores chainpow version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// N is the computed power.
	N uint64 `json:"n"`
	// Sum is true for power-sum mode.
	Sum bool `json:"sum"`
	// NStates is the number of chain states.
	NStates int `json:"nStates"`
	// Methods stores per-method results.
	Methods []MethodSummary `json:"methods"`
	// MaxDiff is the maximum element difference between the two
	// methods, only set if both were run.
	MaxDiff *float64 `json:"maxDiff,omitempty"`
	// SLEM is the second largest eigenvalue modulus, only set for
	// the eigen method.
	SLEM *float64 `json:"slem,omitempty"`
	// Time is the total running time in seconds.
	Time float64 `json:"time"`
}
