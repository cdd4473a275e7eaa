package opsserver

import (
	"encoding/json"
	"net/http"

	"github.com/tdcch/tdcch/pkg/stats"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	snap := stats.Global.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatsResponse{
		IPPsStored:       snap.IPPsStored,
		MergesPerformed:  snap.MergesPerformed,
		Approximations:   snap.Approximations,
		NodesSettled:     snap.NodesSettled,
		QueriesServed:    snap.QueriesServed,
		CustomizationRun: snap.CustomizationRun,
	})
}
