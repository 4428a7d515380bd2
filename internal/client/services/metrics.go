package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authOperationsTotal counts register/login calls by serving path and outcome.
	authOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskkeeper_auth_operations_total",
		Help: "Authentication operations by source and result",
	}, []string{"operation", "source", "result"})

	// authFallbackTotal counts remote failures that sent a call to the local store.
	authFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskkeeper_auth_remote_fallback_total",
		Help: "Remote failures that fell back to the local store",
	}, []string{"operation"})

	// syncReplayTotal counts replayed pending operations.
	syncReplayTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskkeeper_auth_sync_replay_total",
		Help: "Pending operations replayed against the remote service",
	}, []string{"result"}) // "ok" or "failed"

	pendingOperationsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskkeeper_auth_pending_operations",
		Help: "Operations waiting for replay",
	})

	serverAvailableGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskkeeper_auth_server_available",
		Help: "1 when the remote service answered the last probe",
	})
)

const (
	resultOK     = "ok"
	resultFailed = "failed"
)
