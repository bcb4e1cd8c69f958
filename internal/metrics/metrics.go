package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rpc_requests_total", Help: "Cluster RPC calls by method and outcome"},
		[]string{"method", "status"},
	)
	InstructionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "instructions_total", Help: "Ecom instructions confirmed on chain"},
		[]string{"kind"},
	)
	AirdropLamportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "airdrop_lamports_total", Help: "Lamports requested through airdrops"},
	)
)

func init() {
	prometheus.MustRegister(RPCRequestsTotal, InstructionsTotal, AirdropLamportsTotal)
}

// ObserveRPC counts one RPC call, labelled ok or error.
func ObserveRPC(method string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RPCRequestsTotal.WithLabelValues(method, status).Inc()
}

// Serve exposes /metrics on addr; an empty addr disables the listener.
func Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
