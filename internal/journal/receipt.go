// Package journal keeps receipts of instructions submitted to the ecom program.
package journal

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// Receipt describes one submission that reached the cluster. Error is set when Status is failed.
type Receipt struct {
	Kind       string    `json:"kind"`
	Tag        uint8     `json:"tag"`
	Program    string    `json:"program"`
	Account    string    `json:"account"`
	Signature  string    `json:"signature"`
	PayloadLen int       `json:"payload_len"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Ts         time.Time `json:"ts"`
}

// Recorder captures receipts for later inspection.
type Recorder interface {
	Record(Receipt)
}

// Multi fans a receipt out to every recorder.
type Multi []Recorder

func (m Multi) Record(r Receipt) {
	for _, rec := range m {
		if rec != nil {
			rec.Record(r)
		}
	}
}
