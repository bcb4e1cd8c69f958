// Package runner executes the configured sequence of client steps against a cluster.
package runner

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/config"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/ecom"
)

// Cluster is the connection-level surface used before the ecom service takes over.
type Cluster interface {
	Connect(ctx context.Context) (string, error)
	EstimateFunding(ctx context.Context, accountSize uint64) (uint64, error)
	EnsureFunded(ctx context.Context, payer solana.PublicKey, required uint64) (uint64, error)
}

// Step is one named stage of a run.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner stops at the first failing step; there is no retry.
type Runner struct {
	cluster Cluster
	service *ecom.Service
	cfg     *config.Config
	log     zerolog.Logger
}

func New(cluster Cluster, service *ecom.Service, cfg *config.Config, log zerolog.Logger) *Runner {
	return &Runner{cluster: cluster, service: service, cfg: cfg, log: log}
}

// Steps lists the stages enabled by the configuration, in execution order.
func (r *Runner) Steps() []Step {
	st := r.cfg.Steps
	steps := []Step{
		{"connect", r.connect},
		{"fund_payer", r.fund},
		{"check_ecom_program", r.service.CheckEcomProgram},
		{"set_address_program", r.service.SetAddressProgram},
	}
	if st.InitAddress {
		steps = append(steps, Step{"init_address", func(ctx context.Context) error {
			_, err := r.service.InitializeAddressAccount(ctx)
			return err
		}})
	}
	if st.UpdateAddress {
		steps = append(steps, Step{"update_address", func(ctx context.Context) error {
			_, err := r.service.UpdateAddress(ctx, st.Address)
			return err
		}})
	}
	if st.ReadAddress {
		steps = append(steps, Step{"read_address", func(ctx context.Context) error {
			_, err := r.service.GetAddress(ctx)
			return err
		}})
	}
	if !st.SetupProfile {
		return steps
	}
	steps = append(steps, Step{"set_profile_program", r.service.SetProfileProgram})
	if st.InitProfile {
		steps = append(steps, Step{"init_profile", func(ctx context.Context) error {
			_, err := r.service.InitializeProfileAccount(ctx)
			return err
		}})
	}
	if st.UpdateProfile {
		p := st.Profile
		steps = append(steps, Step{"update_profile", func(ctx context.Context) error {
			_, err := r.service.UpdateProfile(ctx, p.Name, p.Date, p.Month, p.Year)
			return err
		}})
	}
	if st.ReadProfile {
		steps = append(steps, Step{"read_profile", func(ctx context.Context) error {
			_, err := r.service.GetProfile(ctx)
			return err
		}})
	}
	return steps
}

// Run executes every enabled step in order.
func (r *Runner) Run(ctx context.Context) error {
	for _, step := range r.Steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.log.Debug().Str("step", step.Name).Msg("step start")
		if err := step.Run(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}

func (r *Runner) connect(ctx context.Context) error {
	version, err := r.cluster.Connect(ctx)
	if err != nil {
		return err
	}
	r.log.Info().Str("rpc", r.cfg.Cluster.RpcURL).Str("version", version).Msg("connection to cluster established")
	return nil
}

func (r *Runner) fund(ctx context.Context) error {
	required, err := r.cluster.EstimateFunding(ctx, r.cfg.Cluster.AccountSize)
	if err != nil {
		return err
	}
	_, err = r.cluster.EnsureFunded(ctx, r.service.Payer(), required)
	return err
}
