// Package cron agenda as tarefas de manutenção periódicas.
package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ConviteSweeper expira em lote os convites pendentes vencidos.
type ConviteSweeper interface {
	ExpirarVencidos(ctx context.Context) (int64, error)
}

// Runner mantém o agendador do processo.
type Runner struct {
	c   *cron.Cron
	log zerolog.Logger
}

// NewRunner registra a varredura horária de convites. A expiração
// preguiçosa na leitura já cobre tokens consultados; a varredura apanha
// os que ninguém voltou a tocar.
func NewRunner(sweeper ConviteSweeper, log zerolog.Logger) (*Runner, error) {
	r := &Runner{c: cron.New(), log: log}

	_, err := r.c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := sweeper.ExpirarVencidos(ctx)
		if err != nil {
			r.log.Error().Err(err).Msg("varredura de convites falhou")
			return
		}
		if n > 0 {
			r.log.Info().Int64("expirados", n).Msg("convites vencidos expirados")
		}
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Start inicia o agendador em background.
func (r *Runner) Start() {
	r.c.Start()
}

// Stop interrompe novas execuções e espera as em andamento.
func (r *Runner) Stop() {
	ctx := r.c.Stop()
	<-ctx.Done()
}
