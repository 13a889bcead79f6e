package workers

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Job é uma varredura disparada periodicamente dentro do processo.
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// StartSchedulers inicia um ticker por job. Se a execução anterior ainda não
// terminou, o tick é descartado. Não coordena entre processos.
func StartSchedulers(ctx context.Context, jobs ...Job) {
	for _, job := range jobs {
		if job.Every <= 0 || job.Run == nil {
			continue
		}
		go runJob(ctx, job)
	}
}

func runJob(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Every)
	defer ticker.Stop()

	var running atomic.Bool
	log.Info().Str("job", job.Name).Dur("every", job.Every).Msg("scheduler: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("job", job.Name).Msg("scheduler: stopped")
			return
		case <-ticker.C:
			if !running.CompareAndSwap(false, true) {
				log.Warn().Str("job", job.Name).Msg("scheduler: previous run still active, skipping tick")
				continue
			}
			go func() {
				defer running.Store(false)
				if err := job.Run(ctx); err != nil {
					log.Error().Err(err).Str("job", job.Name).Msg("scheduler: run failed")
				}
			}()
		}
	}
}
