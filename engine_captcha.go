package acauth

import (
	"context"

	"go.uber.org/zap"

	"github.com/realmkit/acauth/internal/rate"
)

// GenerateCaptcha mints a math challenge and returns its public half. With
// small probability the call also sweeps expired challenges from the store,
// so cleanup rides on traffic instead of a scheduler.
func (e *Engine) GenerateCaptcha(ctx context.Context) (*CaptchaPrompt, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := e.guard(ctx, rate.RouteCaptchaGenerate); err != nil {
		return nil, err
	}

	ch := e.captcha.newChallenge(timeNow())
	if err := e.captchaStore.Save(ctx, ch); err != nil {
		return nil, err
	}
	e.metrics.Inc(MetricCaptchaGenerated)

	if e.captcha.shouldSweep() {
		swept, err := e.captchaStore.SweepExpired(ctx, timeNow())
		if err != nil {
			e.log.Warn("captcha sweep failed", zap.Error(err))
		} else if swept > 0 {
			e.metrics.Add(MetricCaptchaSwept, uint64(swept))
			e.log.Debug("captcha sweep removed expired challenges", zap.Int("count", swept))
		}
	}

	return &CaptchaPrompt{ID: ch.ID, Question: ch.Question}, nil
}
