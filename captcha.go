package acauth

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// captchaGenerator builds math challenges. Deliberately a low-security human
// check: it blunts scripted registration and reset abuse, nothing more.
type captchaGenerator struct {
	ttl         time.Duration
	sweepChance int
}

func newCaptchaGenerator(cfg CaptchaConfig) *captchaGenerator {
	return &captchaGenerator{ttl: cfg.TTL, sweepChance: cfg.SweepChance}
}

// newChallenge picks two operands in [1,10] and addition or multiplication.
// The stored answer is the exact decimal text of the result.
func (g *captchaGenerator) newChallenge(now time.Time) *CaptchaChallenge {
	a := rand.IntN(10) + 1
	b := rand.IntN(10) + 1

	op := "+"
	result := a + b
	if rand.IntN(2) == 1 {
		op = "*"
		result = a * b
	}

	return &CaptchaChallenge{
		ID:        uuid.NewString(),
		Question:  "What is " + strconv.Itoa(a) + " " + op + " " + strconv.Itoa(b) + "?",
		Answer:    strconv.Itoa(result),
		CreatedAt: now,
		ExpiresAt: now.Add(g.ttl),
	}
}

// shouldSweep rolls the opportunistic-sweep dice for one Generate call.
func (g *captchaGenerator) shouldSweep() bool {
	return g.sweepChance > 0 && rand.IntN(g.sweepChance) == 0
}
