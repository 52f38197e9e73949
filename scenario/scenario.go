// Package scenario generates the initial state of a flock.
//
// All randomness comes from the generator passed by the caller,
// so a scenario is reproducible given its seed.
package scenario

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/PrincetonUniversity/boids"
	"github.com/PrincetonUniversity/boids/config"
)

// NewRand returns a generator seeded with seed, or with the clock if seed is 0.
// It also returns the seed actually used so that runs can be replayed.
func NewRand(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// States returns the initial states of conf.FlockSize boids with ids 0..n-1.
func States(rng *rand.Rand, conf *config.Config) ([]boids.State, error) {
	var place func(*rand.Rand, int, float64) boids.Vector
	switch conf.Spawn {
	case "box":
		place = inBox
	case "disc":
		place = inBall
	default:
		return nil, fmt.Errorf("scenario: bad spawn type %q", conf.Spawn)
	}

	tmpl := conf.Template()
	states := make([]boids.State, conf.FlockSize)
	for i := range states {
		s := tmpl
		s.ID = boids.AgentID(i)
		s.Position = place(rng, conf.Dim, conf.PositionRange)

		// a boid without heading cannot perceive: draw again
		for s.Velocity.IsZero() {
			s.Velocity = place(rng, conf.Dim, conf.VelocityRange)
		}
		states[i] = s
	}
	return states, nil
}

// Flock builds a ready to run flock from conf.
func Flock(rng *rand.Rand, conf *config.Config, opts ...boids.Option) (*boids.Flock, error) {
	states, err := States(rng, conf)
	if err != nil {
		return nil, err
	}
	bs := make([]*boids.Boid, len(states))
	for i, s := range states {
		if bs[i], err = boids.NewBoid(s); err != nil {
			return nil, err
		}
	}
	return boids.NewFlock(bs, append([]boids.Option{boids.WithWorkers(conf.Workers)}, opts...)...)
}

// inBox draws a point uniformly in [-r, r]^dim.
func inBox(rng *rand.Rand, dim int, r float64) boids.Vector {
	v := boids.Zero(dim)
	for i := range v {
		v[i] = r * (2*rng.Float64() - 1)
	}
	return v
}

// inBall draws a point uniformly in the ball of radius r.
func inBall(rng *rand.Rand, dim int, r float64) boids.Vector {
	dir := boids.Zero(dim)
	for dir.IsZero() {
		for i := range dir {
			dir[i] = rng.NormFloat64()
		}
	}
	u, _ := boids.Normalize(dir)
	return boids.Scale(u, r*math.Pow(rng.Float64(), 1/float64(dim)))
}
