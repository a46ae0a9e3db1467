package pile

import (
	"fmt"
	"math"
	"time"
)

// Tuning constants. They were picked by feel and are free to change;
// NewWorld only insists that boundaries stay thicker than one step of travel.
const (
	// DefaultGravity pulls down at roughly 1 g for a page measured in pixels.
	DefaultGravity = 1000.0
	// DefaultDamping is the fraction of velocity a body keeps after a second of flight.
	DefaultDamping = 0.6

	DefaultTick         = time.Second / 60
	DefaultMaxFrameTime = 200 * time.Millisecond

	DefaultIterations         = 12
	DefaultPositionIterations = 10
	MinIterations             = 10

	DefaultCollisionSlop      = 0.5
	DefaultCorrectionFraction = 0.4
	DefaultMaxCorrection      = 8.0
	DefaultBounceThreshold    = 40.0
	DefaultMaxSpeed           = 3000.0

	DefaultSleepSpeed        = 4.0
	DefaultSleepAngularSpeed = 0.05
	DefaultSleepTime         = 0.5
	DefaultWakeSpeed         = 60.0

	DefaultCellSize  = 160.0
	DefaultHashCells = 1031

	DefaultFloorThickness = 2000.0
	DefaultWallThickness  = 200.0
)

// Options tunes the simulation. Start from DefaultOptions.
type Options struct {
	// Gravity in px/s², y down.
	Gravity Vector `yaml:"gravity"`
	// Damping is the fraction of linear and angular velocity kept per second.
	Damping float64 `yaml:"damping"`

	// Tick is the fixed step a Handle advances the world by.
	Tick time.Duration `yaml:"tick"`
	// MaxFrameTime caps the real time a Handle catches up on at once.
	MaxFrameTime time.Duration `yaml:"maxFrameTime"`

	// Iterations is the number of velocity solver passes per step.
	Iterations int `yaml:"iterations"`
	// PositionIterations is the number of overlap correction passes per step.
	PositionIterations int `yaml:"positionIterations"`

	// CollisionSlop is the overlap left alone so resting contacts stay in touch.
	CollisionSlop float64 `yaml:"collisionSlop"`
	// CorrectionFraction of the remaining overlap is removed per position pass.
	CorrectionFraction float64 `yaml:"correctionFraction"`
	// MaxCorrection caps the distance a position pass may move a pair apart.
	MaxCorrection float64 `yaml:"maxCorrection"`
	// BounceThreshold is the approach speed below which contacts don't bounce.
	BounceThreshold float64 `yaml:"bounceThreshold"`
	// MaxSpeed caps linear speed. Boundaries must be thicker than MaxSpeed·Tick.
	MaxSpeed float64 `yaml:"maxSpeed"`

	SleepSpeed        float64 `yaml:"sleepSpeed"`
	SleepAngularSpeed float64 `yaml:"sleepAngularSpeed"`
	// SleepTime is how long a body must idle before it sleeps. +Inf disables sleeping.
	SleepTime float64 `yaml:"sleepTime"`
	// WakeSpeed is how fast a body must hit a sleeping one to wake it.
	WakeSpeed float64 `yaml:"wakeSpeed"`

	CellSize  float64 `yaml:"cellSize"`
	HashCells int     `yaml:"hashCells"`

	FloorThickness float64  `yaml:"floorThickness"`
	WallThickness  float64  `yaml:"wallThickness"`
	Boundary       Material `yaml:"boundary"`
}

func DefaultOptions() Options {
	return Options{
		Gravity:            Vector{0, DefaultGravity},
		Damping:            DefaultDamping,
		Tick:               DefaultTick,
		MaxFrameTime:       DefaultMaxFrameTime,
		Iterations:         DefaultIterations,
		PositionIterations: DefaultPositionIterations,
		CollisionSlop:      DefaultCollisionSlop,
		CorrectionFraction: DefaultCorrectionFraction,
		MaxCorrection:      DefaultMaxCorrection,
		BounceThreshold:    DefaultBounceThreshold,
		MaxSpeed:           DefaultMaxSpeed,
		SleepSpeed:         DefaultSleepSpeed,
		SleepAngularSpeed:  DefaultSleepAngularSpeed,
		SleepTime:          DefaultSleepTime,
		WakeSpeed:          DefaultWakeSpeed,
		CellSize:           DefaultCellSize,
		HashCells:          DefaultHashCells,
		FloorThickness:     DefaultFloorThickness,
		WallThickness:      DefaultWallThickness,
		// Walls give back whatever the body brings; the body's own material decides.
		Boundary: Material{Restitution: 1, Friction: 1},
	}
}

func (o Options) Validate() error {
	bad := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfiguration}, args...)...)
	}

	switch {
	case !o.Gravity.IsFinite():
		return bad("gravity %v", o.Gravity)
	case !isFinite(o.Damping) || o.Damping <= 0 || o.Damping > 1:
		return bad("damping %v not in (0, 1]", o.Damping)
	case o.Tick <= 0:
		return bad("tick %v", o.Tick)
	case o.MaxFrameTime < o.Tick:
		return bad("max frame time %v shorter than tick %v", o.MaxFrameTime, o.Tick)
	case o.Iterations < MinIterations:
		return bad("iterations %d below %d", o.Iterations, MinIterations)
	case o.PositionIterations < MinIterations:
		return bad("position iterations %d below %d", o.PositionIterations, MinIterations)
	case !isFinite(o.CollisionSlop) || o.CollisionSlop < 0:
		return bad("collision slop %v", o.CollisionSlop)
	case !isFinite(o.CorrectionFraction) || o.CorrectionFraction <= 0 || o.CorrectionFraction > 1:
		return bad("correction fraction %v not in (0, 1]", o.CorrectionFraction)
	case !isFinite(o.MaxCorrection) || o.MaxCorrection <= 0:
		return bad("max correction %v", o.MaxCorrection)
	case !isFinite(o.BounceThreshold) || o.BounceThreshold < 0:
		return bad("bounce threshold %v", o.BounceThreshold)
	case !isFinite(o.MaxSpeed) || o.MaxSpeed <= 0:
		return bad("max speed %v", o.MaxSpeed)
	case o.SleepSpeed < 0 || o.SleepAngularSpeed < 0 || o.WakeSpeed < 0 || math.IsNaN(o.SleepTime) || o.SleepTime <= 0:
		return bad("sleep thresholds")
	case !isFinite(o.CellSize) || o.CellSize <= 0 || o.HashCells <= 0:
		return bad("cell size %v, %d cells", o.CellSize, o.HashCells)
	}

	step := o.MaxSpeed * o.Tick.Seconds()
	if !(o.FloorThickness > step) || !(o.WallThickness > step) || !isFinite(o.FloorThickness) || !isFinite(o.WallThickness) {
		return bad("boundaries (floor %v, walls %v) must be thicker than one step of travel (%v)",
			o.FloorThickness, o.WallThickness, step)
	}
	return nil
}
