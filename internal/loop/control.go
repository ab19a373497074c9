package loop

import (
	"math"

	"github.com/tomz197/lunardefender/internal/input"
	"github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/object"
	"github.com/tomz197/lunardefender/internal/physics"
)

// FireResult explains the outcome of a fire attempt. A refused shot is not
// an error.
type FireResult int

const (
	FireOK       FireResult = iota
	FireCooldown            // Previous shot too recent
	FireNoEnergy            // Energy below the laser cost
	FireInactive            // Mission not running
)

func (r FireResult) String() string {
	switch r {
	case FireOK:
		return "fired"
	case FireCooldown:
		return "cooldown"
	case FireNoEnergy:
		return "no energy"
	case FireInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// applyControl turns held input into player motion, view rotation and
// shots. Forward motion along Z is absorbed by the scroll offset: the
// player stays at Z=0 and the ground slides past.
func (g *Game) applyControl(now int64, in input.Input) {
	p := g.sim.Player

	dYaw := in.LookDX * g.tun.LookSpeed
	dPitch := -in.LookDY * g.tun.LookSpeed
	if in.LookLeft {
		dYaw -= g.tun.LookKeyRadian
	}
	if in.LookRight {
		dYaw += g.tun.LookKeyRadian
	}
	if in.LookUp {
		dPitch += g.tun.LookKeyRadian
	}
	if in.LookDown {
		dPitch -= g.tun.LookKeyRadian
	}
	if dYaw != 0 || dPitch != 0 {
		p.Look(dYaw, dPitch)
	}

	var fwd, strafe float64
	if in.Forward {
		fwd++
	}
	if in.Back {
		fwd--
	}
	if in.Right {
		strafe++
	}
	if in.Left {
		strafe--
	}
	if fwd != 0 || strafe != 0 {
		sin, cos := math.Sincos(p.Yaw)
		dx := (sin*fwd + cos*strafe) * g.tun.MoveSpeed
		dz := (cos*fwd - sin*strafe) * g.tun.MoveSpeed
		p.Pos.X = physics.Clamp(p.Pos.X+dx, -config.FieldHalfWidth, config.FieldHalfWidth)
		g.sim.Scroll -= dz
	}

	canThrust := p.Energy > 0 || g.tun.ThrustEnergyDrain == 0
	if canThrust && in.Ascend != in.Descend {
		climb := g.tun.ClimbSpeed
		if in.Descend {
			climb = -climb
		}
		p.Pos.Y = physics.Clamp(p.Pos.Y+climb, config.MinAltitude, config.MaxAltitude)
	}

	if in.Fire {
		g.TryFire(now)
	}

	g.scene.SetPlayerTransform(Transform{Pos: p.Pos, Yaw: p.Yaw, Pitch: p.Pitch})
}

// TryFire launches a laser along the view direction if the cooldown has
// elapsed and enough energy remains. Refusals leave all state unchanged.
func (g *Game) TryFire(now int64) FireResult {
	if g.state != StateRunning {
		return FireInactive
	}
	p := g.sim.Player
	if !p.CanShoot(now, g.tun.ShootCooldownMs) {
		return FireCooldown
	}
	if p.Energy < g.tun.LaserEnergyCost {
		return FireNoEnergy
	}

	p.Energy = physics.Clamp(p.Energy-g.tun.LaserEnergyCost, 0, config.MaxEnergy)
	p.RecordShot(now)

	laser := object.NewLaser(g.sim.NewID(), p.Pos, p.Forward(), g.tun.LaserSpeed)
	g.sim.Lasers = append(g.sim.Lasers, laser)
	g.track(laser)

	g.presenter.OnLaserFired(p.Pos)
	g.presenter.OnEnergyChanged(percent(p.Energy, config.MaxEnergy))
	return FireOK
}
