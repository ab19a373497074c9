package loop

import "github.com/tomz197/lunardefender/internal/loop/config"

// updateEconomy drains energy for held vertical thrust, then recharges.
func (g *Game) updateEconomy(thrusting bool) {
	p := g.sim.Player
	before := p.Energy

	if thrusting {
		p.Energy -= g.tun.ThrustEnergyDrain
		if p.Energy < 0 {
			p.Energy = 0
		}
	}
	p.Energy += g.tun.EnergyRechargeRate
	if p.Energy > config.MaxEnergy {
		p.Energy = config.MaxEnergy
	}

	if p.Energy != before {
		g.presenter.OnEnergyChanged(percent(p.Energy, config.MaxEnergy))
	}
}
