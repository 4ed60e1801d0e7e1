package seed

import "github.com/latoulicious/vtmsu/pkg/database/models"

// The fill functions copy a catalog entry onto a row and report whether
// anything changed.

func fillFaction(f *models.Faction, e Faction) bool {
	changed := f.Icon != e.Icon || f.Content != e.Content || f.VisibleToPlayer != e.Visible
	f.Icon, f.Content, f.VisibleToPlayer = e.Icon, e.Content, e.Visible
	return changed
}

func fillClan(c *models.Clan, e Clan) bool {
	changed := c.Icon != e.Icon || c.Content != e.Content || c.VisibleToPlayer != e.Visible
	c.Icon, c.Content, c.VisibleToPlayer = e.Icon, e.Content, e.Visible
	return changed
}

func fillAbility(a *models.Ability, e Ability) bool {
	changed := a.Icon != e.Icon || a.Content != e.Content ||
		a.Expertise != e.Expertise || a.VisibleToPlayer != e.Visible
	a.Icon, a.Content, a.Expertise, a.VisibleToPlayer = e.Icon, e.Content, e.Expertise, e.Visible
	return changed
}

func fillFeature(f *models.Feature, e Feature) bool {
	changed := !sameInt(f.Cost, e.Cost) || f.Content != e.Content || f.VisibleToPlayer != e.Visible
	f.Cost, f.Content, f.VisibleToPlayer = e.Cost, e.Content, e.Visible
	return changed
}

func fillGround(g *models.HuntingGround, e Ground) bool {
	minInst := orDefault(e.MinInst, 0)
	delay := orDefault(e.Delay, 3600)

	changed := !sameInt(g.Radius, e.Radius) ||
		!sameInt(g.MinInst, minInst) ||
		!sameInt(g.MaxInst, e.MaxInst) ||
		!sameInt(g.Delay, delay) ||
		!sameFloat(g.CoordY, e.Lat) ||
		!sameFloat(g.CoordX, e.Lng) ||
		g.Content != e.Content

	g.Radius, g.MaxInst, g.Content = e.Radius, e.MaxInst, e.Content
	g.CoordY, g.CoordX = e.Lat, e.Lng
	g.MinInst, g.Delay = minInst, delay
	return changed
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func orDefault(v *int, def int) *int {
	if v == nil {
		return &def
	}
	return v
}
