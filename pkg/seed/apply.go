package seed

import (
	"context"
	"fmt"

	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
)

// Stats counts what Apply wrote. Linked counts every clan link and
// availability the catalog asks for, including those already present.
type Stats struct {
	Created int
	Updated int
	Linked  int
}

type seeder struct {
	factions *repository.FactionRepository
	traits   *repository.TraitRepository
	hunting  *repository.HuntingRepository
	stats    Stats

	factionIDs map[string]int
	abilityIDs map[string]int
	featureIDs map[string]int
}

// Apply writes the catalog in one transaction. Rows are matched by name, so
// applying the same catalog twice leaves the database unchanged.
func Apply(ctx context.Context, db *gorm.DB, catalog *Catalog) (Stats, error) {
	if err := catalog.Validate(); err != nil {
		return Stats{}, err
	}

	logger := logging.GetGlobalLoggerFactory().CreateLogger("seed")

	var stats Stats
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s := &seeder{
			factions:   repository.NewFactionRepository(tx),
			traits:     repository.NewTraitRepository(tx),
			hunting:    repository.NewHuntingRepository(tx),
			factionIDs: make(map[string]int),
			abilityIDs: make(map[string]int),
			featureIDs: make(map[string]int),
		}

		steps := []struct {
			name string
			run  func(context.Context, *Catalog) error
		}{
			{"factions", s.applyFactions},
			{"abilities", s.applyAbilities},
			{"features", s.applyFeatures},
			{"clans", s.applyClans},
			{"targets", s.applyTargets},
			{"grounds", s.applyGrounds},
		}
		for _, step := range steps {
			if err := step.run(ctx, catalog); err != nil {
				return fmt.Errorf("seed %s: %w", step.name, err)
			}
		}
		stats = s.stats
		return nil
	})
	if err != nil {
		logger.Error("Seeding failed", err, nil)
		return Stats{}, err
	}

	logger.Info("Catalog applied", map[string]interface{}{
		"created": stats.Created,
		"updated": stats.Updated,
		"linked":  stats.Linked,
	})
	return stats, nil
}

func (s *seeder) applyFactions(ctx context.Context, c *Catalog) error {
	for _, entry := range c.Factions {
		faction, err := s.factions.GetFactionByName(ctx, entry.Name)
		switch {
		case repository.IsNotFound(err):
			faction = &models.Faction{Name: entry.Name}
			fillFaction(faction, entry)
			if err := s.factions.CreateFaction(ctx, faction); err != nil {
				return err
			}
			s.stats.Created++
		case err != nil:
			return err
		default:
			if fillFaction(faction, entry) {
				if err := s.factions.UpdateFaction(ctx, faction); err != nil {
					return err
				}
				s.stats.Updated++
			}
		}
		s.factionIDs[entry.Name] = faction.ID
	}
	return nil
}

func (s *seeder) applyAbilities(ctx context.Context, c *Catalog) error {
	for _, entry := range c.Abilities {
		ability, err := s.traits.GetAbilityByName(ctx, entry.Name)
		switch {
		case repository.IsNotFound(err):
			ability = &models.Ability{Name: entry.Name}
			fillAbility(ability, entry)
			if err := s.traits.CreateAbility(ctx, ability); err != nil {
				return err
			}
			s.stats.Created++
		case err != nil:
			return err
		default:
			if fillAbility(ability, entry) {
				if err := s.traits.UpdateAbility(ctx, ability); err != nil {
					return err
				}
				s.stats.Updated++
			}
		}
		s.abilityIDs[entry.Name] = ability.ID
	}
	return nil
}

func (s *seeder) applyFeatures(ctx context.Context, c *Catalog) error {
	for _, entry := range c.Features {
		feature, err := s.traits.GetFeatureByName(ctx, entry.Name)
		switch {
		case repository.IsNotFound(err):
			feature = &models.Feature{Name: entry.Name}
			fillFeature(feature, entry)
			if err := s.traits.CreateFeature(ctx, feature); err != nil {
				return err
			}
			s.stats.Created++
		case err != nil:
			return err
		default:
			if fillFeature(feature, entry) {
				if err := s.traits.UpdateFeature(ctx, feature); err != nil {
					return err
				}
				s.stats.Updated++
			}
		}
		s.featureIDs[entry.Name] = feature.ID
	}
	return nil
}

func (s *seeder) applyClans(ctx context.Context, c *Catalog) error {
	for _, entry := range c.Clans {
		clan, err := s.factions.GetClanByName(ctx, entry.Name)
		switch {
		case repository.IsNotFound(err):
			clan = &models.Clan{Name: entry.Name}
			fillClan(clan, entry)
			if err := s.factions.CreateClan(ctx, clan); err != nil {
				return err
			}
			s.stats.Created++
		case err != nil:
			return err
		default:
			if fillClan(clan, entry) {
				if err := s.factions.UpdateClan(ctx, clan); err != nil {
					return err
				}
				s.stats.Updated++
			}
		}

		if err := s.linkClan(ctx, clan, entry); err != nil {
			return err
		}
	}
	return nil
}

// linkClan adds the faction links and trait availability of a clan. Links
// missing from the catalog are kept.
func (s *seeder) linkClan(ctx context.Context, clan *models.Clan, entry Clan) error {
	for _, name := range entry.Factions {
		if _, err := s.factions.AddClanToFaction(ctx, clan.ID, s.factionIDs[name]); err != nil {
			return err
		}
		s.stats.Linked++
	}
	for _, name := range entry.Abilities {
		if _, err := s.traits.MakeAbilityAvailable(ctx, s.abilityIDs[name], clan.ID); err != nil {
			return err
		}
		s.stats.Linked++
	}
	for _, name := range entry.Features {
		if _, err := s.traits.MakeFeatureAvailable(ctx, s.featureIDs[name], clan.ID); err != nil {
			return err
		}
		s.stats.Linked++
	}
	return nil
}

func (s *seeder) applyTargets(ctx context.Context, c *Catalog) error {
	for _, entry := range c.Targets {
		target, err := s.hunting.GetTargetByName(ctx, entry.Name)
		switch {
		case repository.IsNotFound(err):
			target = &models.HuntingData{Name: entry.Name, Image: entry.Image, HuntReq: entry.HuntReq}
			if err := s.hunting.CreateTarget(ctx, target); err != nil {
				return err
			}
			s.stats.Created++
		case err != nil:
			return err
		default:
			if target.Image != entry.Image || target.HuntReq != entry.HuntReq {
				target.Image, target.HuntReq = entry.Image, entry.HuntReq
				if err := s.hunting.UpdateTarget(ctx, target); err != nil {
					return err
				}
				s.stats.Updated++
			}
		}

		if err := s.applyDescriptions(ctx, target.ID, entry.Descriptions); err != nil {
			return err
		}
	}
	return nil
}

// applyDescriptions matches descriptions by remains
func (s *seeder) applyDescriptions(ctx context.Context, targetID int, entries []Description) error {
	existing, err := s.hunting.DescriptionsOf(ctx, targetID)
	if err != nil {
		return err
	}
	byRemains := make(map[int]*models.HuntingDescription, len(existing))
	for i := range existing {
		if existing[i].Remains != nil {
			byRemains[*existing[i].Remains] = &existing[i]
		}
	}

	for _, entry := range entries {
		desc, ok := byRemains[entry.Remains]
		if !ok {
			remains := entry.Remains
			desc = &models.HuntingDescription{TargetID: targetID, Remains: &remains, Content: entry.Content}
			if err := s.hunting.CreateDescription(ctx, desc); err != nil {
				return err
			}
			s.stats.Created++
			continue
		}
		if desc.Content != entry.Content {
			desc.Content = entry.Content
			if err := s.hunting.UpdateDescription(ctx, desc); err != nil {
				return err
			}
			s.stats.Updated++
		}
	}
	return nil
}

func (s *seeder) applyGrounds(ctx context.Context, c *Catalog) error {
	for _, entry := range c.Grounds {
		ground, err := s.hunting.GetGroundByName(ctx, entry.Name)
		switch {
		case repository.IsNotFound(err):
			ground = &models.HuntingGround{Name: entry.Name}
			fillGround(ground, entry)
			if err := s.hunting.CreateGround(ctx, ground); err != nil {
				return err
			}
			s.stats.Created++
		case err != nil:
			return err
		default:
			if fillGround(ground, entry) {
				if err := s.hunting.UpdateGround(ctx, ground); err != nil {
					return err
				}
				s.stats.Updated++
			}
		}
	}
	return nil
}
