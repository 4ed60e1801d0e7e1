package repository

import (
	"context"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
)

// FactionRepository handles factions, clans and the clan/faction links
type FactionRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewFactionRepository(db *gorm.DB) *FactionRepository {
	return &FactionRepository{db: db, logger: repoLogger("faction")}
}

// WithTransaction runs fn with a repository bound to one transaction
func (r *FactionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo *FactionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &FactionRepository{db: tx, logger: r.logger})
	})
}

func (r *FactionRepository) CreateFaction(ctx context.Context, faction *models.Faction) error {
	return database.Classify(r.db.WithContext(ctx).Create(faction).Error)
}

// GetFaction returns a faction with its clans
func (r *FactionRepository) GetFaction(ctx context.Context, id int) (*models.Faction, error) {
	return first[models.Faction](ctx, r.db.Preload("ClanInFaction.Clan"), id)
}

func (r *FactionRepository) GetFactionByName(ctx context.Context, name string) (*models.Faction, error) {
	return first[models.Faction](ctx, r.db, eq("name", name))
}

func (r *FactionRepository) ListFactions(ctx context.Context) ([]models.Faction, error) {
	var factions []models.Faction
	if err := r.db.WithContext(ctx).Order(orderBy("name", false)).Find(&factions).Error; err != nil {
		return nil, database.Classify(err)
	}
	return factions, nil
}

// VisibleFactions lists the factions players may see, with their visible clans
func (r *FactionRepository) VisibleFactions(ctx context.Context) ([]models.Faction, error) {
	var factions []models.Faction
	if err := r.db.WithContext(ctx).
		Preload("ClanInFaction.Clan", eq("visibleToPlayer", true)).
		Where(eq("visibleToPlayer", true)).
		Order(orderBy("name", false)).
		Find(&factions).Error; err != nil {
		return nil, database.Classify(err)
	}
	return factions, nil
}

func (r *FactionRepository) UpdateFaction(ctx context.Context, faction *models.Faction) error {
	return update(ctx, r.db, faction)
}

// DeleteFaction removes a faction; its clan links are removed and its
// characters lose their faction
func (r *FactionRepository) DeleteFaction(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Faction{}, id)
}

func (r *FactionRepository) CreateClan(ctx context.Context, clan *models.Clan) error {
	return database.Classify(r.db.WithContext(ctx).Create(clan).Error)
}

// GetClan returns a clan with its factions
func (r *FactionRepository) GetClan(ctx context.Context, id int) (*models.Clan, error) {
	return first[models.Clan](ctx, r.db.Preload("ClanInFaction.Faction"), id)
}

func (r *FactionRepository) GetClanByName(ctx context.Context, name string) (*models.Clan, error) {
	return first[models.Clan](ctx, r.db, eq("name", name))
}

func (r *FactionRepository) ListClans(ctx context.Context) ([]models.Clan, error) {
	var clans []models.Clan
	if err := r.db.WithContext(ctx).Order(orderBy("name", false)).Find(&clans).Error; err != nil {
		return nil, database.Classify(err)
	}
	return clans, nil
}

// VisibleClans lists the clans players may see
func (r *FactionRepository) VisibleClans(ctx context.Context) ([]models.Clan, error) {
	var clans []models.Clan
	if err := r.db.WithContext(ctx).
		Where(eq("visibleToPlayer", true)).
		Order(orderBy("name", false)).
		Find(&clans).Error; err != nil {
		return nil, database.Classify(err)
	}
	return clans, nil
}

func (r *FactionRepository) UpdateClan(ctx context.Context, clan *models.Clan) error {
	return update(ctx, r.db, clan)
}

// DeleteClan removes a clan; its links and availabilities are removed and
// its characters lose their clan
func (r *FactionRepository) DeleteClan(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Clan{}, id)
}

// AddClanToFaction links a clan to a faction. Linking an already linked pair
// returns the existing link.
func (r *FactionRepository) AddClanToFaction(ctx context.Context, clanID, factionID int) (*models.ClanInFaction, error) {
	link, err := first[models.ClanInFaction](ctx, r.db, eq("clanId", clanID), eq("factionId", factionID))
	if err == nil {
		return link, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	link = &models.ClanInFaction{ClanID: clanID, FactionID: factionID}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, database.Classify(err)
	}
	r.logger.Debug("Clan linked to faction", map[string]interface{}{
		"clan_id":    clanID,
		"faction_id": factionID,
	})
	return link, nil
}

func (r *FactionRepository) RemoveClanFromFaction(ctx context.Context, clanID, factionID int) error {
	return remove(ctx, r.db, &models.ClanInFaction{}, eq("clanId", clanID), eq("factionId", factionID))
}

// ClansOfFaction lists the clans linked to a faction
func (r *FactionRepository) ClansOfFaction(ctx context.Context, factionID int) ([]models.Clan, error) {
	var clans []models.Clan
	links := r.db.WithContext(ctx).Model(&models.ClanInFaction{}).Select("clanId").Where(eq("factionId", factionID))
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", links).
		Order(orderBy("name", false)).
		Find(&clans).Error; err != nil {
		return nil, database.Classify(err)
	}
	return clans, nil
}
